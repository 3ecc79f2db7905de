package ports

import (
	"context"

	"bashare-server/internal/model"
)

// RegistrationNotifier отправляет событие о регистрации нового пользователя
type RegistrationNotifier interface {
	NotifyRegistered(ctx context.Context, user *model.User) error
}
