package ports

import (
	"context"

	"bashare-server/internal/model"
)

type AuthenticationService interface {
	// Authenticate возвращает (nil, nil) и для неизвестного логина,
	// и для неверного пароля — вызывающий не должен их различать
	Authenticate(ctx context.Context, identifier, password string) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*model.TokensPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	IsActive(user *model.User) bool
	IsSuperuser(user *model.User) bool
}
