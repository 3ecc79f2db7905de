package service

import (
	"context"
	"fmt"
	"log"

	"bashare-server/config"
	"bashare-server/internal/model"
	"bashare-server/internal/ports"
	"bashare-server/internal/security"
	"bashare-server/internal/util"
)

const defaultListLimit = 100

type UserService struct {
	userRepository ports.UserRepository
	hasher         *security.PasswordHasher
	notifier       ports.RegistrationNotifier
	firstSuperuser *config.FirstSuperuserConfig
}

func NewUserService(
	userRepository ports.UserRepository,
	hasher *security.PasswordHasher,
	notifier ports.RegistrationNotifier,
	firstSuperuser *config.FirstSuperuserConfig,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		hasher:         hasher,
		notifier:       notifier,
		firstSuperuser: firstSuperuser,
	}
}

// Register создаёт непривилегированного пользователя.
// Сначала проверяется занятость email, затем username; при совпадении
// возвращается ErrDuplicateUser с указанием конфликтующих значений
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}
	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	found, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil {
		return nil, util.LogError("[UserService] ошибка поиска по email", err)
	}
	if found == nil {
		found, err = s.userRepository.FindByUsername(ctx, db, username)
		if err != nil {
			return nil, util.LogError("[UserService] ошибка поиска по username", err)
		}
	}
	if found != nil {
		return nil, fmt.Errorf("пользователь с email (username) %s (%s) уже существует: %w",
			email, username, ErrDuplicateUser)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, util.LogError("[UserService] не удалось создать хэш пароля", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}

	created, err := s.userRepository.CreateUser(ctx, db, user)
	if err != nil {
		return nil, util.LogError("[UserService] ошибка создания пользователя", err)
	}

	if s.notifier != nil {
		go func() {
			if err := s.notifier.NotifyRegistered(context.Background(), created); err != nil {
				log.Printf("[UserService] ошибка отправки события о регистрации: %v", err)
			}
		}()
	}

	return created, nil
}

// GetUser возвращает запись пользователя. Доступ — владельцу или суперпользователю
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	subject, err := security.GetSubjectFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !subject.IsAdmin() && subject.ID != id {
		return nil, fmt.Errorf("[UserService] %w", ErrForbidden)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("[UserService] %w", ErrNotFound)
	}

	return user, nil
}

// GetCurrentUser возвращает запись владельца access токена
func (s *UserService) GetCurrentUser(ctx context.Context) (*model.User, error) {
	subject, err := security.GetSubjectFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByID(ctx, db, subject.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("[UserService] %w", ErrNotFound)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("[UserService] %w", ErrInactiveUser)
	}

	return user, nil
}

// UpdateUser применяет частичное обновление. Владелец меняет свои
// username/email/password; флаги is_active/is_superuser/confirmed и чужие
// записи — только суперпользователь. Пароль перехэшируется перед записью
// и наружу не отдаётся
func (s *UserService) UpdateUser(ctx context.Context, id int64, update *model.UserUpdate) (*model.User, error) {
	subject, err := security.GetSubjectFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !subject.IsAdmin() {
		if subject.ID != id {
			return nil, fmt.Errorf("[UserService] %w", ErrForbidden)
		}
		if update.IsActive != nil || update.IsSuperuser != nil || update.Confirmed != nil {
			return nil, fmt.Errorf("[UserService] смена флагов доступна только суперпользователю: %w", ErrForbidden)
		}
	}

	if update.Username != nil {
		if err := validateUsername(*update.Username); err != nil {
			return nil, fmt.Errorf("[UserService] %w", err)
		}
	}

	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return nil, fmt.Errorf("[UserService] %w", err)
		}
	}

	if update.Password != nil {
		if err := validatePassword(*update.Password); err != nil {
			return nil, fmt.Errorf("[UserService] %w", err)
		}
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, util.LogError("[UserService] не удалось создать хэш пароля", err)
		}
		update.Password = &hash
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	updated, err := s.userRepository.UpdateUser(ctx, db, id, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("[UserService] %w", ErrNotFound)
	}

	return updated, nil
}

// ListUsers : страница пользователей, только для суперпользователя
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	subject, err := security.GetSubjectFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !subject.IsAdmin() {
		return nil, fmt.Errorf("[UserService] %w", ErrForbidden)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	return s.userRepository.ListUsers(ctx, db, skip, limit)
}

// EnsureFirstSuperuser идемпотентно создаёт стартового суперпользователя
// из конфигурации. Выполняется один раз при старте процесса, вне пути
// обработки запросов
func (s *UserService) EnsureFirstSuperuser(ctx context.Context) error {
	if s.firstSuperuser == nil || s.firstSuperuser.Username == "" {
		return nil
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	existing, err := s.userRepository.FindByUsername(ctx, db, s.firstSuperuser.Username)
	if err != nil {
		return util.LogError("[UserService] ошибка поиска суперпользователя", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := s.hasher.Hash(s.firstSuperuser.Password)
	if err != nil {
		return util.LogError("[UserService] не удалось создать хэш пароля суперпользователя", err)
	}

	user := &model.User{
		Username:     s.firstSuperuser.Username,
		Email:        s.firstSuperuser.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  true,
		Confirmed:    true,
	}

	if _, err := s.userRepository.CreateUser(ctx, db, user); err != nil {
		return util.LogError("[UserService] не удалось создать суперпользователя", err)
	}

	log.Printf("[UserService] создан стартовый суперпользователь %s", s.firstSuperuser.Username)
	return nil
}
