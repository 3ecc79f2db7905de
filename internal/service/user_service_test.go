package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bashare-server/config"
	"bashare-server/internal/model"
	"bashare-server/internal/security"
	srv "bashare-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeNotifier : событие о регистрации уходит в отдельной горутине,
// поэтому фиксируем его через канал, а не через mock
type fakeNotifier struct {
	notified chan *model.User
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(chan *model.User, 1)}
}

func (f *fakeNotifier) NotifyRegistered(ctx context.Context, user *model.User) error {
	f.notified <- user
	return nil
}

func subjectContext(subject *model.TokenSubject) context.Context {
	ctx := dbContext()
	if subject != nil {
		ctx = context.WithValue(ctx, security.SubjectContextKey, subject)
	}
	return ctx
}

func ownerSubject(id int64) *model.TokenSubject {
	return &model.TokenSubject{ID: id, Scope: []string{}}
}

func adminSubject() *model.TokenSubject {
	return &model.TokenSubject{ID: 1, Scope: []string{model.ScopeAdmin}}
}

func TestUserService_Register(t *testing.T) {
	ctx := dbContext()

	tests := []struct {
		name        string
		username    string
		email       string
		password    string
		setupMocks  func(u *MockUserRepository)
		expectError string
		expectIs    error
	}{
		{
			name:        "короткий username",
			username:    "ab",
			email:       "ab@example.com",
			password:    "password1",
			expectError: "username должен быть не меньше 3 символов",
		},
		{
			name:        "недопустимые символы в username",
			username:    "alice!",
			email:       "alice@example.com",
			password:    "password1",
			expectError: "username должен содержать только буквы, цифры и подчёркивание",
		},
		{
			name:        "некорректный email",
			username:    "alice",
			email:       "not-an-email",
			password:    "password1",
			expectError: "email должен быть корректным адресом",
		},
		{
			name:        "email с именем отправителя",
			username:    "alice",
			email:       "Alice <alice@example.com>",
			password:    "password1",
			expectError: "email должен быть корректным адресом",
		},
		{
			name:        "короткий пароль",
			username:    "alice",
			email:       "alice@example.com",
			password:    "short",
			expectError: "пароль должен содержать минимум 8 символов",
		},
		{
			name:     "короткий кириллический пароль",
			username: "alice",
			email:    "alice@example.com",
			// 7 рун, хотя байтов больше восьми
			password:    "пароль7",
			expectError: "пароль должен содержать минимум 8 символов",
		},
		{
			name:        "слишком длинный пароль",
			username:    "alice",
			email:       "alice@example.com",
			password:    strings.Repeat("я", 201),
			expectError: "пароль должен содержать не больше 200 символов",
		},
		{
			name:     "занятый email",
			username: "alice",
			email:    "taken@example.com",
			password: "password1",
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByEmail", ctx, mock.Anything, "taken@example.com").
					Return(&model.User{ID: 2, Email: "taken@example.com"}, nil)
			},
			expectIs: srv.ErrDuplicateUser,
		},
		{
			name:     "занятый username",
			username: "taken",
			email:    "new@example.com",
			password: "password1",
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByEmail", ctx, mock.Anything, "new@example.com").
					Return(nil, nil)
				u.On("FindByUsername", ctx, mock.Anything, "taken").
					Return(&model.User{ID: 2, Username: "taken"}, nil)
			},
			expectIs: srv.ErrDuplicateUser,
		},
		{
			name:     "ошибка создания в БД",
			username: "alice",
			email:    "alice@example.com",
			password: "password1",
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByEmail", ctx, mock.Anything, "alice@example.com").
					Return(nil, nil)
				u.On("FindByUsername", ctx, mock.Anything, "alice").
					Return(nil, nil)
				u.On("CreateUser", ctx, mock.Anything, mock.Anything).
					Return(nil, errors.New("db error"))
			},
			expectError: "ошибка создания пользователя",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

			if tt.setupMocks != nil {
				tt.setupMocks(mockUserRepo)
			}

			user, err := service.Register(ctx, tt.username, tt.email, tt.password)

			assert.Error(t, err)
			assert.Nil(t, user)
			if tt.expectError != "" {
				assert.Contains(t, err.Error(), tt.expectError)
			}
			if tt.expectIs != nil {
				assert.ErrorIs(t, err, tt.expectIs)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Register_Success(t *testing.T) {
	ctx := dbContext()
	mockUserRepo := new(MockUserRepository)
	notifier := newFakeNotifier()
	hasher := testHasher()
	service := srv.NewUserService(mockUserRepo, hasher, notifier, nil)

	created := &model.User{ID: 7, Username: "alice", Email: "alice@example.com", IsActive: true}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "alice@example.com").
		Return(nil, nil)
	mockUserRepo.On("FindByUsername", ctx, mock.Anything, "alice").
		Return(nil, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// пароль уходит в БД только в виде хэша
		return u.Username == "alice" &&
			u.IsActive &&
			!u.IsSuperuser &&
			u.PasswordHash != "password1" &&
			hasher.Verify("password1", u.PasswordHash)
	})).Return(created, nil)

	user, err := service.Register(ctx, "alice", "alice@example.com", "password1")

	require.NoError(t, err)
	assert.Equal(t, created, user)

	select {
	case notified := <-notifier.notified:
		assert.Equal(t, created, notified)
	case <-time.After(time.Second):
		t.Fatal("событие о регистрации не отправлено")
	}

	mockUserRepo.AssertExpectations(t)
}

// Длина пароля считается в рунах: 8 кириллических символов проходят минимум
func TestUserService_Register_PasswordLengthInRunes(t *testing.T) {
	ctx := dbContext()
	mockUserRepo := new(MockUserRepository)
	service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

	created := &model.User{ID: 8, Username: "boris", Email: "boris@example.com"}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "boris@example.com").
		Return(nil, nil)
	mockUserRepo.On("FindByUsername", ctx, mock.Anything, "boris").
		Return(nil, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.Anything).
		Return(created, nil)

	user, err := service.Register(ctx, "boris", "boris@example.com", "пароль78")

	require.NoError(t, err)
	assert.Equal(t, created, user)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_GetUser(t *testing.T) {
	found := &model.User{ID: 7, Username: "alice"}

	tests := []struct {
		name       string
		subject    *model.TokenSubject
		id         int64
		setupMocks func(u *MockUserRepository)
		expectIs   error
	}{
		{
			name:     "не авторизован",
			subject:  nil,
			id:       7,
			expectIs: security.ErrUnauthorized,
		},
		{
			name:     "чужая запись без прав",
			subject:  ownerSubject(999),
			id:       7,
			expectIs: srv.ErrForbidden,
		},
		{
			name:    "не найден",
			subject: adminSubject(),
			id:      7,
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByID", mock.Anything, mock.Anything, int64(7)).
					Return(nil, nil)
			},
			expectIs: srv.ErrNotFound,
		},
		{
			name:    "владелец читает свою запись",
			subject: ownerSubject(7),
			id:      7,
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByID", mock.Anything, mock.Anything, int64(7)).
					Return(found, nil)
			},
		},
		{
			name:    "суперпользователь читает чужую запись",
			subject: adminSubject(),
			id:      7,
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByID", mock.Anything, mock.Anything, int64(7)).
					Return(found, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

			if tt.setupMocks != nil {
				tt.setupMocks(mockUserRepo)
			}

			user, err := service.GetUser(subjectContext(tt.subject), tt.id)

			if tt.expectIs != nil {
				assert.ErrorIs(t, err, tt.expectIs)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, found, user)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetCurrentUser(t *testing.T) {
	tests := []struct {
		name       string
		subject    *model.TokenSubject
		setupMocks func(u *MockUserRepository)
		expectIs   error
	}{
		{
			name:     "не авторизован",
			subject:  nil,
			expectIs: security.ErrUnauthorized,
		},
		{
			name:    "запись исчезла после выпуска токена",
			subject: ownerSubject(7),
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByID", mock.Anything, mock.Anything, int64(7)).
					Return(nil, nil)
			},
			expectIs: srv.ErrNotFound,
		},
		{
			name:    "пользователь деактивирован после выпуска токена",
			subject: ownerSubject(7),
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByID", mock.Anything, mock.Anything, int64(7)).
					Return(&model.User{ID: 7, IsActive: false}, nil)
			},
			expectIs: srv.ErrInactiveUser,
		},
		{
			name:    "успех",
			subject: ownerSubject(7),
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByID", mock.Anything, mock.Anything, int64(7)).
					Return(&model.User{ID: 7, IsActive: true}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

			if tt.setupMocks != nil {
				tt.setupMocks(mockUserRepo)
			}

			user, err := service.GetCurrentUser(subjectContext(tt.subject))

			if tt.expectIs != nil {
				assert.ErrorIs(t, err, tt.expectIs)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser_Permissions(t *testing.T) {
	truthy := true

	tests := []struct {
		name     string
		subject  *model.TokenSubject
		id       int64
		update   *model.UserUpdate
		expectIs error
	}{
		{
			name:     "не авторизован",
			subject:  nil,
			id:       7,
			update:   &model.UserUpdate{},
			expectIs: security.ErrUnauthorized,
		},
		{
			name:     "чужая запись без прав",
			subject:  ownerSubject(999),
			id:       7,
			update:   &model.UserUpdate{},
			expectIs: srv.ErrForbidden,
		},
		{
			name:     "владелец пытается выдать себе права",
			subject:  ownerSubject(7),
			id:       7,
			update:   &model.UserUpdate{IsSuperuser: &truthy},
			expectIs: srv.ErrForbidden,
		},
		{
			name:     "владелец пытается сменить is_active",
			subject:  ownerSubject(7),
			id:       7,
			update:   &model.UserUpdate{IsActive: &truthy},
			expectIs: srv.ErrForbidden,
		},
		{
			name:     "владелец пытается подтвердить себя",
			subject:  ownerSubject(7),
			id:       7,
			update:   &model.UserUpdate{Confirmed: &truthy},
			expectIs: srv.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

			user, err := service.UpdateUser(subjectContext(tt.subject), tt.id, tt.update)

			assert.ErrorIs(t, err, tt.expectIs)
			assert.Nil(t, user)
			mockUserRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_UpdateUser_PasswordRehashed(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	hasher := testHasher()
	service := srv.NewUserService(mockUserRepo, hasher, nil, nil)

	newPassword := "newpassword1"
	update := &model.UserUpdate{Password: &newPassword}
	updated := &model.User{ID: 7, Username: "alice"}

	mockUserRepo.On("UpdateUser", mock.Anything, mock.Anything, int64(7),
		mock.MatchedBy(func(u *model.UserUpdate) bool {
			return u.Password != nil &&
				*u.Password != "newpassword1" &&
				hasher.Verify("newpassword1", *u.Password)
		})).Return(updated, nil)

	user, err := service.UpdateUser(subjectContext(ownerSubject(7)), 7, update)

	assert.NoError(t, err)
	assert.Equal(t, updated, user)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_InvalidEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

	bad := "not-an-email"
	update := &model.UserUpdate{Email: &bad}

	user, err := service.UpdateUser(subjectContext(ownerSubject(7)), 7, update)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email должен быть корректным адресом")
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateUser_AdminChangesFlags(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

	falsy := false
	update := &model.UserUpdate{IsActive: &falsy}
	updated := &model.User{ID: 7, IsActive: false}

	mockUserRepo.On("UpdateUser", mock.Anything, mock.Anything, int64(7), update).
		Return(updated, nil)

	user, err := service.UpdateUser(subjectContext(adminSubject()), 7, update)

	assert.NoError(t, err)
	assert.Equal(t, updated, user)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

	mockUserRepo.On("UpdateUser", mock.Anything, mock.Anything, int64(7), mock.Anything).
		Return(nil, nil)

	user, err := service.UpdateUser(subjectContext(adminSubject()), 7, &model.UserUpdate{})

	assert.ErrorIs(t, err, srv.ErrNotFound)
	assert.Nil(t, user)
}

func TestUserService_ListUsers(t *testing.T) {
	page := []*model.User{
		{ID: 1, Username: "admin"},
		{ID: 2, Username: "alice"},
	}

	tests := []struct {
		name       string
		subject    *model.TokenSubject
		skip       int
		limit      int
		setupMocks func(u *MockUserRepository)
		expectIs   error
	}{
		{
			name:     "не авторизован",
			subject:  nil,
			expectIs: security.ErrUnauthorized,
		},
		{
			name:     "обычный пользователь",
			subject:  ownerSubject(7),
			expectIs: srv.ErrForbidden,
		},
		{
			name:    "limit по умолчанию",
			subject: adminSubject(),
			skip:    -5,
			limit:   0,
			setupMocks: func(u *MockUserRepository) {
				// отрицательный skip и нулевой limit приводятся к 0 и 100
				u.On("ListUsers", mock.Anything, mock.Anything, 0, 100).
					Return(page, nil)
			},
		},
		{
			name:    "явная пагинация",
			subject: adminSubject(),
			skip:    10,
			limit:   2,
			setupMocks: func(u *MockUserRepository) {
				u.On("ListUsers", mock.Anything, mock.Anything, 10, 2).
					Return(page, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

			if tt.setupMocks != nil {
				tt.setupMocks(mockUserRepo)
			}

			users, err := service.ListUsers(subjectContext(tt.subject), tt.skip, tt.limit)

			if tt.expectIs != nil {
				assert.ErrorIs(t, err, tt.expectIs)
				assert.Nil(t, users)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, page, users)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_EnsureFirstSuperuser(t *testing.T) {
	ctx := dbContext()
	superuserCfg := &config.FirstSuperuserConfig{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "adminpass123",
	}

	t.Run("конфигурация не задана", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := srv.NewUserService(mockUserRepo, testHasher(), nil, nil)

		assert.NoError(t, service.EnsureFirstSuperuser(ctx))
		mockUserRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("суперпользователь уже существует", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		service := srv.NewUserService(mockUserRepo, testHasher(), nil, superuserCfg)

		mockUserRepo.On("FindByUsername", ctx, mock.Anything, "admin").
			Return(&model.User{ID: 1, Username: "admin"}, nil)

		assert.NoError(t, service.EnsureFirstSuperuser(ctx))
		mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("создание при первом старте", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		hasher := testHasher()
		service := srv.NewUserService(mockUserRepo, hasher, nil, superuserCfg)

		mockUserRepo.On("FindByUsername", ctx, mock.Anything, "admin").
			Return(nil, nil)
		mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "admin" &&
				u.IsActive && u.IsSuperuser && u.Confirmed &&
				hasher.Verify("adminpass123", u.PasswordHash)
		})).Return(&model.User{ID: 1, Username: "admin"}, nil)

		assert.NoError(t, service.EnsureFirstSuperuser(ctx))
		mockUserRepo.AssertExpectations(t)
	})
}
