package ports

import (
	"context"

	"bashare-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error)
	UpdateUser(ctx context.Context, exec sqlx.ExtContext, id int64, update *model.UserUpdate) (*model.User, error)
	UpdateLastLogin(ctx context.Context, exec sqlx.ExtContext, id int64) error
	DeleteUser(ctx context.Context, exec sqlx.ExtContext, id int64) error
	ListUsers(ctx context.Context, exec sqlx.ExtContext, skip, limit int) ([]*model.User, error)
}

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetCurrentUser(ctx context.Context) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, update *model.UserUpdate) (*model.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error)
	EnsureFirstSuperuser(ctx context.Context) error
}
