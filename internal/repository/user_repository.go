package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bashare-server/internal/model"
	"bashare-server/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password, is_active, is_superuser, confirmed, created, last_login`

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// CreateUser : сохраняет нового пользователя.
// id и created назначаются базой и возвращаются в созданной записи
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (username, email, password, is_active, is_superuser, confirmed)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + userColumns

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.IsSuperuser,
		user.Confirmed,
	).StructScan(createdUser)

	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByID : ищет пользователя по id, (nil, nil) если не найден
func (r *UserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.User, error) {
	return r.findOne(ctx, exec, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail : ищет пользователя по email, (nil, nil) если не найден
func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	return r.findOne(ctx, exec, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByUsername : ищет пользователя по username, (nil, nil) если не найден
func (r *UserRepository) FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error) {
	return r.findOne(ctx, exec, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) findOne(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка поиска пользователя в БД", err)
	}
	return &user, nil
}

// UpdateUser : частичное обновление — nil-поля update не трогают запись.
// Возвращает (nil, nil), если пользователя нет
func (r *UserRepository) UpdateUser(ctx context.Context, exec sqlx.ExtContext, id int64, update *model.UserUpdate) (*model.User, error) {
	query := `
	UPDATE users SET
		username     = COALESCE($2, username),
		email        = COALESCE($3, email),
		password     = COALESCE($4, password),
		is_active    = COALESCE($5, is_active),
		is_superuser = COALESCE($6, is_superuser),
		confirmed    = COALESCE($7, confirmed)
	WHERE id = $1
	RETURNING ` + userColumns

	updatedUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query,
		id,
		update.Username,
		update.Email,
		update.Password,
		update.IsActive,
		update.IsSuperuser,
		update.Confirmed,
	).StructScan(updatedUser)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось обновить пользователя", err)
	}

	return updatedUser, nil
}

// UpdateLastLogin : отметка времени последнего входа
func (r *UserRepository) UpdateLastLogin(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	query := `UPDATE users SET last_login = now() WHERE id = $1`
	_, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить last_login", err)
	}
	return nil
}

// DeleteUser : удаляет пользователя по id.
// Наружу через API удаление не выведено, операция для внутреннего пользования
func (r *UserRepository) DeleteUser(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return util.LogError("[UserRepo] не удалось удалить пользователя", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить, удалён ли пользователь", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("[UserRepo] пользователь %d не найден", id)
	}

	return nil
}

// ListUsers : страница пользователей со skip/limit пагинацией
func (r *UserRepository) ListUsers(ctx context.Context, exec sqlx.ExtContext, skip, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id ASC OFFSET $1 LIMIT $2`

	var users []*model.User
	err := sqlx.SelectContext(ctx, exec, &users, query, skip, limit)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось получить список пользователей", err)
	}

	return users, nil
}
