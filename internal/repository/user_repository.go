package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model"
	"storefront-auth/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation : код ошибки Postgres при нарушении уникального индекса
const uniqueViolation = "23505"

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, name, email, password_hash, role)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING uuid, name, email, password_hash, role, created_at
	`

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query, user.UUID, user.Name, user.Email, user.PasswordHash, user.Role).
		StructScan(createdUser)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, autherr.Wrap(autherr.DuplicateIdentity, "User already exists", err)
		}
		return nil, autherr.Fatalf(util.LogError("[UserRepo] ошибка вставки данных в БД", err), "не удалось создать пользователя")
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `SELECT uuid, name, email, password_hash, role, created_at FROM users WHERE uuid = $1`
	return r.findOne(ctx, exec, query, uuid)
}

// FindByEmail : ищет пользователя по email (email хранится в нижнем регистре)
func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	query := `SELECT uuid, name, email, password_hash, role, created_at FROM users WHERE email = $1`
	return r.findOne(ctx, exec, query, email)
}

// ExistsByEmail : проверяет, занят ли email
func (r *UserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	err := sqlx.GetContext(ctx, exec, &exists, query, email)
	if err != nil {
		return false, autherr.Fatalf(util.LogError("[UserRepo] ошибка проверки существования пользователя", err), "не удалось проверить email")
	}
	return exists, nil
}

func (r *UserRepository) findOne(ctx context.Context, exec sqlx.ExtContext, query string, arg string) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, autherr.New(autherr.NotFound, "User not found")
	}
	if err != nil {
		return nil, autherr.Fatalf(util.LogError("[UserRepo] не удалось найти пользователя в БД", err), "ошибка чтения пользователя")
	}
	return &user, nil
}
