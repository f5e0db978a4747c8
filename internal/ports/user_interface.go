package ports

import (
	"context"

	"storefront-auth/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository : хранилище учётных записей (SQL слой)
type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error)
}
