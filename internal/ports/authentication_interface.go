package ports

import (
	"context"

	"storefront-auth/internal/model"
)

// AuthenticationService : выпуск, проверка, обновление и отзыв сессий
type AuthenticationService interface {
	Issue(ctx context.Context, userUUID string) (*model.TokensPair, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	ValidateAccess(ctx context.Context, accessToken string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, userUUID string) error
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userUUID string) (*model.User, error)
}
