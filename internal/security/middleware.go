package security

import (
	"context"
	"net/http"
	"strings"

	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model"
	"storefront-auth/internal/util"
)

type contextKey string

const (
	SubjectContextKey contextKey = "subject"
	UserContextKey    contextKey = "user"
)

// AccessValidator : проверка access токена, реализуется сервисом аутентификации
type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (string, error)
}

// ProfileLoader : загрузка пользователя по subject
type ProfileLoader interface {
	Profile(ctx context.Context, userUUID string) (*model.User, error)
}

// ProtectRoute пропускает запрос только с валидным access токеном.
// Токен берётся из cookie accessToken, если её нет, то из заголовка Authorization: Bearer.
func ProtectRoute(validator AccessValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessTokenFromRequest(r)
			if token == "" {
				util.HandleError(w, r, autherr.New(autherr.TokenMissing, "Unauthorized - No access token provided"))
				return
			}

			subject, err := validator.ValidateAccess(r.Context(), token)
			if err != nil {
				util.HandleError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminRoute ставится после ProtectRoute и пропускает только пользователей с ролью admin
func AdminRoute(profiles ProfileLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := SubjectFromContext(r.Context())
			if err != nil {
				util.HandleError(w, r, err)
				return
			}

			user, err := profiles.Profile(r.Context(), subject)
			if err != nil {
				if autherr.KindOf(err) == autherr.NotFound {
					err = autherr.New(autherr.TokenInvalid, "Unauthorized - User not found")
				}
				util.HandleError(w, r, err)
				return
			}

			if !user.IsAdmin() {
				util.HandleError(w, r, autherr.New(autherr.Unauthorized, "Access denied - Admin only"))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AccessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func SubjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(SubjectContextKey).(string)
	if !ok || subject == "" {
		return "", autherr.New(autherr.TokenMissing, "пользователь не авторизован")
	}
	return subject, nil
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*model.User)
	return user, ok && user != nil
}
