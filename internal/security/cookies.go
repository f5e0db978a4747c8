package security

import (
	"net/http"

	"storefront-auth/config"
	"storefront-auth/internal/model"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// SetAuthCookies выставляет обе cookie; Max-Age совпадает со сроком жизни токенов
func SetAuthCookies(w http.ResponseWriter, cfg *config.SessionConfig, tokens *model.TokensPair) {
	SetAccessCookie(w, cfg, tokens.AccessToken)
	http.SetCookie(w, newCookie(cfg, RefreshCookieName, tokens.RefreshToken, int(cfg.RefreshTTL.Seconds())))
}

func SetAccessCookie(w http.ResponseWriter, cfg *config.SessionConfig, accessToken string) {
	http.SetCookie(w, newCookie(cfg, AccessCookieName, accessToken, int(cfg.AccessTTL.Seconds())))
}

// ClearAuthCookies : Max-Age<0 заставляет браузер удалить cookie сразу
func ClearAuthCookies(w http.ResponseWriter, cfg *config.SessionConfig) {
	http.SetCookie(w, newCookie(cfg, AccessCookieName, "", -1))
	http.SetCookie(w, newCookie(cfg, RefreshCookieName, "", -1))
}

func newCookie(cfg *config.SessionConfig, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}
