package handler

import (
	"net/http"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model/requestresponse"
	"storefront-auth/internal/ports"
	"storefront-auth/internal/security"
	"storefront-auth/internal/util"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	cfg *config.SessionConfig
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService, cfg *config.SessionConfig) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService, cfg}
}

// Signup godoc
// @Summary Регистрация покупателя
// @Description Создаёт учётную запись с ролью standard и сразу открывает сессию: выставляет cookie accessToken и refreshToken
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.SignupRequest true "Тело запроса"
// @Success 201 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse "DuplicateIdentity или ValidationError"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/signup [post]
func (h *AuthenticationHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.AuthenticationService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	tokens, err := h.AuthenticationService.Issue(r.Context(), user.UUID)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	security.SetAuthCookies(w, h.cfg, tokens)
	util.WriteJSON(w, http.StatusCreated, requestresponse.UserResponse{
		User:    requestresponse.NewUserSummary(user),
		Message: "User created successfully",
	})
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Проверяет email и пароль, выставляет новые cookie accessToken и refreshToken
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "InvalidCredentials"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.AuthenticationService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	tokens, err := h.AuthenticationService.Issue(r.Context(), user.UUID)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	security.SetAuthCookies(w, h.cfg, tokens)
	util.WriteJSON(w, http.StatusOK, requestresponse.UserResponse{
		User:    requestresponse.NewUserSummary(user),
		Message: "User logged in successfully",
	})
}

// Logout godoc
// @Summary Завершение сессии
// @Description Удаляет refresh токен пользователя из кэша и очищает обе cookie. Истёкший refresh токен тоже принимается.
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Нет cookie refreshToken"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)
	if refreshToken == "" {
		util.HandleError(w, r, autherr.New(autherr.TokenMissing, "No refresh token provided"))
		return
	}

	err := h.AuthenticationService.Logout(r.Context(), refreshToken)
	// cookie чистим в любом случае, даже если токен поддельный
	security.ClearAuthCookies(w, h.cfg)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Logged out successfully"})
}

// RefreshToken godoc
// @Summary Обновление access токена
// @Description Выдаёт новый access токен по cookie refreshToken, если он совпадает с сохранённым в кэше. Refresh токен не меняется.
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.RefreshTokenResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Нет cookie, токен истёк или невалиден"
// @Failure 403 {object} requestresponse.ErrorResponse "TokenStale: токен отозван или заменён новым входом"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/refresh-token [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.AuthenticationService.Refresh(r.Context(), refreshTokenFromRequest(r))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	security.SetAccessCookie(w, h.cfg, accessToken)
	util.WriteJSON(w, http.StatusOK, requestresponse.RefreshTokenResponse{
		AccessToken: accessToken,
		Message:     "Access token refreshed successfully",
	})
}

func refreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(security.RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
