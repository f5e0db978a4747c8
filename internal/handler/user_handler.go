package handler

import (
	"encoding/json"
	"net/http"

	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model/requestresponse"
	"storefront-auth/internal/ports"
	"storefront-auth/internal/security"
	"storefront-auth/internal/util"
)

type UserHandler struct {
	ports.AuthenticationService
}

func NewUserHandler(authenticationService ports.AuthenticationService) *UserHandler {
	return &UserHandler{authenticationService}
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает данные пользователя по access токену из cookie accessToken или заголовка Authorization
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse "TokenMissing, TokenExpired или TokenInvalid"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	subject, err := security.SubjectFromContext(r.Context())
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	user, err := h.AuthenticationService.Profile(r.Context(), subject)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.UserResponse{User: requestresponse.NewUserSummary(user)})
}

// decodeJSON читает тело запроса; при ошибке сам отвечает 400
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.HandleError(w, r, autherr.Wrap(autherr.ValidationError, "invalid request body", err))
		return err
	}
	return nil
}
