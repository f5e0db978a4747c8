package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"storefront-auth/internal/model/requestresponse"
	"storefront-auth/internal/ports"
	"storefront-auth/internal/security"
	"storefront-auth/internal/util"

	"github.com/go-chi/chi/v5"
)

type ImageHandler struct {
	ports.ImageService
}

func NewImageHandler(imageService ports.ImageService) *ImageHandler {
	return &ImageHandler{imageService}
}

// PresignUpload godoc
// @Summary URL для загрузки изображения товара
// @Description Только для администратора. Возвращает presigned PUT URL в S3 и ключ объекта products/<uuid>.<ext>
// @Tags Images
// @Accept json
// @Produce json
// @Param body body requestresponse.PresignImageRequest true "Тело запроса"
// @Success 200 {object} requestresponse.PresignImageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Недопустимый тип файла"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Unauthorized: нужна роль admin"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/images/presign [post]
func (h *ImageHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.PresignImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	uploadURL, key, expiresIn, err := h.ImageService.PresignUpload(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	util.LoggerFrom(r.Context()).Info("выдан URL для загрузки изображения",
		slog.String("key", key), slog.String("admin", adminID(r)))

	util.WriteJSON(w, http.StatusOK, requestresponse.PresignImageResponse{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresIn: int(expiresIn.Seconds()),
	})
}

// DeleteImage godoc
// @Summary Удаление изображения товара
// @Description Только для администратора. Ключ передаётся URL-кодированным, например products%2F<uuid>.png
// @Tags Images
// @Produce json
// @Param key path string true "Ключ объекта"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/images/{key} [delete]
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		key = ""
	}

	if err := h.ImageService.Delete(r.Context(), key); err != nil {
		util.HandleError(w, r, err)
		return
	}

	util.LoggerFrom(r.Context()).Info("изображение товара удалено",
		slog.String("key", key), slog.String("admin", adminID(r)))

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Image deleted successfully"})
}

// adminID : администратор, которого положил в контекст AdminRoute
func adminID(r *http.Request) string {
	if user, ok := security.UserFromContext(r.Context()); ok {
		return user.UUID
	}
	return ""
}
