package service

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"storefront-auth/internal/autherr"
	"storefront-auth/internal/ports"

	"github.com/google/uuid"
)

const productImagePrefix = "products/"

// imageExtensions : допустимые типы изображений товаров и их расширения
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type ImageService struct {
	storage    ports.S3Storage
	presignTTL time.Duration
}

func NewImageService(storage ports.S3Storage, presignTTL time.Duration) *ImageService {
	return &ImageService{storage: storage, presignTTL: presignTTL}
}

// PresignUpload возвращает URL для прямой загрузки изображения в бакет.
// Ключ генерируется сервером, имя файла от клиента используется только для расширения.
func (s *ImageService) PresignUpload(ctx context.Context, filename, contentType string) (string, string, time.Duration, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", 0, autherr.Validation("contentType", "Only jpeg, png, webp and gif images are allowed")
	}

	if fileExt := strings.ToLower(filepath.Ext(filename)); fileExt != "" {
		if fileExt == ".jpeg" {
			fileExt = ".jpg"
		}
		if fileExt != ext {
			return "", "", 0, autherr.Validation("filename", "File extension does not match content type")
		}
	}

	key := productImagePrefix + uuid.New().String() + ext
	url, err := s.storage.GeneratePresignedPutURL(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return "", "", 0, err
	}

	return url, key, s.presignTTL, nil
}

// Delete удаляет изображение товара; ключи вне products/ не трогаем
func (s *ImageService) Delete(ctx context.Context, key string) error {
	cleaned := path.Clean(key)
	if !strings.HasPrefix(cleaned, productImagePrefix) || cleaned != key || strings.Contains(key, "..") {
		return autherr.Validation("key", "Invalid image key")
	}
	return s.storage.DeleteObject(ctx, key)
}
