package ports

import (
	"context"
	"time"
)

// S3Storage : хранилище изображений товаров
type S3Storage interface {
	GeneratePresignedPutURL(ctx context.Context, key, contentType string, expire time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// ImageService : загрузка изображений товаров администратором
type ImageService interface {
	PresignUpload(ctx context.Context, filename, contentType string) (uploadURL, key string, expiresIn time.Duration, err error)
	Delete(ctx context.Context, key string) error
}
