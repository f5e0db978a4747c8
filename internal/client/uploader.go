package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-auth/internal/model/requestresponse"
)

// uploadClient без cookie jar: cookie сессии не должны уходить в S3
var uploadClient = &http.Client{Timeout: 10 * time.Minute}

// UploadProductImage получает presigned URL (нужна роль admin) и загружает изображение напрямую в бакет.
// Возвращает ключ объекта, который сохраняется в карточке товара.
func (c *Client) UploadProductImage(ctx context.Context, filename, contentType string, data io.Reader, size int64) (string, error) {
	var presign requestresponse.PresignImageResponse
	err := c.Do(ctx, http.MethodPost, "/api/images/presign", requestresponse.PresignImageRequest{
		Filename:    filename,
		ContentType: contentType,
	}, &presign)
	if err != nil {
		return "", err
	}

	if err := uploadToPresignedURL(ctx, presign.UploadURL, contentType, data, size); err != nil {
		return "", err
	}
	return presign.Key, nil
}

func uploadToPresignedURL(ctx context.Context, presignedURL, contentType string, data io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, data)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ошибка загрузки: статус %d, ответ: %s", resp.StatusCode, string(body))
	}
	return nil
}
