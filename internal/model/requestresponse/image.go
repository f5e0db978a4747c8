package requestresponse

// PresignImageRequest : запрос на загрузку изображения товара
type PresignImageRequest struct {
	Filename    string `json:"filename" example:"sneakers.png"`
	ContentType string `json:"contentType" example:"image/png"`
}

// PresignImageResponse : presigned PUT URL и ключ объекта в бакете
type PresignImageResponse struct {
	UploadURL string `json:"uploadUrl" example:"https://bucket.s3.amazonaws.com/products/...?X-Amz-Signature=..."`
	Key       string `json:"key" example:"products/8f0c2a3e-3c57-4d0e-9a77-2b1b7c1f0c11.png"`
	ExpiresIn int    `json:"expiresIn" example:"900"`
}
