package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Service struct {
	client   *s3.Client
	bucket   string
	psClient *s3.PresignClient
}

func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	creds, err := s3Credentials(cfg)
	if err != nil {
		return nil, err
	}

	var client *s3.Client

	if cfg.Local {
		client = s3.New(s3.Options{
			Region:       cfg.Region,
			Credentials:  creds,
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})

		if err := createBucketIfNotExists(ctx, client, cfg.Bucket); err != nil {
			return nil, err
		}
	} else {
		opts := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(cfg.Region)}
		if creds != nil {
			opts = append(opts, awsConfig.WithCredentialsProvider(creds))
		}
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, util.LogError("[S3Service] ошибка загрузки AWS config", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return NewS3ServiceFromClient(client, cfg.Bucket), nil
}

// s3Credentials : ключи из конфига. Без ключей в облаке используется стандартная цепочка AWS (nil),
// локально подставляются ключи MinIO по умолчанию.
func s3Credentials(cfg *config.S3Config) (aws.CredentialsProvider, error) {
	switch {
	case cfg.AccessKey != "" && cfg.SecretKey != "":
		return credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""), nil
	case cfg.AccessKey != "" || cfg.SecretKey != "":
		return nil, errors.New("[S3Service] access_key и secret_key задаются только вместе")
	case cfg.Local:
		slog.Warn("[S3Service] ключи не заданы, используются ключи MinIO по умолчанию", slog.String("endpoint", cfg.Endpoint))
		return credentials.NewStaticCredentialsProvider("minioadmin", "minioadmin", ""), nil
	default:
		return nil, nil
	}
}

func NewS3ServiceFromClient(client *s3.Client, bucket string) *S3Service {
	return &S3Service{
		client:   client,
		psClient: s3.NewPresignClient(client),
		bucket:   bucket,
	}
}

// createBucketIfNotExists создает бакет если он не существует
func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil // Бакет уже существует
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return util.LogError("[S3Service] ошибка создания бакета", err)
	}

	slog.Info("[S3Service] бакет создан", slog.String("bucket", bucket))
	return nil
}

// GeneratePresignedPutURL : генерация pre-signed URL для PUT, Content-Type входит в подпись
func (s *S3Service) GeneratePresignedPutURL(ctx context.Context, key, contentType string, expire time.Duration) (string, error) {
	req, err := s.psClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expire
	})
	if err != nil {
		return "", autherr.Fatalf(util.LogError("[S3Service] не удалось сгенерировать presigned PUT URL", err), "хранилище изображений недоступно")
	}
	return req.URL, nil
}

// DeleteObject : удаление объекта
func (s *S3Service) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return autherr.Fatalf(util.LogError("[S3Service] не удалось удалить объект", err), "хранилище изображений недоступно")
	}
	return nil
}
