// Package s3 предоставляет функционал для публикации изображений карт в Amazon S3
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// objectUploader часть s3manager.Uploader, которую использует Uploader
type objectUploader interface {
	UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// objectDeleter часть s3.S3, которую использует Uploader
type objectDeleter interface {
	DeleteObjectWithContext(ctx context.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
}

// Uploader обертка для S3 uploader
type Uploader struct {
	s3Uploader objectUploader
	s3Client   objectDeleter
	config     Config
}

// NewUploader создает новый S3 uploader
func NewUploader(config *Config) (*Uploader, error) {
	if config == nil || config.BucketName == "" {
		return nil, errors.New("не задан бакет S3")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Если указан endpoint, добавляем его
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return newUploader(s3manager.NewUploader(sess), s3.New(sess), *config), nil
}

func newUploader(uploader objectUploader, client objectDeleter, config Config) *Uploader {
	return &Uploader{
		s3Uploader: uploader,
		s3Client:   client,
		config:     config,
	}
}

// UploadFile загружает объект в S3 и возвращает его публичный адрес
func (u *Uploader) UploadFile(ctx context.Context, reader io.Reader, key, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(u.config.BucketName),
		Key:    aws.String(key),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.s3Uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("ошибка загрузки %s: %w", key, err)
	}

	return u.ObjectURL(key), nil
}

// DeleteFile удаляет файл из S3
func (u *Uploader) DeleteFile(ctx context.Context, key string) error {
	_, err := u.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.config.BucketName),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf("ошибка удаления файла из S3: %w", err)
	}

	return nil
}

// ObjectURL адрес объекта: через endpoint, если он задан, иначе в домене AWS
func (u *Uploader) ObjectURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if u.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.config.Endpoint, "/"), u.config.BucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.config.BucketName, u.config.Region, key)
}
