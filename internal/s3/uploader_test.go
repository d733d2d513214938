package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// MockS3Uploader мок для S3 uploader
type MockS3Uploader struct {
	uploadFunc func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error)
}

func (m *MockS3Uploader) UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return m.uploadFunc(input)
}

// MockS3Client мок для S3 клиента
type MockS3Client struct {
	deleteObjectFunc func(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *MockS3Client) DeleteObjectWithContext(ctx context.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	return m.deleteObjectFunc(input)
}

var testConfig = Config{
	Region:     "us-east-1",
	AccessKey:  "test-access-key",
	SecretKey:  "test-secret-key",
	Endpoint:   "https://s3.example.com",
	BucketName: "hitback-cards",
}

func TestUploadFile(t *testing.T) {
	var uploaded string
	mockUploader := &MockS3Uploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			if aws.StringValue(input.Bucket) != "hitback-cards" {
				t.Errorf("Ожидался бакет hitback-cards, получено: %s", aws.StringValue(input.Bucket))
			}
			if aws.StringValue(input.ContentType) != "image/png" {
				t.Errorf("Ожидался ContentType image/png, получено: %s", aws.StringValue(input.ContentType))
			}
			data, _ := io.ReadAll(input.Body)
			uploaded = string(data)
			return &s3manager.UploadOutput{Location: "ignored"}, nil
		},
	}

	uploader := newUploader(mockUploader, &MockS3Client{}, testConfig)
	url, err := uploader.UploadFile(context.Background(), strings.NewReader("png-bytes"), "decks/abc/HITBACK_Card_01.png", "image/png")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	expectedURL := "https://s3.example.com/hitback-cards/decks/abc/HITBACK_Card_01.png"
	if url != expectedURL {
		t.Errorf("Ожидался URL: %s, получено: %s", expectedURL, url)
	}
	if uploaded != "png-bytes" {
		t.Errorf("Ожидалось содержимое png-bytes, получено: %s", uploaded)
	}
}

func TestUploadFileError(t *testing.T) {
	mockUploader := &MockS3Uploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			return nil, awserr.New("AccessDenied", "access denied", nil)
		},
	}

	uploader := newUploader(mockUploader, &MockS3Client{}, testConfig)
	_, err := uploader.UploadFile(context.Background(), strings.NewReader("x"), "key.png", "")
	if err == nil {
		t.Fatal("Ожидалась ошибка загрузки")
	}
	if !strings.Contains(err.Error(), "AccessDenied") {
		t.Errorf("Ошибка должна содержать причину, получено: %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	var deletedKey string
	mockClient := &MockS3Client{
		deleteObjectFunc: func(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
			deletedKey = aws.StringValue(input.Key)
			return &s3.DeleteObjectOutput{}, nil
		},
	}

	uploader := newUploader(&MockS3Uploader{}, mockClient, testConfig)
	if err := uploader.DeleteFile(context.Background(), "decks/abc/HITBACK_Card_01.png"); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if deletedKey != "decks/abc/HITBACK_Card_01.png" {
		t.Errorf("Ожидалось удаление decks/abc/HITBACK_Card_01.png, получено: %s", deletedKey)
	}
}

func TestDeleteFileError(t *testing.T) {
	mockClient := &MockS3Client{
		deleteObjectFunc: func(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
			return nil, awserr.New("NoSuchKey", "not found", nil)
		},
	}

	uploader := newUploader(&MockS3Uploader{}, mockClient, testConfig)
	if err := uploader.DeleteFile(context.Background(), "missing.png"); err == nil {
		t.Error("Ожидалась ошибка удаления")
	}
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		key      string
		expected string
	}{
		{"с endpoint", testConfig, "/a/b.png", "https://s3.example.com/hitback-cards/a/b.png"},
		{"без endpoint", Config{Region: "eu-west-1", BucketName: "cards"}, "a/b.png", "https://cards.s3.eu-west-1.amazonaws.com/a/b.png"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			uploader := newUploader(&MockS3Uploader{}, &MockS3Client{}, test.config)
			if url := uploader.ObjectURL(test.key); url != test.expected {
				t.Errorf("Ожидался URL: %s, получено: %s", test.expected, url)
			}
		})
	}
}

func TestNewUploaderRequiresBucket(t *testing.T) {
	if _, err := NewUploader(&Config{Region: "us-east-1"}); err == nil {
		t.Error("Ожидалась ошибка без бакета")
	}

	uploader, err := NewUploader(&testConfig)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if uploader.ObjectURL("k") != "https://s3.example.com/hitback-cards/k" {
		t.Errorf("Неожиданный URL: %s", uploader.ObjectURL("k"))
	}
}
