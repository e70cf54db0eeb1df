package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxPhotoSize    = 5 * 1024 * 1024 // 5 MB
	presignedURLTTL = 15 * time.Minute
	photoPathPrefix = "service-photos"
)

var (
	ErrFileTooBig           = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")

	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// StorageService stores and serves catalog photos.
type StorageService interface {
	// UploadServicePhoto uploads a photo for a catalog service and
	// returns the object key. The content type is sniffed from the
	// actual bytes, not taken from the client.
	UploadServicePhoto(ctx context.Context, serviceID uint, file io.Reader, fileSize int64) (string, error)

	// DeleteServicePhoto removes a photo by object key.
	DeleteServicePhoto(ctx context.Context, objectKey string) error

	// GeneratePhotoURL returns a short-lived presigned GET URL.
	GeneratePhotoURL(ctx context.Context, objectKey string) (string, error)
}

// MinIOStorageService implements StorageService on MinIO/S3-compatible
// storage. Bucket creation is deferred until the first operation so a
// slow or absent object store does not block startup.
type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
	initOnce   sync.Once
	initErr    error
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStorageService{client: client, bucketName: bucketName}, nil
}

func (s *MinIOStorageService) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucketExists(ctx)
	})
	return s.initErr
}

func (s *MinIOStorageService) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

func (s *MinIOStorageService) UploadServicePhoto(ctx context.Context, serviceID uint, file io.Reader, fileSize int64) (string, error) {
	if fileSize > maxPhotoSize {
		return "", ErrFileTooBig
	}

	// Sniff the real content type from the first 512 bytes so a
	// client-supplied Content-Type header cannot smuggle other files.
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: read file for content detection: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]

	detectedType := strings.ToLower(strings.TrimSpace(http.DetectContentType(buf)))
	if _, allowed := allowedContentTypes[detectedType]; !allowed {
		return "", ErrInvalidFileType
	}

	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	fullFile := io.MultiReader(bytes.NewReader(buf), file)
	objectKey := fmt.Sprintf("%s/service-%d/%s%s", photoPathPrefix, serviceID, uuid.New().String(), contentTypeToExtension(detectedType))

	metadata := map[string]string{
		"Detected-Content-Type": detectedType,
		"Service-ID":            fmt.Sprintf("%d", serviceID),
		"Uploaded-At":           time.Now().UTC().Format(time.RFC3339),
	}

	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, fullFile, fileSize, minio.PutObjectOptions{
		ContentType:  detectedType,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return objectKey, nil
}

func (s *MinIOStorageService) DeleteServicePhoto(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if strings.Contains(objectKey, "..") || !strings.HasPrefix(objectKey, photoPathPrefix+"/") {
		return ErrDeleteFailed
	}
	if err := s.lazyInit(ctx); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *MinIOStorageService) GeneratePhotoURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presignedURL.String(), nil
}

func contentTypeToExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
