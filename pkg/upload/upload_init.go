package upload

import (
	"context"
	"fmt"
	"time"
)

type Provider string

const (
	Local Provider = "local"
	S3    Provider = "s3"

	DefaultThumbnailWidthInPx  = 400
	DefaultThumbnailHeightInPx = 400
)

// Client stores uploaded files and hands back enough metadata to persist
// alongside the owning record. Image uploads also yield a thumbnail.
type Client interface {
	Upload(files []*File, subPath string) ([]*UploadedFileInfo, error)
	Remove(fileInfos []*UploadedFileInfo) error
	GenerateGetPresignURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

type Config struct {
	LocalDir string

	S3AccessKey   string
	S3SecretKey   string
	S3EndpointURL string
	S3BucketName  string
	S3PathPrefix  string
	S3Region      string
}

func New(provider Provider, options *Config) (Client, error) {
	switch provider {
	case Local:
		return NewLocalUploader(options)
	case S3:
		return NewS3Provider(options)
	default:
		return nil, fmt.Errorf("unsupported upload provider: %s", provider)
	}
}
