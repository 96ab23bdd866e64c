package repository

import (
	"context"
	"time"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/pkg/upload"
)

// prepareFileURLs rewrites stored paths into URLs a client can fetch.
// Local files get the public base URL prefixed, S3 objects get a
// presigned URL with the configured TTL.
func prepareFileURLs(
	f *domain.File,
	baseURL string,
	presignTTL time.Duration,
	uploadClient upload.Client,

) error {
	if f == nil {
		return nil
	}

	provider, _ := f.Props[domain.FilePropProvider].(string)
	switch upload.Provider(provider) {
	case upload.Local:
		f.URL = common.JoinURLPath(baseURL, f.URL)
		if f.ThumbnailURL != "" {
			f.ThumbnailURL = common.JoinURLPath(baseURL, f.ThumbnailURL)
		}

	case upload.S3:
		ctx := context.Background()
		storagePath, _ := f.Props[domain.FilePropStoragePath].(string)
		presignedURL, err := uploadClient.GenerateGetPresignURL(ctx, storagePath, presignTTL)
		if err != nil {
			return err
		}
		f.URL = presignedURL

		if f.ThumbnailURL != "" {
			thumbPath, _ := f.Props[domain.FilePropThumbStoragePath].(string)
			presignedThumbURL, tErr := uploadClient.GenerateGetPresignURL(ctx, thumbPath, presignTTL)
			if tErr != nil {
				return tErr
			}
			f.ThumbnailURL = presignedThumbURL
		}
	}
	return nil
}
