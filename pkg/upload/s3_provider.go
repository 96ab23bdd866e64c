package upload

import (
	"bytes"
	"context"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"runtime"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyEndpoints "github.com/aws/smithy-go/endpoints"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// S3Uploader stores objects privately and serves them through presigned
// GET URLs.
type S3Uploader struct {
	s3Client        *s3.Client
	s3PresignClient *s3.PresignClient
	uploader        *manager.Uploader
	bucketName      string
	pathPrefix      string
	region          string
}

type ResolverV2 struct{}

func (*ResolverV2) ResolveEndpoint(ctx context.Context, params s3.EndpointParameters) (
	smithyEndpoints.Endpoint, error,
) {
	return s3.NewDefaultEndpointResolverV2().ResolveEndpoint(ctx, params)
}

func NewS3Provider(opts *Config) (*S3Uploader, error) {
	creds := credentials.NewStaticCredentialsProvider(opts.S3AccessKey, opts.S3SecretKey, "")

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithCredentialsProvider(creds))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.S3EndpointURL)
		o.Region = opts.S3Region
		o.EndpointResolverV2 = &ResolverV2{}
	})

	return &S3Uploader{
		uploader:        manager.NewUploader(client),
		s3Client:        client,
		s3PresignClient: s3.NewPresignClient(client),
		bucketName:      opts.S3BucketName,
		pathPrefix:      opts.S3PathPrefix,
		region:          opts.S3Region,
	}, nil
}

func (u *S3Uploader) putObject(r io.Reader, objectKey, contentType string) (*manager.UploadOutput, error) {
	return u.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(u.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
		Body:        r,
		ACL:         types.ObjectCannedACLPrivate,
	})
}

func (u *S3Uploader) Upload(files []*File, subPath string) ([]*UploadedFileInfo, error) {
	fileInfos := make([]*UploadedFileInfo, 0, len(files))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		file := file
		g.Go(func() error {
			info, err := u.uploadOne(file, subPath)
			if err != nil {
				return err
			}
			mu.Lock()
			fileInfos = append(fileInfos, info)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fileInfos, nil
}

func (u *S3Uploader) uploadOne(file *File, subPath string) (*UploadedFileInfo, error) {
	hash := generateHash()
	info := &UploadedFileInfo{
		Name:        file.Name,
		Mime:        file.Mime,
		Ext:         getExt(file.Name),
		Size:        int64(len(file.Content)),
		Provider:    S3,
		StoragePath: path.Join(u.pathPrefix, subPath, generateFileName(file.Name, hash)),
	}

	s3Output, err := u.putObject(bytes.NewReader(file.Content), info.StoragePath, info.Mime)
	if err != nil {
		return nil, err
	}
	info.URL = s3Output.Location

	if !file.IsImage() {
		return info, nil
	}

	width, height, thumbnail, err := DecodeImgAndGenThumbnail(
		bytes.NewReader(file.Content), DefaultThumbnailWidthInPx, DefaultThumbnailHeightInPx)
	if err != nil {
		return info, nil
	}

	thumbnailName := generateThumbnailName(file.Name, hash)
	info.Width = width
	info.Height = height
	info.ThumbnailStoragePath = path.Join(u.pathPrefix, subPath, thumbnailName)

	thumbnailBuffer := new(bytes.Buffer)
	if err := imaging.Encode(thumbnailBuffer, thumbnail, imaging.PNG); err != nil {
		return nil, err
	}
	thumbOutput, err := u.putObject(thumbnailBuffer, info.ThumbnailStoragePath, "image/png")
	if err != nil {
		return nil, err
	}
	info.ThumbnailURL = thumbOutput.Location

	return info, nil
}

func (u *S3Uploader) Remove(fileInfos []*UploadedFileInfo) error {
	if len(fileInfos) == 0 {
		return nil
	}

	var objectIds []types.ObjectIdentifier
	for _, fileInfo := range fileInfos {
		objectIds = append(objectIds, types.ObjectIdentifier{Key: aws.String(fileInfo.StoragePath)})
		if fileInfo.ThumbnailStoragePath != "" {
			objectIds = append(objectIds, types.ObjectIdentifier{Key: aws.String(fileInfo.ThumbnailStoragePath)})
		}
	}

	_, err := u.s3Client.DeleteObjects(context.Background(), &s3.DeleteObjectsInput{
		Bucket: aws.String(u.bucketName),
		Delete: &types.Delete{Objects: objectIds},
	})
	return err
}

func (u *S3Uploader) GenerateGetPresignURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	presignReq, err := u.s3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Key:    &objectKey,
		Bucket: &u.bucketName,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", err
	}

	return presignReq.URL, nil
}
