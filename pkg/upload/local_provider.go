package upload

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

const (
	StaticsFsPath = "/uploads/"
)

// LocalUploader writes files under a directory served as static content.
// Presigning is a no-op, local URLs are public as-is.
type LocalUploader struct {
	uploadDirPath string
}

func NewLocalUploader(opts *Config) (*LocalUploader, error) {
	return &LocalUploader{
		uploadDirPath: opts.LocalDir,
	}, nil
}

func (u *LocalUploader) saveFile(src io.Reader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func (u *LocalUploader) Upload(files []*File, subPath string) ([]*UploadedFileInfo, error) {
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

func (u *LocalUploader) uploadOne(file *File, subPath string) (*UploadedFileInfo, error) {
	hash := generateHash()
	info := &UploadedFileInfo{
		Name:        file.Name,
		Mime:        file.Mime,
		Ext:         getExt(file.Name),
		Size:        int64(len(file.Content)),
		Provider:    Local,
		StoragePath: path.Join(u.uploadDirPath, subPath, generateFileName(file.Name, hash)),
	}

	if err := u.saveFile(bytes.NewReader(file.Content), info.StoragePath); err != nil {
		return nil, err
	}
	info.URL = path.Join(StaticsFsPath, generateFileName(file.Name, hash))

	if !file.IsImage() {
		return info, nil
	}

	// A broken image still uploads fine, it just has no thumbnail.
	width, height, thumbnail, err := DecodeImgAndGenThumbnail(
		bytes.NewReader(file.Content), DefaultThumbnailWidthInPx, DefaultThumbnailHeightInPx)
	if err != nil {
		return info, nil
	}

	thumbnailName := generateThumbnailName(file.Name, hash)
	info.Width = width
	info.Height = height
	info.ThumbnailStoragePath = path.Join(u.uploadDirPath, subPath, thumbnailName)
	if err := imaging.Save(thumbnail, info.ThumbnailStoragePath); err != nil {
		return nil, err
	}
	info.ThumbnailURL = path.Join(StaticsFsPath, thumbnailName)

	return info, nil
}

func (u *LocalUploader) Remove(fileInfos []*UploadedFileInfo) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, fileInfo := range fileInfos {
		fileInfo := fileInfo
		g.Go(func() error {
			if err := os.Remove(fileInfo.StoragePath); err != nil {
				return err
			}
			if fileInfo.ThumbnailStoragePath != "" {
				return os.Remove(fileInfo.ThumbnailStoragePath)
			}
			return nil
		})
	}

	return g.Wait()
}

func (u *LocalUploader) GenerateGetPresignURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", nil
}
