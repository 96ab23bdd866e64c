package upload

import (
	"bytes"
	"image"
	"io"
	"path"
	"strings"

	"github.com/nfnt/resize"
	"github.com/samber/lo"
)

const (
	HashLength = 32
)

type File struct {
	Name    string `json:"name"`
	Mime    string `json:"mime"`
	Content []byte `json:"content"`
}

func (file *File) IsImage() bool {
	return strings.HasPrefix(file.Mime, "image/")
}

type UploadedFileInfo struct {
	Name                 string   `json:"name"`
	Mime                 string   `json:"mime"`
	Ext                  string   `json:"ext"`
	URL                  string   `json:"url"`
	ThumbnailURL         string   `json:"thumbnail_url"`
	Width                int64    `json:"width"`
	Height               int64    `json:"height"`
	Size                 int64    `json:"size"`
	StoragePath          string   `json:"storage_path"`
	ThumbnailStoragePath string   `json:"thumbnail_storage_path"`
	Provider             Provider `json:"provider"`
}

func getExt(fileName string) string {
	return path.Ext(fileName)
}

// generateHash prefixes stored names so two uploads of the same file
// never collide.
func generateHash() string {
	return lo.RandomString(HashLength, lo.AlphanumericCharset)
}

func generateFileName(filename, hash string) string {
	return hash + "_" + strings.ReplaceAll(filename, " ", "-")
}

func generateThumbnailName(filename, hash string) string {
	return "thumb_" + hash + "_" + strings.ReplaceAll(filename, " ", "-")
}

func DecodeImgAndGenThumbnail(r io.Reader, thumbWidth uint, thumbHeight uint) (width int64, height int64, thumbnail image.Image, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, err
	}

	thumbnail = resize.Resize(thumbWidth, thumbHeight, img, resize.Lanczos3)
	return int64(img.Bounds().Dx()), int64(img.Bounds().Dy()), thumbnail, nil
}
