package domain

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
)

/****************************
*        Media errors       *
****************************/

var (
	ErrUploadFilesFailed = &DetailedError{
		IDField:         "UPLOAD_FILES_FAILED",
		StatusDescField: http.StatusText(http.StatusInternalServerError),
		ErrorField:      "Failed to upload files",
		StatusCodeField: http.StatusInternalServerError,
	}
	ErrDeleteFilesFailed = &DetailedError{
		IDField:         "DELETE_FILES_FAILED",
		StatusDescField: http.StatusText(http.StatusInternalServerError),
		ErrorField:      "Failed to delete files",
		StatusCodeField: http.StatusInternalServerError,
	}
	ErrUploadInvalidContentType = &DetailedError{
		IDField:         "UPLOAD_INVALID_CONTENT_TYPE",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "Invalid content type for upload",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrUploadFilesRequired = &DetailedError{
		IDField:         "UPLOAD_FILES_REQUIRED",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "No files provided for upload",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrFileNotFound = &DetailedError{
		IDField:         "FILE_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "File not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrFileInUse = &DetailedError{
		IDField:         "FILE_IN_USE",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "File is still attached to a record",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/***************************************
*       Media entities and types       *
***************************************/

// File is an uploaded asset. CustomerID is set when the file belongs to a
// customer-owned record and scopes what customer accounts can read.
type File struct {
	SQLModel
	Name         string `json:"name" gorm:"column:name;type:varchar(255)"`
	Mime         string `json:"mime" gorm:"column:mime;type:varchar(128)"`
	Ext          string `json:"ext" gorm:"column:ext;type:varchar(128)"`
	URL          string `json:"url" gorm:"column:url;type:text"`
	ThumbnailURL string `json:"thumbnail_url" gorm:"column:thumbnail_url;type:text"`
	Width        int64  `json:"width" gorm:"column:width"`
	Height       int64  `json:"height" gorm:"column:height"`
	Size         int64  `json:"size" gorm:"column:size"`
	CustomerID   string `json:"customer_id" gorm:"column:customer_id;type:varchar(36);index"`
	UploadedBy   string `json:"uploaded_by" gorm:"column:uploaded_by;type:varchar(36)"`
	Props        JSONB  `json:"-" gorm:"column:props;type:jsonb"`
}

const (
	FilePropProvider         = "provider"
	FilePropStoragePath      = "storage_path"
	FilePropThumbStoragePath = "thumb_storage_path"
)

type FileFilter struct {
	ID             *string  `json:"id" form:"id"`
	IDIn           []string `json:"id_in" form:"id_in"`
	Ext            *string  `json:"ext" form:"ext"`
	CustomerID     *string  `json:"customer_id" form:"customer_id"`
	UploadedBy     *string  `json:"uploaded_by" form:"uploaded_by"`
	IncludeDeleted *bool    `json:"include_deleted" form:"include_deleted"`
}

// FileLink attaches a file to an owning record, such as an order or a
// product, under a named field.
type FileLink struct {
	FileID      string `json:"file_id" gorm:"primaryKey"`
	RelatedID   string `json:"related_id" gorm:"primaryKey;index:idx_related_lookup,priority:1"`
	RelatedType string `json:"related_type" gorm:"primaryKey;index:idx_related_lookup,priority:2"`
	Field       string `json:"field" gorm:"primaryKey;index:idx_related_lookup,priority:3"`
	Order       int    `json:"order" gorm:"primaryKey,type:int4"`
	File        *File  `json:"file"`
}

type FileLinkFilter struct {
	FileID      *string  `json:"file_id" form:"file_id"`
	RelatedID   *string  `json:"related_id" form:"related_id"`
	RelatedIDIn []string `json:"related_id_in" form:"related_id_in"`
	RelatedType *string  `json:"related_type" form:"related_type"`
	Field       *string  `json:"field" form:"field"`
	FieldIn     []string `json:"field_in" form:"field_in"`
}

type FileWithContent struct {
	File
	Content []byte `json:"content" gorm:"-"`
}

type FileRequest struct {
	ID string `json:"id" validate:"required"`
}

func NewFileFromRequest(fileReq *FileRequest) *File {
	if fileReq == nil || fileReq.ID == "" {
		return nil
	}
	return &File{
		SQLModel: SQLModel{
			ID: fileReq.ID,
		},
	}
}

func NewFileWithContents(fileHeaders []*multipart.FileHeader) ([]*FileWithContent, error) {
	fileWithContents := make([]*FileWithContent, len(fileHeaders))
	for idx, fileHeader := range fileHeaders {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}

		fileContent, err := func() ([]byte, error) {
			defer file.Close()
			return io.ReadAll(file)
		}()
		if err != nil {
			return nil, err
		}

		fileWithContents[idx] = &FileWithContent{
			File: File{
				Name: fileHeader.Filename,
				Mime: fileHeader.Header.Get("Content-Type"),
				Size: fileHeader.Size,
			},
			Content: fileContent,
		}
	}
	return fileWithContents, nil
}

/**********************************************
*       Media usecase interfaces and types     *
**********************************************/
type MediaUsecase interface {
	Upload(ctx context.Context, actx *AuthContext, req *UploadRequest) ([]*File, error)
	FindByID(ctx context.Context, actx *AuthContext, fileID string) (*File, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *FileFilter, option *FindPageOption) ([]*File, *Pagination, error)
	Attach(ctx context.Context, actx *AuthContext, req *AttachFilesRequest) error
	Delete(ctx context.Context, actx *AuthContext, fileID string) error
}

type UploadRequest struct {
	Files []*FileWithContent `json:"-" validate:"required,min=1"`
	// CustomerID scopes the uploaded files to a customer, staff may leave
	// it empty for shared assets.
	CustomerID string `json:"customer_id" validate:"omitempty,uuid"`
}

type AttachFilesRequest struct {
	FileIDs     []string `json:"file_ids" validate:"required,min=1"`
	RelatedID   string   `json:"related_id" validate:"required,uuid"`
	RelatedType string   `json:"related_type" validate:"required"`
	Field       string   `json:"field" validate:"required"`
}
