package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"atelier-backend/database"
	"atelier-backend/domain"
	"atelier-backend/pkg/upload"
)

type FileRepository struct {
	sqlHandler   *database.SQLHandler[domain.File, domain.FileFilter]
	baseURL      string
	presignTTL   time.Duration
	uploadClient upload.Client
}

type ServerConfig interface {
	Domain() string
}

type UploadConfig interface {
	S3PresignURLTTL() time.Duration
}

func NewFileRepository(db *gorm.DB, srvCfg ServerConfig, uploadCfg UploadConfig, client upload.Client) *FileRepository {
	return &FileRepository{
		sqlHandler:   database.NewSQLHandler[domain.File](db, applyFileFilter),
		baseURL:      srvCfg.Domain(),
		presignTTL:   uploadCfg.S3PresignURLTTL(),
		uploadClient: client,
	}
}

func applyFileFilter(qb *gorm.DB, filter *domain.FileFilter) *gorm.DB {
	if filter == nil {
		return qb
	}
	if filter.ID != nil {
		qb = qb.Where("id = ?", *filter.ID)
	}
	if len(filter.IDIn) > 0 {
		qb = qb.Where("id IN ?", filter.IDIn)
	}
	if filter.Ext != nil {
		qb = qb.Where("ext = ?", *filter.Ext)
	}
	if filter.CustomerID != nil {
		qb = qb.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.UploadedBy != nil {
		qb = qb.Where("uploaded_by = ?", *filter.UploadedBy)
	}
	if filter.IncludeDeleted == nil || !*filter.IncludeDeleted {
		qb = qb.Where("deleted_at = 0")
	}
	return qb
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	if err := r.sqlHandler.Create(ctx, file); err != nil {
		return err
	}
	return prepareFileURLs(file, r.baseURL, r.presignTTL, r.uploadClient)
}

func (r *FileRepository) CreateMany(ctx context.Context, files []*domain.File) error {
	if err := r.sqlHandler.CreateMany(ctx, files); err != nil {
		return err
	}
	for _, f := range files {
		if err := prepareFileURLs(f, r.baseURL, r.presignTTL, r.uploadClient); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, fileID string, option *domain.FindOneOption) (*domain.File, error) {
	file, err := r.sqlHandler.FindByID(ctx, fileID, option)
	if err != nil {
		return nil, err
	}
	if err := prepareFileURLs(file, r.baseURL, r.presignTTL, r.uploadClient); err != nil {
		return nil, err
	}
	return file, nil
}

func (r *FileRepository) FindMany(ctx context.Context, filter *domain.FileFilter, option *domain.FindManyOption) ([]*domain.File, error) {
	files, err := r.sqlHandler.FindMany(ctx, filter, option)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := prepareFileURLs(f, r.baseURL, r.presignTTL, r.uploadClient); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (r *FileRepository) FindPage(ctx context.Context, filter *domain.FileFilter, option *domain.FindPageOption) ([]*domain.File, *domain.Pagination, error) {
	files, pagination, err := r.sqlHandler.FindPage(ctx, filter, option)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range files {
		if err := prepareFileURLs(f, r.baseURL, r.presignTTL, r.uploadClient); err != nil {
			return nil, nil, err
		}
	}
	return files, pagination, nil
}

func (r *FileRepository) Delete(ctx context.Context, fileID string) error {
	return r.sqlHandler.DeleteByID(ctx, fileID)
}

func (r *FileRepository) Count(ctx context.Context, filter *domain.FileFilter) (int64, error) {
	return r.sqlHandler.Count(ctx, filter)
}
