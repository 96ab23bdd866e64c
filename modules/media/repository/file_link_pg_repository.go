package repository

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"atelier-backend/common"
	"atelier-backend/database"
	"atelier-backend/domain"
)

type FileLinkRepository struct {
	sqlHandler *database.SQLHandler[domain.FileLink, domain.FileLinkFilter]
}

func NewFileLinkRepository(db *gorm.DB) *FileLinkRepository {
	return &FileLinkRepository{
		sqlHandler: database.NewSQLHandler[domain.FileLink](db, applyFileLinkFilter),
	}
}

func applyFileLinkFilter(qb *gorm.DB, filter *domain.FileLinkFilter) *gorm.DB {
	if filter == nil {
		return qb
	}
	if filter.FileID != nil {
		qb = qb.Where("file_id = ?", *filter.FileID)
	}
	if filter.RelatedID != nil {
		qb = qb.Where("related_id = ?", *filter.RelatedID)
	}
	if len(filter.RelatedIDIn) > 0 {
		qb = qb.Where("related_id IN ?", filter.RelatedIDIn)
	}
	if filter.RelatedType != nil {
		qb = qb.Where("related_type = ?", *filter.RelatedType)
	}
	if filter.Field != nil {
		qb = qb.Where("field = ?", *filter.Field)
	}
	if len(filter.FieldIn) > 0 {
		qb = qb.Where("field IN ?", filter.FieldIn)
	}
	return qb
}

func (r *FileLinkRepository) CreateMany(ctx context.Context, links []*domain.FileLink) error {
	return r.sqlHandler.CreateMany(ctx, links)
}

func (r *FileLinkRepository) FindMany(ctx context.Context, filter *domain.FileLinkFilter, option *domain.FindManyOption) ([]*domain.FileLink, error) {
	return r.sqlHandler.FindMany(ctx, filter, option)
}

func (r *FileLinkRepository) Count(ctx context.Context, filter *domain.FileLinkFilter) (int64, error) {
	return r.sqlHandler.Count(ctx, filter)
}

// ReplaceFiles sets the ordered file list attached to a record field,
// creating missing links and removing links for files no longer listed.
func (r *FileLinkRepository) ReplaceFiles(
	ctx context.Context,
	relatedType string,
	relatedID string,
	field string,
	fileIDs []string,

) error {
	existing, err := r.sqlHandler.FindMany(ctx, &domain.FileLinkFilter{
		RelatedID:   common.New(relatedID),
		RelatedType: common.New(relatedType),
		Field:       common.New(field),
	}, nil)
	if err != nil {
		return err
	}

	existingByFile := make(map[string]*domain.FileLink, len(existing))
	for _, link := range existing {
		existingByFile[link.FileID] = link
	}

	var toCreate []*domain.FileLink
	for idx, fileID := range lo.Uniq(fileIDs) {
		order := idx + 1
		if link, found := existingByFile[fileID]; found {
			if link.Order != order {
				link.Order = order
				if err := r.sqlHandler.Update(ctx, link); err != nil {
					return err
				}
			}
			continue
		}
		toCreate = append(toCreate, &domain.FileLink{
			FileID:      fileID,
			RelatedID:   relatedID,
			RelatedType: relatedType,
			Field:       field,
			Order:       order,
		})
	}
	if len(toCreate) > 0 {
		if err := r.sqlHandler.CreateMany(ctx, toCreate); err != nil {
			return err
		}
	}

	keep := make(map[string]struct{}, len(fileIDs))
	for _, fileID := range fileIDs {
		keep[fileID] = struct{}{}
	}
	for _, link := range existing {
		if _, found := keep[link.FileID]; found {
			continue
		}
		if _, err := r.sqlHandler.DeleteMany(ctx, &domain.FileLinkFilter{
			FileID:      common.New(link.FileID),
			RelatedID:   common.New(relatedID),
			RelatedType: common.New(relatedType),
			Field:       common.New(field),
		}); err != nil {
			return err
		}
	}
	return nil
}

// GetFiles returns the files attached to a record field in display order.
func (r *FileLinkRepository) GetFiles(
	ctx context.Context,
	relatedType string,
	relatedID string,
	field string,

) ([]*domain.File, error) {
	links, err := r.sqlHandler.FindMany(ctx, &domain.FileLinkFilter{
		RelatedID:   common.New(relatedID),
		RelatedType: common.New(relatedType),
		Field:       common.New(field),
	}, &domain.FindManyOption{
		Preloads: []string{"File"},
		Sort:     []string{`"order" ASC`},
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(links, func(link *domain.FileLink, _ int) *domain.File {
		return link.File
	}), nil
}
