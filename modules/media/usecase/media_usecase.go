package usecase

import (
	"context"

	"atelier-backend/authz"
	"atelier-backend/domain"
	"atelier-backend/pkg/upload"
)

type FileRepository interface {
	CreateMany(ctx context.Context, files []*domain.File) error
	FindByID(ctx context.Context, fileID string, option *domain.FindOneOption) (*domain.File, error)
	FindMany(ctx context.Context, filter *domain.FileFilter, option *domain.FindManyOption) ([]*domain.File, error)
	FindPage(ctx context.Context, filter *domain.FileFilter, option *domain.FindPageOption) ([]*domain.File, *domain.Pagination, error)
	Delete(ctx context.Context, fileID string) error
}

type FileLinkRepository interface {
	ReplaceFiles(ctx context.Context, relatedType, relatedID, field string, fileIDs []string) error
	Count(ctx context.Context, filter *domain.FileLinkFilter) (int64, error)
}

type mediaUsecase struct {
	files   FileRepository
	links   FileLinkRepository
	storage upload.Client
	subPath string
	guard   *authz.Guard[domain.File, domain.FileFilter]
}

func newMediaGuard() *authz.Guard[domain.File, domain.FileFilter] {
	return authz.NewGuard(
		authz.Policy{
			Resource: domain.ResourceMedia,
			// Customers upload and read their own assets, attaching and
			// deleting stays with staff.
			CustomerActions: map[domain.Action]authz.Decision{
				domain.ActionCreate: authz.Allow(),
				domain.ActionRead:   authz.Allow(),
			},
		},
		func(f *domain.File) string { return f.CustomerID },
		func(actx *domain.AuthContext, f *domain.FileFilter) *domain.FileFilter {
			if f == nil {
				f = &domain.FileFilter{}
			}
			f.CustomerID = &actx.UserID
			return f
		},
	)
}

func NewMediaUsecase(files FileRepository, links FileLinkRepository, storage upload.Client, subPath string) domain.MediaUsecase {
	return &mediaUsecase{
		files:   files,
		links:   links,
		storage: storage,
		subPath: subPath,
		guard:   newMediaGuard(),
	}
}

func (u *mediaUsecase) Upload(ctx context.Context, actx *domain.AuthContext, req *domain.UploadRequest) ([]*domain.File, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionCreate); err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, domain.ErrUploadFilesRequired
	}

	customerID := req.CustomerID
	if actx.IsCustomer() {
		// Customer uploads always land in their own bucket.
		customerID = actx.UserID
	}

	toUpload := make([]*upload.File, len(req.Files))
	for idx, f := range req.Files {
		toUpload[idx] = &upload.File{
			Name:    f.Name,
			Mime:    f.Mime,
			Content: f.Content,
		}
	}

	uploaded, err := u.storage.Upload(toUpload, u.subPath)
	if err != nil {
		return nil, domain.ErrUploadFilesFailed.WithWrap(err)
	}

	records := make([]*domain.File, len(uploaded))
	for idx, info := range uploaded {
		records[idx] = &domain.File{
			Name:         info.Name,
			Mime:         info.Mime,
			Ext:          info.Ext,
			URL:          info.URL,
			ThumbnailURL: info.ThumbnailURL,
			Width:        info.Width,
			Height:       info.Height,
			Size:         info.Size,
			CustomerID:   customerID,
			UploadedBy:   actx.UserID,
			Props: domain.JSONB{
				domain.FilePropProvider:         string(info.Provider),
				domain.FilePropStoragePath:      info.StoragePath,
				domain.FilePropThumbStoragePath: info.ThumbnailStoragePath,
			},
		}
	}

	if err := u.files.CreateMany(ctx, records); err != nil {
		return nil, domain.ErrUploadFilesFailed.WithWrap(err)
	}
	return records, nil
}

func (u *mediaUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, fileID string) (*domain.File, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	file, err := u.files.FindByID(ctx, fileID, nil)
	if err != nil {
		return nil, domain.ErrFileNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (u *mediaUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.FileFilter, option *domain.FindPageOption) ([]*domain.File, *domain.Pagination, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	filter = u.guard.ScopeFilter(actx, filter)
	return u.files.FindPage(ctx, filter, option)
}

func (u *mediaUsecase) Attach(ctx context.Context, actx *domain.AuthContext, req *domain.AttachFilesRequest) error {
	if err := u.guard.RequireStaff(actx, domain.ActionUpdate); err != nil {
		return err
	}

	found, err := u.files.FindMany(ctx, &domain.FileFilter{IDIn: req.FileIDs}, nil)
	if err != nil {
		return err
	}
	if len(found) != len(req.FileIDs) {
		return domain.ErrFileNotFound.WithReason("one or more files do not exist")
	}

	return u.links.ReplaceFiles(ctx, req.RelatedType, req.RelatedID, req.Field, req.FileIDs)
}

func (u *mediaUsecase) Delete(ctx context.Context, actx *domain.AuthContext, fileID string) error {
	if err := u.guard.RequireStaff(actx, domain.ActionDelete); err != nil {
		return err
	}

	file, err := u.files.FindByID(ctx, fileID, nil)
	if err != nil {
		return domain.ErrFileNotFound.WithWrap(err)
	}

	attached, err := u.links.Count(ctx, &domain.FileLinkFilter{FileID: &file.ID})
	if err != nil {
		return err
	}
	if attached > 0 {
		return domain.ErrFileInUse.WithDetail("links", attached)
	}

	if err := u.files.Delete(ctx, fileID); err != nil {
		return err
	}

	// Best effort, the record is already gone. An orphaned object in
	// storage is preferable to a record pointing at a deleted object.
	provider, _ := file.Props[domain.FilePropProvider].(string)
	storagePath, _ := file.Props[domain.FilePropStoragePath].(string)
	thumbPath, _ := file.Props[domain.FilePropThumbStoragePath].(string)
	_ = u.storage.Remove([]*upload.UploadedFileInfo{{
		Provider:             upload.Provider(provider),
		StoragePath:          storagePath,
		ThumbnailStoragePath: thumbPath,
	}})

	return nil
}
