package repository

import (
	"context"

	"gorm.io/gorm"

	"atelier-backend/database"
	"atelier-backend/domain"
)

type SessionRepository struct {
	sqlHandler *database.SQLHandler[domain.Session, domain.SessionFilter]
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	sqlHandler := database.NewSQLHandler[domain.Session](db, applyFilter)
	return &SessionRepository{
		sqlHandler: sqlHandler,
	}
}

func applyFilter(qb *gorm.DB, filter *domain.SessionFilter) *gorm.DB {
	if filter == nil {
		return qb
	}

	if filter.ID != nil {
		qb = qb.Where("id = ?", *filter.ID)
	}
	if filter.ActorID != nil {
		qb = qb.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.ActorType != nil {
		qb = qb.Where("actor_type = ?", *filter.ActorType)
	}
	if filter.RefreshToken != nil {
		qb = qb.Where("refresh_token = ?", *filter.RefreshToken)
	}
	if filter.Active != nil {
		qb = qb.Where("active = ?", *filter.Active)
	}

	return qb
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.sqlHandler.Create(ctx, session)
}

func (r *SessionRepository) FindByID(ctx context.Context, sessionID string, option *domain.FindOneOption) (*domain.Session, error) {
	return r.sqlHandler.FindByID(ctx, sessionID, option)
}

func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string, option *domain.FindOneOption) (*domain.Session, error) {
	return r.sqlHandler.FindOne(ctx, &domain.SessionFilter{
		RefreshToken: &refreshToken,
	}, option)
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	return r.sqlHandler.Update(ctx, session)
}

func (r *SessionRepository) InvalidateRefreshToken(ctx context.Context, sessionID string) error {
	return r.sqlHandler.UpdateFields(ctx, sessionID, map[string]any{
		"refresh_token": "",
	})
}

func (r *SessionRepository) Touch(ctx context.Context, sessionID string, at int64) error {
	return r.sqlHandler.UpdateFields(ctx, sessionID, map[string]any{
		"last_activity_at": at,
	})
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.sqlHandler.DeleteByID(ctx, sessionID)
}
