package repository

import (
	"context"

	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/shared"
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

func (r *NotificationRepository) Create(ctx context.Context, rec shared.NotificationRecord) error {
	query, args, err := qb.Insert("notifications").
		Columns("user_id", "type", "title", "message", "link").
		Values(rec.UserID, rec.Type, rec.Title, rec.Message, rec.Link).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build notification insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create notification", err)
	}
	return nil
}
