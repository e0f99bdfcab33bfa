package repository

import (
	"context"

	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/shared"
)

// AuditRepository writes the append-only action trail. Rows are never
// updated or deleted.
type AuditRepository struct {
	db db.DBTX
}

func NewAuditRepository(dbtx db.DBTX) *AuditRepository {
	return &AuditRepository{db: dbtx}
}

func (r *AuditRepository) Append(ctx context.Context, entry shared.AuditEntry) error {
	query, args, err := qb.Insert("audit_log").
		Columns("user_id", "action", "module", "details", "ip_address", "user_agent").
		Values(entry.UserID, entry.Action, entry.Module, entry.Details, entry.IPAddress, entry.UserAgent).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build audit insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to append audit entry", err)
	}
	return nil
}
