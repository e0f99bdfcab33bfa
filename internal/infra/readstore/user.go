package readstore

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/queries"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	query, args, err := qb.Select("id", "name", "email", "role", "verified", "active").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build user select", err)
	}

	var view queries.AuthorizedUserView
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&view.ID, &view.Name, &view.Email, &view.Role, &view.Verified, &view.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return &view, nil
}

// FindByEmail also returns the stored password hash for credential checks.
func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	query, args, err := qb.Select("id", "name", "email", "role", "verified", "active", "password_hash").
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, "", infra.WrapRepoErr("failed to build user select", err)
	}

	var (
		view queries.AuthorizedUserView
		hash string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&view.ID, &view.Name, &view.Email, &view.Role, &view.Verified, &view.IsActive, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	return &view, hash, nil
}

func (r *UserReadStore) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	query, args, err := qb.Update("users").
		Set("last_login_at", sq.Expr("now()")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build last login update", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}
