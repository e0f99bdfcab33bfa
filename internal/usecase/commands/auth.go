package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/pkg/errs"
	"lgu-facilities/internal/pkg/jwt"
	"lgu-facilities/internal/pkg/password"
	"lgu-facilities/internal/usecase/queries"
)

var (
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
)

type LoginResult struct {
	User        *queries.AuthorizedUserView
	AccessToken string
}

// UserStore is the credential-side view of the user table. FindByEmail
// returns the stored password hash alongside the read model.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error)
	FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

type AuthCommands interface {
	Login(ctx context.Context, email, plainPassword string) (*LoginResult, error)
}

type authCommandsImpl struct {
	store      UserStore
	jwtService *jwt.Service
}

func NewAuthCommands(store UserStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		store:      store,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, email, plainPassword string) (*LoginResult, error) {
	view, hash, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		// Same error as a password mismatch to prevent user enumeration.
		return nil, ErrInvalidCredentials
	}
	if !view.IsActive {
		return nil, queries.ErrUserInactive
	}
	if err := password.ComparePassword(hash, plainPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := user.NewRole(view.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	token, err := a.jwtService.GenerateToken(view.ID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	if err := a.store.UpdateLastLogin(ctx, view.ID); err != nil {
		// Not critical; the login itself succeeded.
		slog.Warn("failed to update last login", "user_id", view.ID, "error", err.Error())
	}

	return &LoginResult{User: view, AccessToken: token}, nil
}
