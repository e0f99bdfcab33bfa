//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lgu-facilities/internal/pkg/jwt"
	"lgu-facilities/internal/pkg/password"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/queries"
)

type fakeUserStore struct {
	view       *queries.AuthorizedUserView
	hash       string
	findErr    error
	lastLogins []uuid.UUID
}

func (s *fakeUserStore) FindByID(_ context.Context, _ uuid.UUID) (*queries.AuthorizedUserView, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.view, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, _ string) (*queries.AuthorizedUserView, string, error) {
	if s.findErr != nil {
		return nil, "", s.findErr
	}
	return s.view, s.hash, nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	s.lastLogins = append(s.lastLogins, userID)
	return nil
}

type AuthCommandsTestSuite struct {
	suite.Suite
	store *fakeUserStore
	jwts  *jwt.Service
	cmd   commands.AuthCommands
}

func (s *AuthCommandsTestSuite) SetupTest() {
	hash, err := password.HashPassword("SecurePass123!")
	s.Require().NoError(err)

	s.store = &fakeUserStore{
		view: &queries.AuthorizedUserView{
			ID:       uuid.New(),
			Name:     "Pedro Reyes",
			Email:    "pedro@example.com",
			Role:     "resident",
			Verified: true,
			IsActive: true,
		},
		hash: hash,
	}
	s.jwts = jwt.NewService("test-secret", time.Hour)
	s.cmd = commands.NewAuthCommands(s.store, s.jwts)
}

func TestAuthCommandsSuite(t *testing.T) {
	suite.Run(t, new(AuthCommandsTestSuite))
}

func (s *AuthCommandsTestSuite) TestLoginSuccess() {
	result, err := s.cmd.Login(context.Background(), "pedro@example.com", "SecurePass123!")

	s.Require().NoError(err)
	s.Equal(s.store.view.ID, result.User.ID)
	s.NotEmpty(result.AccessToken)

	claims, err := s.jwts.ValidateToken(result.AccessToken)
	s.Require().NoError(err)
	s.Equal(s.store.view.ID, claims.UserID)
	s.Equal("resident", claims.Role)

	s.Equal([]uuid.UUID{s.store.view.ID}, s.store.lastLogins)
}

func (s *AuthCommandsTestSuite) TestLoginWrongPassword() {
	_, err := s.cmd.Login(context.Background(), "pedro@example.com", "wrong-password")

	s.Require().ErrorIs(err, commands.ErrInvalidCredentials)
	s.Empty(s.store.lastLogins)
}

func (s *AuthCommandsTestSuite) TestLoginUnknownEmail() {
	s.store.findErr = errors.New("no rows")

	_, err := s.cmd.Login(context.Background(), "nobody@example.com", "SecurePass123!")

	s.Require().ErrorIs(err, commands.ErrInvalidCredentials)
}

func (s *AuthCommandsTestSuite) TestLoginInactiveAccount() {
	s.store.view.IsActive = false

	_, err := s.cmd.Login(context.Background(), "pedro@example.com", "SecurePass123!")

	s.Require().ErrorIs(err, queries.ErrUserInactive)
	s.Empty(s.store.lastLogins)
}

func (s *AuthCommandsTestSuite) TestLoginUnknownRole() {
	s.store.view.Role = "superuser"

	_, err := s.cmd.Login(context.Background(), "pedro@example.com", "SecurePass123!")

	s.Require().ErrorIs(err, commands.ErrAuthenticationFailed)
}
