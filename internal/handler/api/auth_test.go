//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/handler/api"
	resdto "lgu-facilities/internal/handler/dto/response"
	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/queries"
	"lgu-facilities/tests/common/httptest"
	commandsmock "lgu-facilities/tests/mock/commands"
	queriesmock "lgu-facilities/tests/mock/queries"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockAuth    *commandsmock.MockAuthCommands
	mockQueries *queriesmock.MockUserQueries
	handler     *api.AuthHandler
	userID      uuid.UUID
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockAuth = commandsmock.NewMockAuthCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockUserQueries(s.mockCtrl)
	s.handler = api.NewAuthHandler(s.mockAuth, s.mockQueries, config.NewTestConfig())
	s.userID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", user.RoleResident)
		c.Next()
	}

	s.router.POST("/auth/login", s.handler.Login)
	s.router.POST("/auth/logout", authMiddleware, s.handler.Logout)
	s.router.GET("/auth/me", authMiddleware, s.handler.Me)
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) view() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       s.userID,
		Name:     "Juan Dela Cruz",
		Email:    "juan@example.com",
		Role:     "resident",
		Verified: true,
		IsActive: true,
	}
}

func (s *AuthHandlerTestSuite) TestLogin_Success() {
	s.mockAuth.EXPECT().
		Login(gomock.Any(), "juan@example.com", "SecurePass123!").
		Return(&commands.LoginResult{User: s.view(), AccessToken: "signed-token"}, nil)

	body := map[string]any{"email": "juan@example.com", "password": "SecurePass123!"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/login", body, "")

	var resp resdto.LoginResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Equal("signed-token", resp.AccessToken)
	s.Equal(s.userID, resp.User.ID)
	s.NotEmpty(w.Result().Cookies())
}

func (s *AuthHandlerTestSuite) TestLogin_InvalidCredentials() {
	s.mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, commands.ErrInvalidCredentials)

	body := map[string]any{"email": "juan@example.com", "password": "wrong-password"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/login", body, "")

	httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid email or password")
}

func (s *AuthHandlerTestSuite) TestLogin_InactiveAccount() {
	s.mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, queries.ErrUserInactive)

	body := map[string]any{"email": "juan@example.com", "password": "SecurePass123!"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/login", body, "")

	httptest.AssertErrorResponse(s.T(), w, http.StatusForbidden, "Account is deactivated")
}

func (s *AuthHandlerTestSuite) TestLogin_MalformedBody() {
	body := map[string]any{"email": "not-an-email", "password": "short"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/login", body, "")

	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
}

func (s *AuthHandlerTestSuite) TestMe_Success() {
	s.mockQueries.EXPECT().
		GetCurrentUser(gomock.Any(), s.userID).
		Return(s.view(), nil)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/auth/me", nil, "token")

	var resp queries.AuthorizedUserView
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Equal("juan@example.com", resp.Email)
}

func (s *AuthHandlerTestSuite) TestMe_NotFound() {
	s.mockQueries.EXPECT().
		GetCurrentUser(gomock.Any(), s.userID).
		Return(nil, queries.ErrUserNotFound)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/auth/me", nil, "token")

	httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "User not found")
}

func (s *AuthHandlerTestSuite) TestMe_Unauthenticated() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/auth/me", nil, "")

	httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Access token required")
}

func (s *AuthHandlerTestSuite) TestLogout() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/logout", nil, "token")

	s.Equal(http.StatusOK, w.Code)
}
