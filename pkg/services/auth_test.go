package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/storeit-dev/storeit/internal/auth"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/config"
	"github.com/storeit-dev/storeit/internal/database"
	"github.com/storeit-dev/storeit/pkg/models"
	"github.com/storeit-dev/storeit/pkg/schemas"
	"github.com/storeit-dev/storeit/pkg/types"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AuthServiceSuite struct {
	suite.Suite
	db     *gorm.DB
	cacher cache.Cacher
	cnf    *config.JWTConfig
	srv    *AuthService
}

func (s *AuthServiceSuite) SetupTest() {
	s.db = database.NewTestDatabase(s.T())
	s.cacher = cache.NewMemoryCache(1024 * 1024)
	s.cnf = &config.JWTConfig{Secret: "test-secret", SessionTime: time.Hour}
	s.srv = NewAuthService(s.db, s.cacher, s.cnf)
}

func (s *AuthServiceSuite) register(email, password string) *schemas.UserOut {
	out, appErr := s.srv.Register(context.Background(), &schemas.Register{
		Email:    email,
		Name:     "Test User",
		Password: password,
	})
	s.Require().Nil(appErr)
	return out
}

func (s *AuthServiceSuite) TestRegister() {
	out := s.register("user@example.com", "hunter2hunter2")
	s.Equal("user@example.com", out.Email)
	s.NotEmpty(out.ID)

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "id = ?", out.ID).Error)
	s.NotEqual("hunter2hunter2", stored.PasswordHash)
}

func (s *AuthServiceSuite) TestRegisterDuplicateEmail() {
	s.register("user@example.com", "hunter2hunter2")

	_, appErr := s.srv.Register(context.Background(), &schemas.Register{
		Email:    "user@example.com",
		Name:     "Someone Else",
		Password: "hunter2hunter2",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusConflict, appErr.Code)
}

func (s *AuthServiceSuite) TestLogIn() {
	user := s.register("user@example.com", "hunter2hunter2")

	out, appErr := s.srv.LogIn(context.Background(), &schemas.Login{
		Email:    "user@example.com",
		Password: "hunter2hunter2",
	})
	s.Require().Nil(appErr)
	s.Equal(user.ID, out.User.ID)
	s.NotEmpty(out.Token)

	claims, err := auth.Decode(s.cnf.Secret, out.Token)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.Subject)
	s.Equal("user@example.com", claims.Email)

	var session models.Session
	s.Require().NoError(s.db.First(&session, "hash = ?", claims.Hash).Error)
	s.Equal(user.ID, session.UserID)
}

func (s *AuthServiceSuite) TestLogInWrongPassword() {
	s.register("user@example.com", "hunter2hunter2")

	_, appErr := s.srv.LogIn(context.Background(), &schemas.Login{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusUnauthorized, appErr.Code)
	s.ErrorIs(appErr.Error, ErrInvalidCredentials)
}

func (s *AuthServiceSuite) TestLogInUnknownEmail() {
	_, appErr := s.srv.LogIn(context.Background(), &schemas.Login{
		Email:    "nobody@example.com",
		Password: "whatever-pass",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusUnauthorized, appErr.Code)
}

func (s *AuthServiceSuite) TestSession() {
	user := s.register("user@example.com", "hunter2hunter2")

	out, appErr := s.srv.Session(context.Background(), &types.Actor{ID: user.ID, Email: user.Email})
	s.Require().Nil(appErr)
	s.Equal(user.Email, out.Email)

	_, appErr = s.srv.Session(context.Background(), &types.Actor{ID: "gone"})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusUnauthorized, appErr.Code)

	_, appErr = s.srv.Session(context.Background(), nil)
	s.Require().NotNil(appErr)
	s.Equal(http.StatusUnauthorized, appErr.Code)
}

func (s *AuthServiceSuite) TestLogoutRevokesSession() {
	s.register("user@example.com", "hunter2hunter2")
	out, appErr := s.srv.LogIn(context.Background(), &schemas.Login{
		Email:    "user@example.com",
		Password: "hunter2hunter2",
	})
	s.Require().Nil(appErr)

	claims, err := auth.Decode(s.cnf.Secret, out.Token)
	s.Require().NoError(err)

	_, appErr = s.srv.Logout(context.Background(), claims.Hash)
	s.Require().Nil(appErr)

	_, err = auth.VerifyToken(s.db, s.cacher, s.cnf.Secret, out.Token)
	s.Error(err, "a logged-out token must no longer verify")
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}
