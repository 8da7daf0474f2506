package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
)

type stubUserRepo struct {
	user        *models.User
	lastLoginID string
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	s.lastLoginID = id
	return nil
}

func newTestAuthService(t *testing.T, user *models.User) (*AuthService, *stubUserRepo) {
	t.Helper()
	repo := &stubUserRepo{user: user}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "timetable",
	})
	return svc, repo
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	svc, repo := newTestAuthService(t, user)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "u1", repo.lastLoginID)

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Active:       true,
	}
	svc, _ := newTestAuthService(t, user)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsUnknownUserWithSameError(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "irrelevant1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Active:       false,
	}
	svc, _ := newTestAuthService(t, user)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	_, err := svc.ParseToken("not-a-token")
	require.Error(t, err)
}
