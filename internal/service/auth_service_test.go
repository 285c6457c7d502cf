package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type mockAssociateRepo struct {
	associates []models.Associate
	findErr    error
	createErr  error
}

func (m *mockAssociateRepo) FindByEmail(ctx context.Context, email string) (*models.Associate, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.associates {
		if strings.EqualFold(m.associates[i].Email, email) {
			return &m.associates[i], nil
		}
	}
	return nil, nil
}

func (m *mockAssociateRepo) Create(ctx context.Context, a models.Associate) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.associates = append(m.associates, a)
	return nil
}

func newTestAuthService(repo *mockAssociateRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "placement-api",
	})
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAssociateRepo{associates: []models.Associate{{
		Name: "Asha", Email: "spoc@example.com", Role: models.RoleSPOC, PasswordHash: hashPassword(t, "password"),
	}}}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "SPOC@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleSPOC, res.User.Role)
	assert.Equal(t, "Asha", res.User.FullName)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "spoc@example.com", claims.Email)
	assert.Equal(t, models.RoleSPOC, claims.Role)
	assert.Equal(t, "placement-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAssociateRepo{associates: []models.Associate{{
		Email: "spoc@example.com", Role: models.RoleSPOC, PasswordHash: hashPassword(t, "password"),
	}}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "spoc@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownAssociate(t *testing.T) {
	svc := newTestAuthService(&mockAssociateRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInvalidPayload(t *testing.T) {
	svc := newTestAuthService(&mockAssociateRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStoreFailure(t *testing.T) {
	svc := newTestAuthService(&mockAssociateRepo{findErr: errors.New("sheet offline")})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownRole(t *testing.T) {
	repo := &mockAssociateRepo{associates: []models.Associate{{
		Email: "intern@example.com", Role: models.UserRole("INTERN"), PasswordHash: hashPassword(t, "password"),
	}}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "intern@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	repo := &mockAssociateRepo{}
	svc := newTestAuthService(repo)
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := svc.generateAccessToken(&models.Associate{Email: "a@example.com", Role: models.RoleAdmin}, issued)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(30 * time.Minute) }
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	svc := newTestAuthService(&mockAssociateRepo{})
	other := NewAuthService(&mockAssociateRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other"})
	token, err := other.generateAccessToken(&models.Associate{Email: "a@example.com", Role: models.RoleAdmin}, time.Now())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	repo := &mockAssociateRepo{}
	svc := newTestAuthService(repo)

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin@example.com", "changeme", ""))
	require.Len(t, repo.associates, 1)
	assert.Equal(t, models.RoleAdmin, repo.associates[0].Role)
	assert.Equal(t, "Administrator", repo.associates[0].Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.associates[0].PasswordHash), []byte("changeme")))

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin@example.com", "changeme", ""))
	assert.Len(t, repo.associates, 1)

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "", "", ""))
	assert.Len(t, repo.associates, 1)
}
