package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/proneo/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 8*time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := newTestJWTManager()

	token, err := mgr.GenerateToken("Director@Proneo.com", domain.RoleDirector, domain.CategoryFutsal)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "director@proneo.com", claims.Email)
	assert.Equal(t, "director@proneo.com", claims.Subject)
	assert.Equal(t, domain.RoleDirector, claims.Role)
	assert.Equal(t, domain.CategoryFutsal, claims.Sport)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_RejectsUnknownRole(t *testing.T) {
	_, err := newTestJWTManager().GenerateToken("a@p.com", "owner", "")
	assert.Error(t, err)

	_, err = newTestJWTManager().GenerateToken("", domain.RoleScout, "")
	assert.Error(t, err)
}

func TestValidateToken_RejectsForgedRole(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Email:            "a@p.com",
		Role:             "root",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = newTestJWTManager().ValidateToken(token)
	assert.Error(t, err)
}

func TestInvalidSecretRejected(t *testing.T) {
	mgr1 := NewJWTManager("secret-1", time.Hour)
	mgr2 := NewJWTManager("secret-2", time.Hour)

	token, err := mgr1.GenerateToken("a@p.com", domain.RoleScout, "")
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("secret", 1*time.Millisecond)

	token, err := mgr.GenerateToken("a@p.com", domain.RoleScout, "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestApproverAndAdminRoles(t *testing.T) {
	for _, r := range ApproverRoles() {
		assert.True(t, r.CanApproveUsers())
	}
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, AdminRoles())
}
