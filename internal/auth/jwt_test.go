package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesaas/notehub/internal/auth"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	raw, err := m.GenerateToken("user-1", "tenant-1", "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := m.VerifyToken(raw)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	raw, err := m.GenerateToken("user-1", "tenant-1", "MEMBER")
	require.NoError(t, err)

	_, err = m.VerifyToken(raw)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	raw, err := issuer.GenerateToken("user-1", "tenant-1", "MEMBER")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(raw)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}
