package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/auth"
)

func TestIssueAndValidateToken(t *testing.T) {
	mgr, err := auth.NewJWTManager(time.Hour)
	require.NoError(t, err)

	token, exp, err := mgr.IssueToken("dashboard-service")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dashboard-service", claims.CallerID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	mgr, err := auth.NewJWTManager(time.Hour)
	require.NoError(t, err)
	_, err = mgr.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignSigner(t *testing.T) {
	mgr1, err := auth.NewJWTManager(time.Hour)
	require.NoError(t, err)
	mgr2, err := auth.NewJWTManager(time.Hour)
	require.NoError(t, err)

	token, _, err := mgr1.IssueToken("caller")
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}
