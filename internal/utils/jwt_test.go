package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateIdentityToken("8d6e6f1c-2c5a-4f83-9c27-6f1f0a3c9b11", "ops@pizza-palace.test", "MANAGER", "pizza-palace", "downtown-01")
	require.NoError(t, err)

	claims, err := ParseIdentityToken(token)
	require.NoError(t, err)
	assert.Equal(t, "8d6e6f1c-2c5a-4f83-9c27-6f1f0a3c9b11", claims.UserID)
	assert.Equal(t, "ops@pizza-palace.test", claims.Email)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, "pizza-palace", claims.BrandID)
	assert.Equal(t, "downtown-01", claims.StoreID)
}

func TestParseIdentityTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateIdentityToken("8d6e6f1c-2c5a-4f83-9c27-6f1f0a3c9b11", "ops@pizza-palace.test", "MANAGER", "", "")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "different-secret")
	_, err = ParseIdentityToken(token)
	assert.Error(t, err)
}
