package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.GenerateToken(7, "editor")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "editor", claims.Role)
}

func TestValidate_Rejects(t *testing.T) {
	good := New("secret", time.Hour)
	token, err := good.GenerateToken(7, "editor")
	require.NoError(t, err)

	_, err = New("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := New("secret", -time.Minute).GenerateToken(7, "editor")
	require.NoError(t, err)
	_, err = good.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	anonymous, err := good.GenerateToken(0, "guest")
	require.NoError(t, err)
	_, err = good.ValidateToken(anonymous)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
