package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("kimbs", "김범수", "상병")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "kimbs", claims.UserID)
	assert.Equal(t, "김범수", claims.Name)
	assert.Equal(t, "상병", claims.Rank)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", time.Hour)
	other := NewJWTManager("secret-b", time.Hour)

	token, err := manager.Generate("anji", "안정인", "병장")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate("limdi", "임대인", "일병")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}
