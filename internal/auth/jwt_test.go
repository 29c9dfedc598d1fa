package auth

import (
	"collaborative-presentation-server/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	config.AppConfig.JWTSecret = "test-secret"
	m.Run()
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateAccessToken(42, 3)
	assert.NoError(t, err)

	token, err := VerifyJWT(tokenString)
	assert.NoError(t, err)

	userID, tokenVersion, err := GetDataFromToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.Equal(t, uint64(3), tokenVersion)
}

func TestVerifyJWT_RejectsTamperedToken(t *testing.T) {
	tokenString, err := GenerateAccessToken(42, 3)
	assert.NoError(t, err)

	_, err = VerifyJWT(tokenString + "x")
	assert.Error(t, err)
}

func TestVerifyJWT_RejectsWrongSecret(t *testing.T) {
	tokenString, err := GenerateAccessToken(42, 3)
	assert.NoError(t, err)

	config.AppConfig.JWTSecret = "other-secret"
	defer func() { config.AppConfig.JWTSecret = "test-secret" }()

	_, err = VerifyJWT(tokenString)
	assert.Error(t, err)
}
