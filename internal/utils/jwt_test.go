package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken("secret", Claims{UserID: id, Phone: "9876543210", Role: "chef"}, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "9876543210", claims.Phone)
	assert.Equal(t, "chef", claims.Role)
}

func TestParseTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: uuid.New()}, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", Claims{UserID: uuid.New()}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)
}

func TestOTPHash(t *testing.T) {
	hashed, err := HashOTP("123456")
	require.NoError(t, err)
	assert.True(t, CheckOTP(hashed, "123456"))
	assert.False(t, CheckOTP(hashed, "654321"))
	assert.False(t, CheckOTP("", "123456"))
}

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "919876543210", CleanPhone("+91 98765-43210"))
	assert.True(t, ValidPhone("(987) 654-3210"))
	assert.False(t, ValidPhone("12345"))
}
