package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func TestGenerateAndParse(t *testing.T) {
	id := uuid.New()

	token, err := GenerateToken(testKey, id, "curl/8", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testKey, token)
	require.NoError(t, err)

	got, err := claims.MemberID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "curl/8", claims.UserAgent)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	token, err := GenerateToken(testKey, uuid.New(), "", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-key"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(testKey, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString(testKey)
	require.NoError(t, err)
	_, err = ParseToken(testKey, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err = hs512.SignedString(testKey)
	require.NoError(t, err)
	_, err = ParseToken(testKey, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemberIDBadSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}}

	_, err := c.MemberID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
