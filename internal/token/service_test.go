package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantAndValidate(t *testing.T) {
	svc := New("test-key", "hochzeit")

	tok, err := svc.Grant(time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, ScopeSite, claims.Scope)
	assert.Equal(t, "hochzeit", claims.Issuer)
	assert.True(t, svc.Granted(tok))
}

func TestValidate_Rejects(t *testing.T) {
	svc := New("test-key", "hochzeit")

	expired := New("test-key", "hochzeit")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Grant(time.Hour)
	require.NoError(t, err)

	otherKey, err := New("other-key", "hochzeit").Grant(time.Hour)
	require.NoError(t, err)

	otherIssuer, err := New("test-key", "someone-else").Grant(time.Hour)
	require.NoError(t, err)

	wrongScope, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope:            "admin",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "hochzeit"},
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      old,
		"other key":    otherKey,
		"other issuer": otherIssuer,
		"wrong scope":  wrongScope,
		"garbage":      "granted",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(tok)
			assert.Error(t, err)
			assert.False(t, svc.Granted(tok))
		})
	}
	assert.False(t, svc.Granted(""))
}

func TestGenerateSigningKey(t *testing.T) {
	a, err := GenerateSigningKey()
	require.NoError(t, err)
	b, err := GenerateSigningKey()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
