package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "storefront", time.Hour)

	tok, err := tm.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "storefront", -time.Second)

	tok, err := tm.Issue("user-123")
	require.NoError(t, err)

	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ZeroTTL(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "storefront", 0)

	tok, err := tm.Issue("user-123")
	require.NoError(t, err)

	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenManager("right-secret", "storefront", time.Hour)
	verifier := NewTokenManager("wrong-secret", "storefront", time.Hour)

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_TamperedSignature(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "storefront", time.Hour)

	tok, err := tm.Issue("user-123")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tm.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "storefront", time.Hour)

	for _, tok := range []string{"", "garbage", "not.a.jwt"} {
		_, err := tm.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}
