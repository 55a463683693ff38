package claims

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oauth-backend/domain"
)

// makeIDToken builds a compact-serialized token with the given payload and a
// garbage signature. The decoder never verifies signatures, so any bytes do.
func makeIDToken(t *testing.T, payload map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func TestDecode(t *testing.T) {
	token := makeIDToken(t, map[string]any{
		"sub":   "abc123",
		"email": "a@b.com",
		"name":  "A B",
	})

	cs, err := Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cs.Sub())
	assert.Equal(t, "a@b.com", cs.Email())
	assert.Equal(t, "A B", cs.Name())
}

func TestDecode_NonStringClaims(t *testing.T) {
	token := makeIDToken(t, map[string]any{
		"sub":            "abc123",
		"exp":            1735689600,
		"email_verified": true,
		"realm_access":   map[string]any{"roles": []string{"user"}},
	})

	cs, err := Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cs.Sub())
	assert.Equal(t, "1735689600", cs["exp"])
	assert.Equal(t, "true", cs["email_verified"])
	assert.NotContains(t, cs, "realm_access", "nested values are dropped")
}

func TestDecode_WrongSegmentCount(t *testing.T) {
	for _, token := range []string{
		"",
		"onlyonesegment",
		"two.segments",
		"a.b.c.d",
	} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, domain.ErrMalformedToken, "token %q", token)
	}
}

func TestDecode_BadBase64Payload(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256"}`))
	_, err := Decode(header + ".!!!not-base64!!!.sig")
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestDecode_PayloadNotJSON(t *testing.T) {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"RS256"}`))
	payload := enc.EncodeToString([]byte("not json"))
	_, err := Decode(header + "." + payload + ".sig")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedToken))
}

func TestName_FallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		claims ClaimSet
		want   string
	}{
		{"name wins", ClaimSet{"name": "A B", "preferred_username": "ab", "sub": "s"}, "A B"},
		{"preferred_username next", ClaimSet{"preferred_username": "ab", "sub": "s"}, "ab"},
		{"sub last", ClaimSet{"sub": "s"}, "s"},
		{"all absent", ClaimSet{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.Name())
		})
	}
}

func TestExtractors_MissingClaims(t *testing.T) {
	cs := ClaimSet{}
	assert.Empty(t, cs.Sub())
	assert.Empty(t, cs.Email())
}
