// Package claims decodes identity-token payloads into a flat claim mapping.
//
// The decoder does NOT verify the token's signature. The claims it returns
// are only as trustworthy as the channel the token arrived on (here: the
// back-channel code exchange with the configured provider). Do not use them
// for authorization decisions in a production deployment without adding
// issuer, audience and signature validation.
package claims

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"oauth-backend/domain"
)

// ClaimSet maps claim names to their string values. Non-string scalar claims
// are carried as opaque strings; nested objects and arrays are dropped.
type ClaimSet map[string]string

// Decode parses the payload segment of a compact-serialized identity token.
// The token must have exactly three dot-separated segments with a base64url
// payload; anything else fails with domain.ErrMalformedToken.
func Decode(idToken string) (ClaimSet, error) {
	parser := jwt.NewParser()

	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(idToken, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}

	cs := make(ClaimSet, len(mapClaims))
	for name, value := range mapClaims {
		switch v := value.(type) {
		case string:
			cs[name] = v
		case float64:
			cs[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			cs[name] = strconv.FormatBool(v)
		}
	}
	return cs, nil
}

// Sub returns the subject claim, the stable external user id. Empty when the
// token carried none; callers must treat that as a reconciliation failure.
func (c ClaimSet) Sub() string {
	return c["sub"]
}

// Email returns the email claim, or empty when absent.
func (c ClaimSet) Email() string {
	return c["email"]
}

// Name returns a display name, falling back from name to preferred_username
// to the subject id.
func (c ClaimSet) Name() string {
	if name := c["name"]; name != "" {
		return name
	}
	if username := c["preferred_username"]; username != "" {
		return username
	}
	return c["sub"]
}
