package domain

// TokenResponse is the identity provider's reply to the authorization-code
// exchange. The payload is passed through to the caller untouched; only the
// ID token's claims are inspected by this system.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}
