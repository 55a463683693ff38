package federation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"oauth-backend/cache"
	"oauth-backend/claims"
	"oauth-backend/domain"
	"oauth-backend/services"
)

// DefaultHTTPTimeout bounds the outbound token-exchange call so a stalled
// provider cannot pin request handlers indefinitely.
const DefaultHTTPTimeout = 5 * time.Second

// LoginResult is the outcome of a completed callback: the provider's token
// response passed through verbatim plus the reconciled local user.
type LoginResult struct {
	Tokens domain.TokenResponse `json:"tokens"`
	User   *domain.User         `json:"user"`
}

// Service orchestrates one login round trip: it issues the CSRF state for
// the authorization redirect and, on callback, consumes the state, exchanges
// the code, decodes the identity claims and reconciles the local user.
type Service struct {
	conf   oauth2.Config
	states cache.StateStore
	users  *services.UserService
	client *http.Client
}

// NewService creates a Service. httpClient may be nil, in which case a
// client with DefaultHTTPTimeout is used for the token exchange.
func NewService(cfg ProviderConfig, states cache.StateStore, users *services.UserService, httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Service{
		conf:   cfg.OAuth2Config(),
		states: states,
		users:  users,
		client: httpClient,
	}
}

// BeginAuthorization issues a state token and returns the absolute
// authorization URL the client should redirect the user to.
func (s *Service) BeginAuthorization(ctx context.Context) (string, error) {
	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", fmt.Errorf("issuing state: %w", err)
	}
	return s.conf.AuthCodeURL(state), nil
}

// HandleCallback completes the flow for one authorization-code callback.
//
// The state is consumed before the exchange, so it is burned even when the
// provider call subsequently fails; a retried callback with the same state
// always fails with ErrInvalidState and the client must restart at the
// authorization endpoint.
func (s *Service) HandleCallback(ctx context.Context, code, state string) (*LoginResult, error) {
	if strings.TrimSpace(state) == "" {
		return nil, domain.ErrMissingState
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		log.Error().Err(err).Msg("state store lookup failed")
		return nil, domain.ErrInvalidState
	}
	if !ok {
		return nil, domain.ErrInvalidState
	}

	token, err := s.exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, fmt.Errorf("%w: provider response carried no id_token", domain.ErrTokenExchange)
	}

	claimSet, err := claims.Decode(rawIDToken)
	if err != nil {
		return nil, err
	}
	if claimSet.Sub() == "" {
		return nil, fmt.Errorf("%w: identity token carried no subject", domain.ErrReconciliation)
	}

	user, err := s.users.ReconcileOAuthUser(ctx, claimSet.Name(), claimSet.Email(), claimSet.Sub())
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Tokens: tokenResponse(token, rawIDToken),
		User:   user,
	}, nil
}

// exchange performs the single outbound POST to the token endpoint. No
// retries: any transport error, timeout or non-2xx reply fails the flow.
func (s *Service) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			body := bytes.TrimSpace(retrieveErr.Body)
			return nil, fmt.Errorf("%w: provider returned %s: %s",
				domain.ErrTokenExchange, retrieveErr.Response.Status, body)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchange, err)
	}
	return token, nil
}

func tokenResponse(token *oauth2.Token, rawIDToken string) domain.TokenResponse {
	resp := domain.TokenResponse{
		AccessToken:  token.AccessToken,
		IDToken:      rawIDToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresIn:    expiresIn(token),
	}
	if scope, ok := token.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	return resp
}

// expiresIn recovers the provider's expires_in field, falling back to the
// computed expiry when the raw value is absent.
func expiresIn(token *oauth2.Token) int64 {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if token.Expiry.IsZero() {
		return 0
	}
	return int64(time.Until(token.Expiry).Seconds())
}
