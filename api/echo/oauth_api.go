package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"oauth-backend/domain"
	"oauth-backend/federation"
)

// OAuthAPI handles the authorization-code login endpoints.
type OAuthAPI struct {
	flow *federation.Service
}

// NewOAuthAPI creates the OAuth API around a federation service.
func NewOAuthAPI(flow *federation.Service) *OAuthAPI {
	return &OAuthAPI{flow: flow}
}

// RegisterRoutes registers the OAuth routes.
func (a *OAuthAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/authorize", a.AuthorizeHandler)
	e.POST("/callback", a.CallbackHandler)
	e.GET("/health", a.HealthHandler)
}

// AuthorizeHandler issues a CSRF state token and returns the absolute
// authorization URL the browser should be sent to.
func (a *OAuthAPI) AuthorizeHandler(c echo.Context) error {
	authURL, err := a.flow.BeginAuthorization(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to begin authorization")
		return errorJSON(c, http.StatusInternalServerError, "failed to begin authorization")
	}
	return c.String(http.StatusOK, authURL)
}

// CallbackHandler completes the flow with the code and state the provider
// redirected back with. Parameters are read from the query string, falling
// back to a form body.
func (a *OAuthAPI) CallbackHandler(c echo.Context) error {
	code := callbackParam(c, "code")
	state := callbackParam(c, "state")

	result, err := a.flow.HandleCallback(c.Request().Context(), code, state)
	if err != nil {
		return a.callbackError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// HealthHandler reports liveness.
func (a *OAuthAPI) HealthHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OAuth backend is running")
}

// callbackError maps flow errors to statuses: bad state is the client's
// fault (restart the flow), everything past state consumption is a server-
// or provider-side failure.
func (a *OAuthAPI) callbackError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingState):
		return errorJSON(c, http.StatusBadRequest, "missing state parameter")
	case errors.Is(err, domain.ErrInvalidState):
		return errorJSON(c, http.StatusBadRequest, "invalid or expired state parameter")
	default:
		log.Error().Err(err).Msg("authorization-code callback failed")
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
}

func callbackParam(c echo.Context, name string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return c.FormValue(name)
}
