package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"oauth-backend/domain"
	"oauth-backend/services"
)

// UserAPI handles local account registration, login and lookups.
type UserAPI struct {
	users *services.UserService
}

// NewUserAPI creates the user API around a user service.
func NewUserAPI(users *services.UserService) *UserAPI {
	return &UserAPI{users: users}
}

// RegisterRoutes registers the user routes.
func (a *UserAPI) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/users")
	g.POST("/register", a.RegisterHandler)
	g.POST("/login", a.LoginHandler)
	g.GET("/:id", a.GetByIDHandler)
	g.GET("/email/:email", a.GetByEmailHandler)
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPayload is the public view of a user; it never carries the password
// hash.
type userPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AuthProvider string `json:"authProvider,omitempty"`
}

func toUserPayload(u *domain.User) userPayload {
	return userPayload{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		AuthProvider: u.AuthProvider,
	}
}

// RegisterHandler creates a local account.
func (a *UserAPI) RegisterHandler(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "name, email, and password are required")
	}

	user, err := a.users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return errorJSON(c, http.StatusBadRequest, "email already registered")
		}
		log.Error().Err(err).Msg("registration failed")
		return errorJSON(c, http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "User registered successfully",
		"user":    toUserPayload(user),
	})
}

// LoginHandler authenticates a local account. Unknown email and wrong
// password produce the same response.
func (a *UserAPI) LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "email and password are required")
	}

	user, err := a.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return errorJSON(c, http.StatusBadRequest, "invalid email or password")
		}
		log.Error().Err(err).Msg("login failed")
		return errorJSON(c, http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    toUserPayload(user),
	})
}

// GetByIDHandler looks a user up by id.
func (a *UserAPI) GetByIDHandler(c echo.Context) error {
	user, err := a.users.GetUserByID(c.Request().Context(), c.Param("id"))
	return a.lookupResponse(c, user, err)
}

// GetByEmailHandler looks a user up by email.
func (a *UserAPI) GetByEmailHandler(c echo.Context) error {
	user, err := a.users.GetUserByEmail(c.Request().Context(), c.Param("email"))
	return a.lookupResponse(c, user, err)
}

func (a *UserAPI) lookupResponse(c echo.Context, user *domain.User, err error) error {
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		log.Error().Err(err).Msg("user lookup failed")
		return errorJSON(c, http.StatusInternalServerError, "user lookup failed")
	}
	return c.JSON(http.StatusOK, toUserPayload(user))
}
