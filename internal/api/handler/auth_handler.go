package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/api/metrics"
	"github.com/shopadmin/catalog-auth/internal/api/middleware"
	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookie      *middleware.SessionCookie
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookie *middleware.SessionCookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log}
}

// Register creates a new account with the user role.
//
//	@Summary	Register a new user
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		registerRequest	true	"Credentials; role is ignored"
//	@Success	201		{object}	registerResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(resultOf(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    user.Public(),
	})
}

// Login verifies credentials and sets the session cookie.
//
//	@Summary	Login
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"Credentials"
//	@Success	200		{object}	loginResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	401		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(resultOf(err)).Inc()
		return err
	}
	if err := h.cookie.Issue(c, res.SessionID); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultError).Inc()
		if logoutErr := h.authService.Logout(c.Request().Context(), res.SessionID); logoutErr != nil {
			h.log.Warn().Err(logoutErr).Msg("failed to drop session after cookie error")
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.SessionsCreatedTotal.Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Message:  "Logged in successfully",
		Redirect: res.User.Role.HomePath(),
	})
}

// Logout destroys the current session, if any, and expires the cookie.
//
//	@Summary	Logout
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	messageResponse
//	@Failure	500	{object}	errorResponse
//	@Router		/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, err := h.cookie.Read(c)
	if err != nil {
		h.cookie.Clear(c)
		return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
	}

	if err := h.authService.Logout(c.Request().Context(), sid); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "error logging out").SetInternal(err)
	}

	h.cookie.Clear(c)
	metrics.SessionsDestroyedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// AdminPanel is the landing probe for admins.
//
//	@Summary	Admin landing
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	messageResponse
//	@Failure	401	{object}	errorResponse
//	@Failure	403	{object}	errorResponse
//	@Router		/admin [get]
func (h *AuthHandler) AdminPanel(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Welcome to the admin panel"})
}

// UserPanel is the landing probe for regular users.
//
//	@Summary	User landing
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	messageResponse
//	@Failure	401	{object}	errorResponse
//	@Failure	403	{object}	errorResponse
//	@Router		/user [get]
func (h *AuthHandler) UserPanel(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Welcome, " + user.Username})
}

// resultOf classifies err for the result metric label.
func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrProductNotFound):
		return metrics.ResultFailure
	default:
		return metrics.ResultError
	}
}
