package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/hirewire/internal/auth"
	appErrors "github.com/hirewire/hirewire/pkg/errors"
	"github.com/hirewire/hirewire/pkg/response"
)

// SessionHandler exposes refresh and logout endpoints.
type SessionHandler struct {
	sessions *auth.SessionService
}

// NewSessionHandler wires the handler with the session service.
func NewSessionHandler(sessions *auth.SessionService) (*SessionHandler, error) {
	if sessions == nil {
		return nil, errors.New("session handler: session service is required")
	}
	return &SessionHandler{sessions: sessions}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates the refresh token and issues a new access token.
func (h *SessionHandler) Refresh(c *gin.Context) {
	req, ok := bindAndValidate[refreshRequest](c)
	if !ok {
		return
	}

	pair, session, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, mapSessionError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenPayload{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresAt:    session.ExpiresAt,
		},
	})
}

// Logout revokes the presented refresh token, ending its session.
func (h *SessionHandler) Logout(c *gin.Context) {
	req, ok := bindAndValidate[refreshRequest](c)
	if !ok {
		return
	}

	if err := h.sessions.RevokeByRefreshToken(req.RefreshToken); err != nil {
		response.Error(c, mapSessionError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// mapSessionError collapses all session failures into a 401. Distinguishing
// revoked from expired tokens would let callers probe session state.
func mapSessionError(err error) error {
	switch {
	case errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrSessionRevoked),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrSessionInvalidToken):
		return appErrors.ErrUnauthorized
	default:
		return err
	}
}
