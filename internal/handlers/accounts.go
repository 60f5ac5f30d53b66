package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/hirewire/internal/auth"
	"github.com/hirewire/hirewire/internal/models"
	"github.com/hirewire/hirewire/internal/services"
	"github.com/hirewire/hirewire/internal/verification"
	appErrors "github.com/hirewire/hirewire/pkg/errors"
	"github.com/hirewire/hirewire/pkg/metrics"
	"github.com/hirewire/hirewire/pkg/response"
)

// AccountHandler exposes the verification-code and account lifecycle endpoints.
type AccountHandler struct {
	accounts *services.AccountService
	sessions *auth.SessionService
	issuer   *verification.Issuer
}

// NewAccountHandler wires the handler with its collaborating services.
func NewAccountHandler(accounts *services.AccountService, sessions *auth.SessionService, issuer *verification.Issuer) (*AccountHandler, error) {
	if accounts == nil {
		return nil, errors.New("account handler: account service is required")
	}
	if sessions == nil {
		return nil, errors.New("account handler: session service is required")
	}
	if issuer == nil {
		return nil, errors.New("account handler: issuer is required")
	}

	return &AccountHandler{
		accounts: accounts,
		sessions: sessions,
		issuer:   issuer,
	}, nil
}

type sendCodeRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,min=5"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,min=5"`
	Password    string `json:"password" validate:"required,min=8"`
	Status      string `json:"status" validate:"required"`
	CompanyName string `json:"company_name"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
}

type passwordLoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,min=5"`
	Password string `json:"password" validate:"required"`
}

type codeLoginRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,min=5"`
	Code  string `json:"code" validate:"required"`
}

type passwordResetRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,min=5"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type tokenPayload struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SendCode issues a verification code to the requested destination.
func (h *AccountHandler) SendCode(c *gin.Context) {
	req, ok := bindAndValidate[sendCodeRequest](c)
	if !ok {
		return
	}

	destination, kind := destinationAndKind(req.Email, req.Phone)
	if destination == "" {
		response.Error(c, appErrors.NewBadRequest("Provide an email address or phone number"))
		return
	}

	record, err := h.issuer.Issue(c.Request.Context(), destination, kind)
	if err != nil {
		response.Error(c, mapIssueError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "Verification code sent",
		"destination": record.Destination,
		"expires_at":  record.ExpiresAt,
	})
}

// Register creates an account from a previously issued verification code and
// opens the first session.
func (h *AccountHandler) Register(c *gin.Context) {
	req, ok := bindAndValidate[registerRequest](c)
	if !ok {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		Status:      req.Status,
		CompanyName: req.CompanyName,
		Code:        req.Code,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	h.respondWithSession(c, http.StatusCreated, user)
}

// LoginPassword authenticates with a password and opens a session.
func (h *AccountHandler) LoginPassword(c *gin.Context) {
	req, ok := bindAndValidate[passwordLoginRequest](c)
	if !ok {
		return
	}

	user, err := h.accounts.LoginWithPassword(c.Request.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("password", "failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("password", "success").Inc()
	h.respondWithSession(c, http.StatusOK, user)
}

// LoginCode authenticates with a verification code and opens a session.
// The code is consumed even though no password changes hands.
func (h *AccountHandler) LoginCode(c *gin.Context) {
	req, ok := bindAndValidate[codeLoginRequest](c)
	if !ok {
		return
	}

	user, err := h.accounts.LoginWithCode(c.Request.Context(), req.Email, req.Phone, req.Code)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("code", "failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("code", "success").Inc()
	h.respondWithSession(c, http.StatusOK, user)
}

// PasswordReset verifies the code, replaces the password and opens a session.
func (h *AccountHandler) PasswordReset(c *gin.Context) {
	req, ok := bindAndValidate[passwordResetRequest](c)
	if !ok {
		return
	}

	user, err := h.accounts.ResetPassword(c.Request.Context(), req.Email, req.Phone, req.Code, req.NewPassword)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("reset", "failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("reset", "success").Inc()
	h.respondWithSession(c, http.StatusOK, user)
}

func (h *AccountHandler) respondWithSession(c *gin.Context, status int, user *models.User) {
	pair, session, err := h.sessions.CreateSession(user.ID, auth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "Failed to create session"))
		return
	}

	response.Success(c, status, gin.H{
		"user": user,
		"tokens": tokenPayload{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresAt:    session.ExpiresAt,
		},
	})
}

// destinationAndKind picks the delivery channel, preferring email. The email
// is lowercased so issued codes match the lookup at verification time.
func destinationAndKind(email, phone string) (string, string) {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if email != "" {
		return email, models.CodeKindEmail
	}
	if phone != "" {
		return phone, models.CodeKindPhone
	}
	return "", ""
}

func mapIssueError(err error) error {
	switch {
	case errors.Is(err, verification.ErrRateLimited):
		return appErrors.ErrRateLimited
	case errors.Is(err, verification.ErrDeliveryFailed):
		return appErrors.ErrDeliveryFailed
	default:
		return err
	}
}
