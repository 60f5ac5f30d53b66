package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/hirewire/internal/middleware"
	"github.com/hirewire/hirewire/internal/services"
	appErrors "github.com/hirewire/hirewire/pkg/errors"
	"github.com/hirewire/hirewire/pkg/response"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	accounts *services.AccountService
}

// NewProfileHandler wires the handler with the account service.
func NewProfileHandler(accounts *services.AccountService) (*ProfileHandler, error) {
	if accounts == nil {
		return nil, errors.New("profile handler: account service is required")
	}
	return &ProfileHandler{accounts: accounts}, nil
}

type updateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,min=5"`
	CompanyName *string `json:"company_name"`
	Gender      *string `json:"gender"`
	BirthDay    *string `json:"birth_day" validate:"omitempty,datetime=2006-01-02"`
	Avatar      *string `json:"avatar"`
}

// Get returns the current user's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.accounts.GetAccount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Patch applies a partial update to the current user's profile.
func (h *ProfileHandler) Patch(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, ok := bindAndValidate[updateProfileRequest](c)
	if !ok {
		return
	}

	input := services.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Gender:      req.Gender,
		Avatar:      req.Avatar,
	}

	if req.BirthDay != nil {
		birthDay, err := time.Parse("2006-01-02", *req.BirthDay)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("Birth date must use the YYYY-MM-DD format"))
			return
		}
		input.BirthDay = &birthDay
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
