package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	appErrors "github.com/hirewire/hirewire/pkg/errors"
	"github.com/hirewire/hirewire/pkg/response"
	"github.com/hirewire/hirewire/pkg/validator"
)

// bindAndValidate decodes the JSON request body and runs struct validation.
// On failure it writes the error response and returns false.
func bindAndValidate[T any](c *gin.Context) (*T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest("Request body is not valid JSON"))
		return nil, false
	}

	if err := validator.ValidateStruct(&req); err != nil {
		response.Error(c, formatValidationError(err))
		return nil, false
	}

	return &req, true
}

func formatValidationError(err error) *appErrors.AppError {
	var failures validator.ValidationErrors
	if errors.As(err, &failures) && len(failures) > 0 {
		first := failures[0]
		switch first.Tag {
		case "required":
			return appErrors.NewBadRequest(fmt.Sprintf("The %s field is required", first.Field))
		case "email":
			return appErrors.NewBadRequest(fmt.Sprintf("The %s field must be a valid email address", first.Field))
		case "min":
			return appErrors.NewBadRequest(fmt.Sprintf("The %s field must be at least %s characters", first.Field, first.Param))
		case "len", "numeric":
			return appErrors.NewBadRequest(fmt.Sprintf("The %s field is malformed", first.Field))
		default:
			return appErrors.NewBadRequest(fmt.Sprintf("The %s field failed %s validation", first.Field, first.Tag))
		}
	}

	return appErrors.NewBadRequest(err.Error())
}
