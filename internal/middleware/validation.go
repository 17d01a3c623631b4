package middleware

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/pkg/validation"
)

var rulesOnce sync.Once

// registerRules adds the custom tags to gin's validator on first use
func registerRules() {
	rulesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := validation.Register(v); err != nil {
				panic(err)
			}
		}
	})
}

// BindForm binds a form post into obj. Binding and validation failures are
// returned as field errors; nothing is sent upstream for an invalid form.
func BindForm(c *gin.Context, obj interface{}) *dto.ValidationErrors {
	registerRules()
	if err := c.ShouldBind(obj); err != nil {
		return HandleValidationError(err)
	}
	return nil
}

// ValidateJSON binds a JSON body and answers 400 on failure. It reports whether the handler may continue.
func ValidateJSON(c *gin.Context, obj interface{}) bool {
	registerRules()
	if err := c.ShouldBindJSON(obj); err != nil {
		verrs := HandleValidationError(err)
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(verrs.Errors)
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}

// HandleValidationError converts a binding error into field errors
func HandleValidationError(err error) *dto.ValidationErrors {
	verrs := dto.NewValidationErrors()
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verrs.AddError(fe.Field(), formatValidationError(fe))
		}
		return verrs
	}
	return verrs.AddError("", "Invalid request format")
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "required_if":
		return e.Field() + " is required"
	case "datetime":
		return e.Field() + " must be a date in the format " + e.Param()
	case "eqfield":
		return "passwords do not match"
	case validation.TagRoom:
		return e.Field() + " may only contain letters, digits, spaces, dots, dashes and slashes"
	case validation.TagDateTimeLocal:
		return e.Field() + " must be a date and time"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
