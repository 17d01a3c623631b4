package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/availability"
	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// HandleAPIError maps an error onto a JSON error response
func HandleAPIError(c *gin.Context, err error) {
	status, errorDetail := describeError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}

func describeError(err error) (int, *dto.ErrorDetail) {
	message := err.Error()
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		message = ce.Message
	}

	var detail *dto.ErrorDetail
	var status int
	switch {
	case errors.Is(err, availability.ErrInvalidSlots):
		status, detail = http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeSlotOutOfWindow, message)
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrPasswordMismatch):
		status, detail = http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)
	case errors.Is(err, apperrors.ErrBadRequest):
		status, detail = http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, message)
	case errors.Is(err, apperrors.ErrUnauthenticated), errors.Is(err, apperrors.ErrSessionNotFound):
		status, detail = http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrTokenExpired):
		status, detail = http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeSessionExpired, "Session expired")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status, detail = http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status, detail = http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		status, detail = http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, message)
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		status, detail = http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Scheduling service is unreachable")
	case errors.Is(err, apperrors.ErrUpstream):
		status, detail = http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, message)
	default:
		status, detail = http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}

	if ce != nil && len(ce.Details) > 0 {
		detail.WithDetails(ce.Details)
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		detail.WithDetails(apiErr.Fields)
	}
	return status, detail
}
