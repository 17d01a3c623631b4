package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// ParseIDParam extracts a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("invalid " + name)
	}
	return id, nil
}

// SafeRedirectTarget returns target when it is a local absolute path, fallback otherwise
func SafeRedirectTarget(target, fallback string) string {
	if len(target) < 1 || target[0] != '/' {
		return fallback
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return fallback
	}
	return target
}
