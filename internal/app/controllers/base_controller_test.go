package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

func TestFailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"upstream validation", &apiclient.APIError{Status: http.StatusBadRequest, Kind: apiclient.KindValidation}, http.StatusBadRequest},
		{"upstream conflict wrapped", apperrors.NewMutationError(&apiclient.APIError{Status: http.StatusConflict, Kind: apiclient.KindConflict}, "failed"), http.StatusConflict},
		{"upstream server error", &apiclient.APIError{Status: http.StatusInternalServerError, Kind: apiclient.KindServer}, http.StatusBadGateway},
		{"network", &apiclient.APIError{Kind: apiclient.KindNetwork}, http.StatusBadGateway},
		{"undecodable body", &apiclient.APIError{Status: http.StatusOK, Kind: apiclient.KindDecode}, http.StatusBadGateway},
		{"local permission check", apperrors.NewMutationError(auth.ErrPermissionDenied, "failed"), http.StatusForbidden},
		{"not an admin", auth.ErrNotAdmin, http.StatusForbidden},
		{"local validation", apperrors.NewValidationError("bad", nil), http.StatusUnprocessableEntity},
		{"anything else", errors.New("boom"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureStatus(tt.err); got != tt.want {
				t.Errorf("FailureStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReasonPrefersLocalCause(t *testing.T) {
	err := apperrors.NewMutationError(auth.ErrLastSuperAdmin, "failed to change role")
	if got := Reason(err); got != auth.ErrLastSuperAdmin.Error() {
		t.Fatalf("Reason() = %q", got)
	}
}
