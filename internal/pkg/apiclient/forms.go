package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yigit/visitportal/internal/app/models"
)

// SubmitFormRequest is the payload of POST /form-submissions/
type SubmitFormRequest struct {
	Form        int64                  `json:"form"`
	Answers     map[string]interface{} `json:"answers"`
	IsCompleted bool                   `json:"is_completed"`
}

// Forms lists the forms assigned to the caller; staff see every form
func (s *Conn) Forms(ctx context.Context) (*Response[[]models.Form], error) {
	return call[[]models.Form](ctx, s, http.MethodGet, "/forms/", nil, nil)
}

// Form fetches one form with its fields
func (s *Conn) Form(ctx context.Context, id int64) (*Response[models.Form], error) {
	return call[models.Form](ctx, s, http.MethodGet, fmt.Sprintf("/forms/%d/", id), nil, nil)
}

// FormSubmissions lists the caller's submissions; formID 0 lists all of them
func (s *Conn) FormSubmissions(ctx context.Context, formID int64) (*Response[[]models.FormSubmission], error) {
	var query map[string]string
	if formID > 0 {
		query = map[string]string{"form": strconv.FormatInt(formID, 10)}
	}
	return call[[]models.FormSubmission](ctx, s, http.MethodGet, "/form-submissions/", query, nil)
}

// SubmitForm sends the caller's answers to a form
func (s *Conn) SubmitForm(ctx context.Context, req SubmitFormRequest) (*Response[models.FormSubmission], error) {
	return call[models.FormSubmission](ctx, s, http.MethodPost, "/form-submissions/", nil, req)
}
