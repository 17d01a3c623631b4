package models

import (
	"strconv"
	"strings"
	"time"
)

// FieldType is the input kind of a form field
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldTextArea  FieldType = "textarea"
	FieldSelect    FieldType = "select"
	FieldRadio     FieldType = "radio"
	FieldCheckbox  FieldType = "checkbox"
	FieldDate      FieldType = "date"
	FieldDateRange FieldType = "date_range"
)

// HasOptions reports whether answers are picked from the field's options
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

// Form is a questionnaire assigned to users
type Form struct {
	ID          int64       `json:"id" example:"4"`
	Title       string      `json:"title" example:"Travel preferences"`
	Description string      `json:"description,omitempty"`
	FormFields  []FormField `json:"form_fields"`
	IsActive    bool        `json:"is_active"`
}

// FormField is one question of a form
type FormField struct {
	ID       int64             `json:"id"`
	Type     FieldType         `json:"type"`
	Label    string            `json:"label"`
	Required bool              `json:"required"`
	HelpText string            `json:"help_text,omitempty"`
	Order    int               `json:"order"`
	Options  []FormFieldOption `json:"options,omitempty"`
}

// Key is the answer key of the field in a submission
func (f *FormField) Key() string {
	return strconv.FormatInt(f.ID, 10)
}

// FormFieldOption is one choice of a select, radio or checkbox field
type FormFieldOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// DateRange is the answer of a date_range field
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FormSubmission is a user's answers to a form, keyed by field id
type FormSubmission struct {
	ID          int64                  `json:"id"`
	Form        int64                  `json:"form"`
	Answers     map[string]interface{} `json:"answers"`
	IsCompleted bool                   `json:"is_completed"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
}

// ValidateAnswers checks required fields and date ranges the way the API
// does, returning messages keyed by field id
func (f *Form) ValidateAnswers(answers map[string]interface{}) map[string]string {
	problems := make(map[string]string)
	for i := range f.FormFields {
		field := &f.FormFields[i]
		value, ok := answers[field.Key()]
		if field.Required && (!ok || blank(value)) {
			problems[field.Key()] = field.Label + " is required"
			continue
		}
		if field.Type != FieldDateRange || !ok || blank(value) {
			continue
		}
		r, isRange := value.(DateRange)
		if !isRange {
			problems[field.Key()] = field.Label + " must be a date range"
			continue
		}
		start, err1 := ParseDate(r.StartDate)
		end, err2 := ParseDate(r.EndDate)
		switch {
		case err1 != nil || err2 != nil:
			problems[field.Key()] = field.Label + " must have a start and an end date"
		case end.Floor(time.UTC).Before(start.Floor(time.UTC)):
			problems[field.Key()] = field.Label + " ends before it starts"
		}
	}
	return problems
}

func blank(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case DateRange:
		return x.StartDate == "" && x.EndDate == ""
	}
	return false
}
