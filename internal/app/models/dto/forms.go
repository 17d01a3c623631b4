package dto

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yigit/visitportal/internal/app/availability"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/validation"
)

// DateTimeLocalLayout is the value format of <input type="datetime-local">
const DateTimeLocalLayout = validation.DateTimeLocalLayout

// LoginForm carries the OAuth ID token posted by the sign-in button
type LoginForm struct {
	Credential string `form:"credential" binding:"required"`
	Next       string `form:"next"`
}

// RegisterForm creates a user (admins only)
type RegisterForm struct {
	Email           string `form:"email" binding:"required,email"`
	FirstName       string `form:"first_name" binding:"required,max=150"`
	LastName        string `form:"last_name" binding:"required,max=150"`
	UserType        string `form:"user_type" binding:"required,oneof=candidate faculty admin superadmin"`
	RoomNumber      string `form:"room_number" binding:"max=50,room"`
	Password        string `form:"password" binding:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" binding:"required,eqfield=Password"`
}

// ToRequest converts the form into the API payload
func (f RegisterForm) ToRequest() apiclient.RegisterUserRequest {
	return apiclient.RegisterUserRequest{
		Email:      strings.TrimSpace(f.Email),
		Username:   strings.TrimSpace(f.Email),
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		UserType:   models.Role(f.UserType),
		RoomNumber: strings.TrimSpace(f.RoomNumber),
		Password:   f.Password,
	}
}

// RoomSetupForm stores a staff member's office
type RoomSetupForm struct {
	RoomNumber string `form:"room_number" binding:"required,max=50,room"`
}

// CandidateSetupForm is the candidate profile asked for on first sign-in
type CandidateSetupForm struct {
	CurrentTitle            string   `form:"current_title" binding:"required,max=200"`
	CurrentDepartment       string   `form:"current_department" binding:"required,max=200"`
	CurrentInstitution      string   `form:"current_institution" binding:"required,max=200"`
	ResearchInterests       string   `form:"research_interests" binding:"required"`
	CellNumber              string   `form:"cell_number" binding:"required,max=20"`
	TravelAssistance        string   `form:"travel_assistance" binding:"required,oneof=all some none"`
	PassportName            string   `form:"passport_name" binding:"required,max=200"`
	DateOfBirth             string   `form:"date_of_birth" binding:"required,datetime=2006-01-02"`
	CountryOfResidence      string   `form:"country_of_residence" binding:"required,max=200"`
	Gender                  string   `form:"gender" binding:"required,oneof=male female prefer_not_to_say other"`
	GenderCustom            string   `form:"gender_custom" binding:"required_if=Gender other,max=50"`
	PreferredAirport        string   `form:"preferred_airport" binding:"required,max=200"`
	FrequentFlyerInfo       string   `form:"frequent_flyer_info"`
	KnownTravelerNumber     string   `form:"known_traveler_number" binding:"max=100"`
	TalkTitle               string   `form:"talk_title" binding:"required,max=200"`
	Abstract                string   `form:"abstract" binding:"required"`
	Biography               string   `form:"biography" binding:"required"`
	VideotapePermission     string   `form:"videotape_permission" binding:"omitempty,oneof=yes no"`
	AdvertisementPermission string   `form:"advertisement_permission" binding:"omitempty,oneof=yes no"`
	ExtraTours              string   `form:"extra_tours" binding:"max=100"`
	PreferredVisitDates     string   `form:"preferred_visit_dates"`
	FoodPreferences         []string `form:"food_preferences"`
	DietaryRestrictions     []string `form:"dietary_restrictions"`
	PreferredFaculty        []int64  `form:"preferred_faculty"`
}

// ToProfile converts the form into the API payload
func (f CandidateSetupForm) ToProfile() (models.CandidateProfile, *ValidationErrors) {
	dob, err := models.ParseDate(strings.TrimSpace(f.DateOfBirth))
	if err != nil {
		return models.CandidateProfile{}, NewValidationErrors().AddError("DateOfBirth", "date of birth must use the YYYY-MM-DD format")
	}
	p := models.CandidateProfile{
		CurrentTitle:            strings.TrimSpace(f.CurrentTitle),
		CurrentDepartment:       strings.TrimSpace(f.CurrentDepartment),
		CurrentInstitution:      strings.TrimSpace(f.CurrentInstitution),
		ResearchInterests:       strings.TrimSpace(f.ResearchInterests),
		CellNumber:              strings.TrimSpace(f.CellNumber),
		TravelAssistance:        f.TravelAssistance,
		PassportName:            strings.TrimSpace(f.PassportName),
		DateOfBirth:             dob,
		CountryOfResidence:      strings.TrimSpace(f.CountryOfResidence),
		Gender:                  f.Gender,
		PreferredAirport:        strings.TrimSpace(f.PreferredAirport),
		FrequentFlyerInfo:       strings.TrimSpace(f.FrequentFlyerInfo),
		KnownTravelerNumber:     strings.TrimSpace(f.KnownTravelerNumber),
		TalkTitle:               strings.TrimSpace(f.TalkTitle),
		Abstract:                strings.TrimSpace(f.Abstract),
		Biography:               strings.TrimSpace(f.Biography),
		VideotapePermission:     f.VideotapePermission,
		AdvertisementPermission: f.AdvertisementPermission,
		ExtraTours:              f.ExtraTours,
		PreferredVisitDates:     strings.TrimSpace(f.PreferredVisitDates),
		FoodPreferences:         nonEmpty(f.FoodPreferences),
		DietaryRestrictions:     nonEmpty(f.DietaryRestrictions),
		PreferredFaculty:        f.PreferredFaculty,
	}
	if f.Gender == "other" {
		p.GenderCustom = strings.TrimSpace(f.GenderCustom)
	}
	if p.PreferredFaculty == nil {
		p.PreferredFaculty = []int64{}
	}
	return p, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// RoleForm changes the user type of a user
type RoleForm struct {
	UserType string `form:"user_type" binding:"required"`
}

// SendFormLinkForm e-mails a candidate the link to a form
type SendFormLinkForm struct {
	CandidateEmail string `form:"candidate_email" binding:"required,email"`
	FormID         int64  `form:"form_id" binding:"required,gt=0"`
	Message        string `form:"message" binding:"max=2000"`
}

// InviteForm asks faculty for availability for candidate sections
type InviteForm struct {
	FacultyIDs []int64 `form:"faculty_ids" binding:"required,min=1,dive,gt=0"`
	SectionIDs []int64 `form:"candidate_section_ids" binding:"required,min=1,dive,gt=0"`
	SendEmail  bool    `form:"send_email"`
}

// FormAnswers reads the answers to form from a post. A field is posted as
// field_<id>; checkboxes repeat it and date ranges use field_<id>_start and
// field_<id>_end.
func FormAnswers(form *models.Form, values url.Values) map[string]interface{} {
	answers := make(map[string]interface{}, len(form.FormFields))
	for i := range form.FormFields {
		field := &form.FormFields[i]
		name := "field_" + field.Key()
		switch field.Type {
		case models.FieldCheckbox:
			if picked := nonEmpty(values[name]); len(picked) > 0 {
				answers[field.Key()] = picked
			}
		case models.FieldDateRange:
			r := models.DateRange{
				StartDate: strings.TrimSpace(values.Get(name + "_start")),
				EndDate:   strings.TrimSpace(values.Get(name + "_end")),
			}
			if r.StartDate != "" || r.EndDate != "" {
				answers[field.Key()] = r
			}
		default:
			if v := strings.TrimSpace(values.Get(name)); v != "" {
				answers[field.Key()] = v
			}
		}
	}
	return answers
}

// FieldView is a form field with its current answer, ready for a template
type FieldView struct {
	models.FormField
	Name   string
	Value  string
	Values []string
	Start  string
	End    string
	Error  string
}

// Checked reports whether option is among the picked values
func (v FieldView) Checked(option string) bool {
	if v.Value == option {
		return true
	}
	for _, x := range v.Values {
		if x == option {
			return true
		}
	}
	return false
}

// FieldViews pairs every field of form with its answer and error. Answers
// come either from FormAnswers or decoded from a stored submission.
func FieldViews(form *models.Form, answers map[string]interface{}, errs map[string]string) []FieldView {
	views := make([]FieldView, 0, len(form.FormFields))
	for _, field := range form.FormFields {
		v := FieldView{FormField: field, Name: "field_" + field.Key(), Error: errs[field.Key()]}
		switch a := answers[field.Key()].(type) {
		case nil:
		case string:
			v.Value = a
		case []string:
			v.Values = a
		case []interface{}:
			for _, x := range a {
				v.Values = append(v.Values, fmt.Sprint(x))
			}
		case models.DateRange:
			v.Start, v.End = a.StartDate, a.EndDate
		case map[string]interface{}:
			v.Start, _ = a["startDate"].(string)
			v.End, _ = a["endDate"].(string)
		default:
			v.Value = fmt.Sprint(a)
		}
		views = append(views, v)
	}
	return views
}

// TimeSlotForm creates a meeting slot in a candidate section
type TimeSlotForm struct {
	CandidateSection int64  `form:"candidate_section" binding:"required,gt=0"`
	StartTime        string `form:"start_time" binding:"required,datetime_local"`
	EndTime          string `form:"end_time" binding:"datetime_local"`
	MaxAttendees     int    `form:"max_attendees" binding:"required,min=1"`
	Location         string `form:"location" binding:"max=255"`
	Description      string `form:"description"`
	IsVisible        bool   `form:"is_visible"`
}

// ToRequest parses the datetime fields in loc and builds the API payload
func (f TimeSlotForm) ToRequest(loc *time.Location) (apiclient.CreateTimeSlotRequest, *ValidationErrors) {
	verrs := NewValidationErrors()
	req := apiclient.CreateTimeSlotRequest{
		CandidateSection: f.CandidateSection,
		MaxAttendees:     f.MaxAttendees,
		Location:         strings.TrimSpace(f.Location),
		Description:      strings.TrimSpace(f.Description),
		IsVisible:        f.IsVisible,
	}
	start, err := ParseDateTimeLocal(f.StartTime, loc)
	if err != nil || start == nil {
		verrs.AddError(availability.FieldStart, "start time is required")
	} else {
		req.StartTime = *start
	}
	end, err := ParseDateTimeLocal(f.EndTime, loc)
	if err != nil {
		verrs.AddError(availability.FieldEnd, "end time is not a valid date and time")
	}
	req.EndTime = end
	if start != nil && end != nil && end.Before(*start) {
		verrs.AddError(availability.FieldEnd, "end time must not be before start time")
	}
	if verrs.HasErrors() {
		return req, verrs
	}
	return req, nil
}

// AvailabilityForm posts the staged slots as parallel start/end lists
type AvailabilityForm struct {
	Notes      string   `form:"notes"`
	StartTimes []string `form:"start_time"`
	EndTimes   []string `form:"end_time"`
}

// Slots parses the staged rows in loc
func (f AvailabilityForm) Slots(loc *time.Location) ([]availability.Slot, *ValidationErrors) {
	inputs := make([]SlotInput, len(f.StartTimes))
	for i, s := range f.StartTimes {
		inputs[i].StartTime = s
		if i < len(f.EndTimes) {
			inputs[i].EndTime = f.EndTimes[i]
		}
	}
	return ParseSlots(inputs, loc)
}

// SlotInput is one staged row as typed by the user
type SlotInput struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// AvailabilityCheckRequest is sent on every field edit to get inline warnings
type AvailabilityCheckRequest struct {
	Slots []SlotInput `json:"slots"`
}

// AvailabilityCheckResponse lists the warnings of a check
type AvailabilityCheckResponse struct {
	Valid      bool                     `json:"valid"`
	Violations []availability.Violation `json:"violations"`
}

// ParseSlots turns typed rows into staged slots. A blank start is kept as a
// nil start so the window check reports it; only unparsable values fail here.
func ParseSlots(inputs []SlotInput, loc *time.Location) ([]availability.Slot, *ValidationErrors) {
	verrs := NewValidationErrors()
	slots := make([]availability.Slot, 0, len(inputs))
	for _, in := range inputs {
		start, err := ParseDateTimeLocal(in.StartTime, loc)
		if err != nil {
			verrs.AddError(availability.FieldStart, "start time is not a valid date and time")
		}
		end, err := ParseDateTimeLocal(in.EndTime, loc)
		if err != nil {
			verrs.AddError(availability.FieldEnd, "end time is not a valid date and time")
		}
		slots = append(slots, availability.Slot{Start: start, End: end})
	}
	if verrs.HasErrors() {
		return slots, verrs
	}
	return slots, nil
}

// ParseDateTimeLocal parses a datetime-local value (seconds optional) or an
// RFC3339 timestamp. A blank value yields nil.
func ParseDateTimeLocal(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{DateTimeLocalLayout, DateTimeLocalLayout + ":05"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDateTimeLocal renders t for a datetime-local input in loc
func FormatDateTimeLocal(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateTimeLocalLayout)
}
