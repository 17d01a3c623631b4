package dto

import (
	"net/url"
	"testing"
	"time"

	"github.com/yigit/visitportal/internal/app/availability"
	"github.com/yigit/visitportal/internal/app/models"
)

func TestParseDateTimeLocal(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	tests := []struct {
		in      string
		want    time.Time
		wantNil bool
		wantErr bool
	}{
		{in: "", wantNil: true},
		{in: "   ", wantNil: true},
		{in: "2025-03-10T09:30", want: time.Date(2025, 3, 10, 9, 30, 0, 0, loc)},
		{in: "2025-03-10T09:30:15", want: time.Date(2025, 3, 10, 9, 30, 15, 0, loc)},
		{in: "2025-03-10T14:30:00Z", want: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)},
		{in: "tomorrow", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDateTimeLocal(tt.in, loc)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDateTimeLocal(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDateTimeLocal(%q) error = %v", tt.in, err)
			continue
		}
		if tt.wantNil {
			if got != nil {
				t.Errorf("ParseDateTimeLocal(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || !got.Equal(tt.want) {
			t.Errorf("ParseDateTimeLocal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAvailabilityFormSlots(t *testing.T) {
	form := AvailabilityForm{
		StartTimes: []string{"2025-03-10T09:00", ""},
		EndTimes:   []string{""},
	}
	slots, verrs := form.Slots(time.UTC)
	if verrs != nil {
		t.Fatalf("unexpected errors %+v", verrs.Errors)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Start == nil || slots[0].End != nil {
		t.Fatalf("slot 0 = %+v, want start only", slots[0])
	}
	if slots[1].Start != nil {
		t.Fatal("blank start must stay nil so the window check reports it")
	}

	w := availability.Window{Loc: time.UTC}
	if v := w.CheckAll(slots); len(v) != 1 || v[0].Index != 1 {
		t.Fatalf("violations = %+v, want the blank row only", v)
	}
}

func TestTimeSlotFormToRequest(t *testing.T) {
	form := TimeSlotForm{CandidateSection: 12, StartTime: "2025-03-10T10:00", EndTime: "2025-03-10T09:00", MaxAttendees: 1}
	if _, verrs := form.ToRequest(time.UTC); verrs == nil || verrs.Fields()[availability.FieldEnd] == "" {
		t.Fatal("end before start must be rejected")
	}

	form.EndTime = ""
	req, verrs := form.ToRequest(time.UTC)
	if verrs != nil {
		t.Fatalf("unexpected errors %+v", verrs.Errors)
	}
	if req.EndTime != nil || req.CandidateSection != 12 {
		t.Fatalf("request = %+v", req)
	}
}

func TestRegisterFormToRequestUsesEmailAsUsername(t *testing.T) {
	req := RegisterForm{Email: " jane@uni.edu ", FirstName: "Jane", LastName: "Doe", UserType: "faculty"}.ToRequest()
	if req.Username != "jane@uni.edu" || req.Email != "jane@uni.edu" {
		t.Fatalf("request = %+v", req)
	}
}

func TestCandidateSetupFormToProfile(t *testing.T) {
	form := CandidateSetupForm{
		CurrentTitle:        " Postdoc ",
		DateOfBirth:         "1990-05-17",
		Gender:              "female",
		GenderCustom:        "ignored",
		FoodPreferences:     []string{"vegan", " ", ""},
		TalkTitle:           "Swarm robotics",
		VideotapePermission: "yes",
	}
	p, verrs := form.ToProfile()
	if verrs != nil {
		t.Fatalf("ToProfile() errors = %v", verrs.Fields())
	}
	if p.CurrentTitle != "Postdoc" || p.DateOfBirth != (models.Date{Year: 1990, Month: time.May, Day: 17}) {
		t.Fatalf("profile = %+v", p)
	}
	if p.GenderCustom != "" {
		t.Error("custom gender is only kept for other")
	}
	if len(p.FoodPreferences) != 1 || len(p.DietaryRestrictions) != 0 || p.PreferredFaculty == nil {
		t.Fatalf("lists = %v %v %v", p.FoodPreferences, p.DietaryRestrictions, p.PreferredFaculty)
	}

	form.DateOfBirth = "17/05/1990"
	if _, verrs := form.ToProfile(); verrs == nil {
		t.Fatal("malformed date of birth should fail")
	}
}

func TestFormAnswersAndFieldViews(t *testing.T) {
	form := &models.Form{ID: 4, FormFields: []models.FormField{
		{ID: 1, Type: models.FieldText, Label: "Seat"},
		{ID: 2, Type: models.FieldCheckbox, Label: "Meals"},
		{ID: 3, Type: models.FieldDateRange, Label: "Stay"},
		{ID: 5, Type: models.FieldTextArea, Label: "Notes"},
	}}
	values := url.Values{
		"field_1":       {" Aisle "},
		"field_2":       {"Vegan", "Halal"},
		"field_3_start": {"2025-03-10"},
		"field_3_end":   {"2025-03-12"},
		"field_5":       {"   "},
	}
	answers := FormAnswers(form, values)
	if answers["1"] != "Aisle" {
		t.Errorf("text answer = %v", answers["1"])
	}
	if meals, ok := answers["2"].([]string); !ok || len(meals) != 2 {
		t.Errorf("checkbox answer = %v", answers["2"])
	}
	if r, ok := answers["3"].(models.DateRange); !ok || r.StartDate != "2025-03-10" || r.EndDate != "2025-03-12" {
		t.Errorf("date range answer = %v", answers["3"])
	}
	if _, ok := answers["5"]; ok {
		t.Error("blank answers should be left out")
	}

	views := FieldViews(form, answers, map[string]string{"5": "Notes is required"})
	if len(views) != 4 || views[0].Name != "field_1" || views[0].Value != "Aisle" {
		t.Fatalf("views = %+v", views)
	}
	if !views[1].Checked("Halal") || views[1].Checked("Kosher") {
		t.Error("checkbox view should mark picked options")
	}
	if views[2].Start != "2025-03-10" || views[3].Error == "" {
		t.Errorf("range/error views = %+v %+v", views[2], views[3])
	}

	stored := map[string]interface{}{
		"2": []interface{}{"Vegan"},
		"3": map[string]interface{}{"startDate": "2025-04-01", "endDate": "2025-04-02"},
	}
	views = FieldViews(form, stored, nil)
	if !views[1].Checked("Vegan") || views[2].End != "2025-04-02" {
		t.Errorf("stored answers not shown: %+v", views)
	}
}
