package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

func at(day, hour int) *time.Time {
	t := time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func testWindow() Window {
	return Window{
		Arrival: models.NewDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		Leaving: models.NewDate(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)),
		Loc:     time.UTC,
	}
}

func TestCheck(t *testing.T) {
	w := testWindow()
	tests := []struct {
		name   string
		slot   Slot
		fields []string
	}{
		{"inside", Slot{Start: at(10, 9), End: at(10, 10)}, nil},
		{"arrival midnight", Slot{Start: at(10, 0), End: at(10, 1)}, nil},
		{"last day late", Slot{Start: at(12, 22), End: at(12, 23)}, nil},
		{"before arrival", Slot{Start: at(9, 23), End: at(10, 1)}, []string{FieldStart}},
		{"after leaving", Slot{Start: at(12, 23), End: at(13, 1)}, []string{FieldEnd}},
		{"no end after leaving", Slot{Start: at(13, 9)}, []string{FieldStart}},
		{"no end inside", Slot{Start: at(11, 9)}, nil},
		{"end before start", Slot{Start: at(11, 10), End: at(11, 9)}, []string{FieldEnd}},
		{"missing start", Slot{}, []string{FieldStart}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.Check(3, tt.slot)
			if len(got) != len(tt.fields) {
				t.Fatalf("violations = %+v, want fields %v", got, tt.fields)
			}
			for i, v := range got {
				if v.Field != tt.fields[i] || v.Index != 3 || v.Message == "" {
					t.Errorf("violation %d = %+v", i, v)
				}
			}
		})
	}
}

func TestUnboundedWindow(t *testing.T) {
	w := Window{Loc: time.UTC}
	if v := w.Check(0, Slot{Start: at(1, 0), End: at(30, 0)}); len(v) != 0 {
		t.Fatalf("unbounded window produced %+v", v)
	}
}

func TestValidateBlocksSubmission(t *testing.T) {
	w := testWindow()
	ok := []Slot{{Start: at(10, 9), End: at(10, 10)}, {Start: at(11, 14)}}
	if v, err := w.Validate(ok); err != nil || v != nil {
		t.Fatalf("Validate(valid) = %v, %v", v, err)
	}

	bad := append(ok, Slot{Start: at(8, 9), End: at(8, 10)})
	v, err := w.Validate(bad)
	if !errors.Is(err, ErrInvalidSlots) {
		t.Fatalf("err = %v, want ErrInvalidSlots", err)
	}
	if len(v) != 1 || v[0].Index != 2 {
		t.Fatalf("violations = %+v", v)
	}
}

func TestDefaultSlotIsClampedIntoWindow(t *testing.T) {
	w := testWindow()
	cases := []time.Time{
		time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 20, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, now := range cases {
		s := w.DefaultSlot(now)
		if v := w.Check(0, s); len(v) != 0 {
			t.Errorf("DefaultSlot(%s) = %s..%s violates %+v", now, s.Start, s.End, v)
		}
	}

	s := w.DefaultSlot(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	if !s.Start.Equal(*at(10, 9)) || !s.End.Equal(*at(10, 10)) {
		t.Fatalf("default before arrival = %s..%s, want arrival day 09:00-10:00", s.Start, s.End)
	}
}

func TestWindowForUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	section := models.CandidateSection{
		ArrivalDate: models.NewDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		LeavingDate: models.NewDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
	}
	w := WindowFor(section, loc)
	// 03:00 UTC on the 11th is still the 10th in EST
	late := time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC)
	if v := w.Check(0, Slot{Start: &late}); len(v) != 0 {
		t.Fatalf("slot inside local day flagged: %+v", v)
	}
	early := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	if v := w.Check(0, Slot{Start: &early}); len(v) != 1 {
		t.Fatalf("slot before local arrival not flagged: %+v", v)
	}
}

func TestToModelSkipsEmptyRows(t *testing.T) {
	out := ToModel([]Slot{{Start: at(10, 9), End: at(10, 10)}, {}, {Start: at(11, 9)}})
	if len(out) != 2 || out[1].EndTime != nil {
		t.Fatalf("ToModel = %+v", out)
	}
}
