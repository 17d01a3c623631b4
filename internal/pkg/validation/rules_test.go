package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Room  string `validate:"room"`
	Start string `validate:"datetime_local"`
}

func TestRegisteredRules(t *testing.T) {
	v := validator.New()
	if err := Register(v); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name  string
		input sample
		ok    bool
	}{
		{"empty values", sample{}, true},
		{"room code", sample{Room: "B-214"}, true},
		{"room with spaces", sample{Room: "Hall 3.02"}, true},
		{"room starting with punctuation", sample{Room: "-12"}, false},
		{"room with markup", sample{Room: "<b>12</b>"}, false},
		{"datetime-local", sample{Start: "2025-03-05T09:30"}, true},
		{"datetime-local with seconds", sample{Start: "2025-03-05T09:30:15"}, true},
		{"date only", sample{Start: "2025-03-05"}, false},
		{"rfc3339", sample{Start: "2025-03-05T09:30:00Z"}, true},
		{"free text", sample{Start: "tomorrow at nine"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("Struct(%+v) error = %v, want ok=%v", tt.input, err, tt.ok)
			}
		})
	}
}
