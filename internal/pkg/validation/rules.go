package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// RoomPattern accepts building and room codes such as "B-214" or "Hall 3.02"
	RoomPattern = `^[A-Za-z0-9][A-Za-z0-9 .\-/]*$`
)

// DateTimeLocalLayout is the value format of <input type="datetime-local">
const DateTimeLocalLayout = "2006-01-02T15:04"

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Room *regexp.Regexp
}{
	Room: regexp.MustCompile(RoomPattern),
}

// Custom validator tags
const (
	TagRoom          = "room"
	TagDateTimeLocal = "datetime_local"
)

// Register adds the portal's custom tags to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagRoom, validateRoom); err != nil {
		return err
	}
	return v.RegisterValidation(TagDateTimeLocal, validateDateTimeLocal)
}

// validateRoom accepts an empty value so optional fields combine with omitempty or required
func validateRoom(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || CompiledPatterns.Room.MatchString(value)
}

// validateDateTimeLocal accepts datetime-local values with optional seconds and RFC3339 timestamps
func validateDateTimeLocal(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	for _, layout := range []string{DateTimeLocalLayout, DateTimeLocalLayout + ":05", time.RFC3339} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
