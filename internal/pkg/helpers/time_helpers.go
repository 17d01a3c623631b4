package helpers

import (
	"fmt"
	"time"
)

// ParseDuration parses a named duration setting. An empty value is zero;
// negative values are rejected.
func ParseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}
