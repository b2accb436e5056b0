package awhere

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// ErrInvalidDate is returned when a date string matches no supported layout.
var ErrInvalidDate = errors.New("invalid date")

var parseLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	dateTimeLayout,
	dateLayout,
}

// FormatDate formats t as YYYY-MM-DD, or YYYY-MM-DD HH:MM when includeTime is
// set. The zero time formats the current date.
func FormatDate(t time.Time, includeTime bool) string {
	if t.IsZero() {
		t = time.Now()
	}

	if includeTime {
		return t.Format(dateTimeLayout)
	}

	return t.Format(dateLayout)
}

// ParseDate parses the date formats the API and its callers commonly use.
// Strings without a zone are interpreted in local time.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range parseLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// NormalizeDate parses value and formats it as YYYY-MM-DD.
func NormalizeDate(value string) (string, error) {
	t, err := ParseDate(value)
	if err != nil {
		return "", err
	}

	return FormatDate(t, false), nil
}
