package domain

import (
	"log"
	"time"
)

// DateUnavailable is returned when a date string from the tracker cannot be
// parsed. Reports render it verbatim instead of failing.
const DateUnavailable = "date unavailable"

const (
	issueDateLayout  = "2006-01-02"
	sprintDateLayout = "2006-01-02T15:04:05.000-0700"
	humanDateLayout  = "02/01/2006"
)

// DayOfWeek returns the English weekday name ("Monday".."Sunday") of the
// record's own timestamp.
func DayOfWeek(t time.Time) string {
	return t.Weekday().String()
}

// DaysOfWeek is the fixed Monday-first order used for rendered output.
var DaysOfWeek = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// FormatHumanDate converts a yyyy-mm-dd issue date into dd/mm/yyyy, or the
// DateUnavailable sentinel when the input does not parse. An empty input is
// the normal shape for issues without a due date and maps to the sentinel
// quietly; only genuinely malformed values are logged.
func FormatHumanDate(s string) string {
	if s == "" {
		return DateUnavailable
	}
	t, err := time.Parse(issueDateLayout, s)
	if err != nil {
		log.Printf("date parse failed value=%q: %v", s, err)
		return DateUnavailable
	}
	return t.Format(humanDateLayout)
}

// FormatSprintDate converts an ISO sprint timestamp into dd/mm/yyyy, or the
// DateUnavailable sentinel when the input does not parse.
func FormatSprintDate(s string) string {
	t, err := ParseSprintDate(s)
	if err != nil {
		log.Printf("sprint date parse failed value=%q: %v", s, err)
		return DateUnavailable
	}
	return t.Format(humanDateLayout)
}

// ParseSprintDate parses the tracker's sprint timestamp format, falling back
// to RFC 3339 for servers that omit milliseconds.
func ParseSprintDate(s string) (time.Time, error) {
	t, err := time.Parse(sprintDateLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// IsOverdue reports whether a yyyy-mm-dd due date is strictly before today.
// Unparseable or empty due dates are never overdue.
func IsOverdue(dueDate string, today time.Time) bool {
	due, err := time.Parse(issueDateLayout, dueDate)
	if err != nil {
		return false
	}
	y, m, d := today.Date()
	todayDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return todayDay.After(due)
}
