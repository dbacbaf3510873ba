package domain

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"
)

func TestDayOfWeek(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if got := DayOfWeek(monday); got != "Monday" {
		t.Fatalf("DayOfWeek = %q, want Monday", got)
	}
	if got := DayOfWeek(monday.AddDate(0, 0, 6)); got != "Sunday" {
		t.Fatalf("DayOfWeek = %q, want Sunday", got)
	}
}

func TestFormatHumanDate(t *testing.T) {
	if got := FormatHumanDate("2026-03-02"); got != "02/03/2026" {
		t.Fatalf("FormatHumanDate = %q", got)
	}
	if got := FormatHumanDate("not a date"); got != DateUnavailable {
		t.Fatalf("FormatHumanDate on junk = %q, want sentinel", got)
	}
	if got := FormatHumanDate(""); got != DateUnavailable {
		t.Fatalf("FormatHumanDate on empty = %q, want sentinel", got)
	}
}

func TestFormatHumanDateEmptyIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	// Issues without a due date are routine and must not spam the log.
	FormatHumanDate("")
	if buf.Len() != 0 {
		t.Fatalf("empty date should not log, got %q", buf.String())
	}

	FormatHumanDate("bogus")
	if buf.Len() == 0 {
		t.Fatalf("malformed date should still log")
	}
}

func TestFormatSprintDate(t *testing.T) {
	if got := FormatSprintDate("2026-03-02T10:00:00.000-0300"); got != "02/03/2026" {
		t.Fatalf("FormatSprintDate = %q", got)
	}
	if got := FormatSprintDate("2026-03-02T10:00:00Z"); got != "02/03/2026" {
		t.Fatalf("FormatSprintDate rfc3339 fallback = %q", got)
	}
	if got := FormatSprintDate("junk"); got != DateUnavailable {
		t.Fatalf("FormatSprintDate on junk = %q, want sentinel", got)
	}
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		due  string
		want bool
	}{
		{"2026-03-09", true},
		{"2026-03-10", false},
		{"2026-03-11", false},
		{"", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		if got := IsOverdue(tt.due, today); got != tt.want {
			t.Fatalf("IsOverdue(%q) = %v, want %v", tt.due, got, tt.want)
		}
	}
}

func TestActiveSprint(t *testing.T) {
	sprints := []Sprint{
		{ID: 1, State: "closed"},
		{ID: 2, State: "active"},
		{ID: 3, State: "future"},
	}
	s, ok := ActiveSprint(sprints)
	if !ok || s.ID != 2 {
		t.Fatalf("ActiveSprint = %+v ok=%v", s, ok)
	}
	if _, ok := ActiveSprint([]Sprint{{State: "closed"}}); ok {
		t.Fatalf("ActiveSprint should report no active sprint")
	}
}
