package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"sprintbot/internal/domain"
)

func TestSplitMessageLossless(t *testing.T) {
	text := strings.Repeat("abcdefghij", 777) // 7770 chars
	chunks := SplitMessage(text, 2000)

	if got := strings.Join(chunks, ""); got != text {
		t.Fatalf("concatenated chunks do not reconstruct the input")
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if len(chunk) != 2000 {
			t.Fatalf("chunk %d length = %d, want exactly 2000", i, len(chunk))
		}
	}
	if last := chunks[len(chunks)-1]; len(last) == 0 || len(last) > 2000 {
		t.Fatalf("last chunk length = %d", len(last))
	}
}

func TestSplitMessageShortAndEmpty(t *testing.T) {
	if got := SplitMessage("short", 2000); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short message should be a single chunk, got %v", got)
	}
	if got := SplitMessage("", 2000); got != nil {
		t.Fatalf("empty message should produce no chunks, got %v", got)
	}
}

func TestSummarizeTextKeepsFiveSentences(t *testing.T) {
	text := "One. Two! Three? Four. Five. Six. Seven."
	got := SummarizeText(text, 500)
	want := "One. Two! Three? Four. Five."
	if got != want {
		t.Fatalf("SummarizeText = %q, want %q", got, want)
	}
}

func TestSummarizeTextIdempotentWhenShort(t *testing.T) {
	text := "Already short. Two sentences only."
	if got := SummarizeText(text, 500); got != text {
		t.Fatalf("short text should come back unchanged, got %q", got)
	}
	if got := SummarizeText(SummarizeText(text, 500), 500); got != text {
		t.Fatalf("summarizing twice should be a no-op, got %q", got)
	}
}

func TestSummarizeTextTruncates(t *testing.T) {
	text := strings.Repeat("x", 600) + ". Second sentence."
	got := SummarizeText(text, 500)
	if len(got) != 500 {
		t.Fatalf("truncated summary length = %d, want 500", len(got))
	}
}

func TestSummarizeTextCountsCharactersNotBytes(t *testing.T) {
	// 499 ASCII + "ç" is 500 characters but 501 bytes; it must survive whole.
	text := strings.Repeat("a", 499) + "ç"
	if got := SummarizeText(text, 500); got != text {
		t.Fatalf("500-character text should come back unchanged, got %d bytes", len(got))
	}

	// Truncation lands on a character boundary, never inside a rune: here
	// the 500th byte falls in the middle of the two-byte "ç".
	long := strings.Repeat("a", 499) + "ç final da frase em andamento"
	got := SummarizeText(long, 500)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated summary is not valid UTF-8: %q", got[len(got)-4:])
	}
	if n := utf8.RuneCountInString(got); n != 500 {
		t.Fatalf("truncated summary has %d characters, want 500", n)
	}
	if !strings.HasSuffix(got, "ç") {
		t.Fatalf("truncation should keep the whole rune, got tail %q", got[len(got)-4:])
	}
}

func TestSummarizeTextSkipsDecimalPoints(t *testing.T) {
	text := "Deployed version 1.2 to staging. Rollback plan is ready."
	if got := SummarizeText(text, 500); got != text {
		t.Fatalf("version numbers should not split sentences, got %q", got)
	}
}

func TestCleanComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[Alice Smith|acct123] looks good", "acct123 looks good"},
		{"[Bob|", ""},
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := CleanComment(tt.in); got != tt.want {
			t.Fatalf("CleanComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSectionsOrder(t *testing.T) {
	tasks := map[string]*AssigneeTasks{
		"Bob":   {InProgress: []TaskDetail{{Key: "PRJ-2", Summary: "B"}}},
		"Alice": {Completed: []TaskDetail{{Key: "PRJ-1", Summary: "A"}}},
	}
	r := SprintReport{
		SprintName: "Sprint 7",
		StartDate:  "02/03/2026",
		EndDate:    "16/03/2026",
		Tasks:      tasks,
		Metrics: &Metrics{
			Velocity:            4,
			Remaining:           6,
			EstimatedCompletion: "06/04/2026",
			Completed:           4,
			Pending:             3,
			NotStarted:          3,
			CompletedPct:        40,
		},
		Burndown: BuildBurndown(
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), 10, 4),
	}

	sections := RenderSections(r)
	if len(sections) != 5 {
		t.Fatalf("expected header + 2 people + metrics + burndown, got %d sections", len(sections))
	}
	if !strings.Contains(sections[0], "Sprint 7 (02/03/2026 - 16/03/2026)") {
		t.Fatalf("header section wrong: %q", sections[0])
	}
	// People in alphabetical order regardless of map order.
	if !strings.HasPrefix(sections[1], "# Name: Alice") || !strings.HasPrefix(sections[2], "# Name: Bob") {
		t.Fatalf("person sections out of order:\n%q\n%q", sections[1], sections[2])
	}
	if !strings.Contains(sections[3], "Completed Percentage:** 40.00%") {
		t.Fatalf("metrics section wrong: %q", sections[3])
	}
	if !strings.HasPrefix(sections[4], "# Burndown Chart:") {
		t.Fatalf("burndown reference wrong: %q", sections[4])
	}
}

func TestRenderPersonSectionFallbacks(t *testing.T) {
	got := RenderPersonSection("Dana", &AssigneeTasks{}, 500)
	for _, want := range []string{
		"# Name: Dana",
		"No tasks in progress.",
		"No tasks completed today.",
		"No upcoming tasks identified.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("person section missing %q:\n%s", want, got)
		}
	}
}

func TestRenderPersonSectionDetail(t *testing.T) {
	tasks := &AssigneeTasks{
		InProgress: []TaskDetail{{
			Key:         "PRJ-9",
			Summary:     "Ship the thing",
			StartDate:   "01/03/2026",
			DueDate:     "05/03/2026",
			Overdue:     true,
			Comments:    []string{"First note. Second note."},
			Impediments: []string{"Waiting on access."},
		}},
		Next: []TaskDetail{{Key: "PRJ-10", Summary: "Next thing"}},
	}
	got := RenderPersonSection("Eve", tasks, 500)
	for _, want := range []string{
		"* PRJ-9: Ship the thing",
		"* Start Date: 01/03/2026",
		"* Due Date: 05/03/2026",
		"* Overdue: Yes",
		"* Comments: First note. Second note.",
		"* Impediments: Waiting on access.",
		"* PRJ-10: Next thing",
		"No tasks completed today.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("person section missing %q:\n%s", want, got)
		}
	}
}

func TestRenderStatusSummary(t *testing.T) {
	byStatus := GroupIssuesByStatus([]domain.Issue{
		{Key: "PRJ-1", Summary: "A", Status: "Done", Assignee: "Alice", CreatedDate: "2026-03-01", UpdatedDate: "2026-03-03"},
		{Key: "PRJ-2", Summary: "B", Status: "To Do", Assignee: "Bob", CreatedDate: "2026-03-02", UpdatedDate: "2026-03-02"},
	})
	got := RenderStatusSummary("Sprint 7", "02/03/2026", "16/03/2026", byStatus, 1)
	for _, want := range []string{
		"**Total Tasks:** 2",
		"**Completed Tasks:** 1",
		"**Completed Percentage:** 50.00%",
		"**Remaining Tasks:** 1",
		"- **PRJ-1**: A (Created: 01/03/2026, Updated: 03/03/2026)",
		"**Bob:**",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("status summary missing %q:\n%s", want, got)
		}
	}
}

func TestRenderTimesheet(t *testing.T) {
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	agg := AggregateTimeEntries([]domain.TimeEntry{
		entry("Alice", monday, "PT2H30M", "Core", "API"),
		entry("Alice", monday.AddDate(0, 0, 1), "PT1H", "Core", "Infra"),
	})
	got := RenderTimesheet("Alice", "02/03/2026", "08/03/2026", agg)
	for _, want := range []string{
		"# Worked Hours Report for Alice",
		"**Period:** 02/03/2026 - 08/03/2026",
		"- **Core - API:** 2.50 hours",
		"- **Core - Infra:** 1.00 hours",
		"- Monday: 2.50 hours",
		"- Tuesday: 1.00 hours",
		"- Sunday: 0.00 hours",
		"**Total:** 3.50 hours",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("timesheet missing %q:\n%s", want, got)
		}
	}
	// Days render in fixed Monday-first order.
	if strings.Index(got, "- Monday:") > strings.Index(got, "- Sunday:") {
		t.Fatalf("weekday order wrong:\n%s", got)
	}
}
