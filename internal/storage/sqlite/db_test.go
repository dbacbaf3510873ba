package sqlite

import (
	"path/filepath"
	"testing"
)

func TestReportRunRoundTrip(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	defer db.Close()

	runs := []ReportRun{
		{BoardID: 1, BoardName: "Platform", Kind: "daily", Chunks: 3, Delivered: true},
		{BoardID: 2, BoardName: "Mobile", Kind: "forecast", Chunks: 1, Delivered: false, Error: "webhook returned 429: rate limited"},
	}
	for _, run := range runs {
		if err := InsertReportRun(db, run); err != nil {
			t.Fatalf("InsertReportRun failed: %v", err)
		}
	}

	got, err := RecentRuns(db, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	// Newest first.
	if got[0].BoardName != "Mobile" || got[0].Delivered || got[0].Error == "" {
		t.Fatalf("unexpected first run: %+v", got[0])
	}
	if got[1].Kind != "daily" || got[1].Chunks != 3 || !got[1].Delivered {
		t.Fatalf("unexpected second run: %+v", got[1])
	}
	if got[0].RanAt.IsZero() {
		t.Fatalf("ran_at should be populated")
	}
}

func TestRecentRunsLimit(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	defer db.Close()

	for i := 0; i < 5; i++ {
		if err := InsertReportRun(db, ReportRun{BoardID: i, BoardName: "B", Kind: "daily"}); err != nil {
			t.Fatalf("InsertReportRun failed: %v", err)
		}
	}
	got, err := RecentRuns(db, 3)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(got))
	}
}
