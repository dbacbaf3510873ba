package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ReportRun records one dispatched report: which board and kind, how many
// chunks went out, and whether delivery succeeded. The history exists for
// operators; report generation itself never reads it.
type ReportRun struct {
	ID        int64
	BoardID   int
	BoardName string
	Kind      string
	Chunks    int
	Delivered bool
	Error     string
	RanAt     time.Time
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id   INTEGER NOT NULL,
		board_name TEXT NOT NULL,
		kind       TEXT NOT NULL,
		chunks     INTEGER NOT NULL DEFAULT 0,
		delivered  INTEGER NOT NULL DEFAULT 0,
		error      TEXT DEFAULT '',
		ran_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_report_runs_ran_at ON report_runs(ran_at);
	CREATE INDEX IF NOT EXISTS idx_report_runs_board ON report_runs(board_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

func InsertReportRun(db *sql.DB, run ReportRun) error {
	_, err := db.Exec(
		`INSERT INTO report_runs (board_id, board_name, kind, chunks, delivered, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.BoardID, run.BoardName, run.Kind, run.Chunks, run.Delivered, run.Error,
	)
	return err
}

// RecentRuns returns the newest runs first, up to limit.
func RecentRuns(db *sql.DB, limit int) ([]ReportRun, error) {
	rows, err := db.Query(
		`SELECT id, board_id, board_name, kind, chunks, delivered, error, ran_at
		 FROM report_runs ORDER BY ran_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var run ReportRun
		if err := rows.Scan(&run.ID, &run.BoardID, &run.BoardName, &run.Kind,
			&run.Chunks, &run.Delivered, &run.Error, &run.RanAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
