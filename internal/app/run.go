package app

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"sprintbot/internal/config"
	"sprintbot/internal/domain"
	"sprintbot/internal/report"
	"sprintbot/internal/storage/sqlite"
)

// IssueSource is the issue-tracking collaborator boundary.
type IssueSource interface {
	Boards() ([]domain.Board, error)
	Sprints(boardID int) ([]domain.Sprint, error)
	SearchIssues(jql string) ([]domain.Issue, error)
	Comments(issueKey string) ([]string, error)
}

// TimeSource is the time-tracking collaborator boundary.
type TimeSource interface {
	Users(workspaceID string) ([]domain.User, error)
	TimeEntries(workspaceID string, user domain.User, start, end time.Time) ([]domain.TimeEntry, error)
}

// Dispatcher delivers rendered chunks and chart images. Any non-success
// delivery comes back as an error to be logged; deliveries are not retried
// within a run.
type Dispatcher interface {
	DeliverText(content string) error
	DeliverImage(png []byte, caption string) error
}

// ChartRenderer rasterizes series into PNG bytes.
type ChartRenderer interface {
	BurndownPNG(points []report.BurndownPoint, sprintName string) ([]byte, error)
	StatusCountsPNG(counts map[string]int, title string) ([]byte, error)
}

// Deps bundles the collaborators one run needs. DB and Now are optional:
// without DB no run history is written, without Now the wall clock is used.
type Deps struct {
	Issues IssueSource
	Time   TimeSource
	Charts ChartRenderer
	Notify Dispatcher
	DB     *sql.DB
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RunOnce processes one snapshot: every board's enabled report kinds, then
// the run-level timesheet report. A board's failure is logged with the
// board identity and never aborts the other boards.
func RunOnce(cfg config.Config, deps Deps) error {
	boardScoped := config.SectionEnabled(cfg.ReportSections, "daily") ||
		config.SectionEnabled(cfg.ReportSections, "summary") ||
		config.SectionEnabled(cfg.ReportSections, "burndown") ||
		config.SectionEnabled(cfg.ReportSections, "forecast")

	if boardScoped {
		boards, err := deps.Issues.Boards()
		if err != nil {
			return fmt.Errorf("fetching boards: %w", err)
		}
		log.Printf("run boards=%d sections=%s", len(boards), strings.Join(cfg.ReportSections, ","))

		for _, board := range boards {
			if err := processBoard(cfg, deps, board); err != nil {
				log.Printf("board failed board=%d name=%q: %v", board.ID, board.Name, err)
			}
		}
	}

	if config.SectionEnabled(cfg.ReportSections, "timesheet") {
		if err := runTimesheet(cfg, deps); err != nil {
			log.Printf("timesheet report failed: %v", err)
		}
	}

	return nil
}

func processBoard(cfg config.Config, deps Deps, board domain.Board) error {
	sprints, err := deps.Issues.Sprints(board.ID)
	if err != nil {
		return fmt.Errorf("fetching sprints: %w", err)
	}

	active, ok := domain.ActiveSprint(sprints)
	if !ok {
		log.Printf("no active sprint board=%d name=%q, skipping", board.ID, board.Name)
		return nil
	}

	buckets := report.StatusBuckets{
		Completed:  cfg.CompletedStatuses,
		InProgress: cfg.InProgressStatuses,
	}
	now := deps.now()

	r := report.SprintReport{
		SprintName:      active.Name,
		StartDate:       domain.FormatSprintDate(active.StartDate),
		EndDate:         domain.FormatSprintDate(active.EndDate),
		SummaryMaxChars: cfg.SummaryMaxChars,
	}

	// Issues of the active sprint, fetched once and shared by the summary,
	// burndown and forecast sections.
	var sprintIssues []domain.Issue
	sprintIssuesLoaded := false
	loadSprintIssues := func() ([]domain.Issue, error) {
		if !sprintIssuesLoaded {
			issues, err := deps.Issues.SearchIssues(fmt.Sprintf("sprint = %d", active.ID))
			if err != nil {
				return nil, err
			}
			sprintIssues = issues
			sprintIssuesLoaded = true
		}
		return sprintIssues, nil
	}

	if config.SectionEnabled(cfg.ReportSections, "daily") {
		tasks, err := fetchDailyTasks(cfg, deps, active, buckets, now)
		if err != nil {
			return fmt.Errorf("building daily detail: %w", err)
		}
		r.Tasks = tasks
	}

	if config.SectionEnabled(cfg.ReportSections, "forecast") {
		metrics, err := buildMetrics(cfg, deps, board, sprints, buckets, now)
		if err != nil {
			return fmt.Errorf("building forecast: %w", err)
		}
		r.Metrics = metrics
	}

	if config.SectionEnabled(cfg.ReportSections, "burndown") {
		issues, err := loadSprintIssues()
		if err != nil {
			return fmt.Errorf("fetching sprint issues: %w", err)
		}
		r.Burndown = buildBurndownSeries(active, issues, buckets)
	}

	if r.Tasks != nil || r.Metrics != nil || len(r.Burndown) > 0 {
		sections := report.RenderSections(r)
		delivered, chunks, deliverErr := deliverSections(deps.Notify, sections, cfg.MaxMessageChars)
		recordRun(deps.DB, sqlite.ReportRun{
			BoardID:   board.ID,
			BoardName: board.Name,
			Kind:      "sprint",
			Chunks:    chunks,
			Delivered: delivered,
			Error:     errString(deliverErr),
		})
	}

	if len(r.Burndown) > 0 {
		deliverBurndownChart(deps, board, active, r.Burndown)
	}

	if config.SectionEnabled(cfg.ReportSections, "summary") {
		issues, err := loadSprintIssues()
		if err != nil {
			return fmt.Errorf("fetching sprint issues: %w", err)
		}
		deliverSummary(cfg, deps, board, active, issues, buckets, r)
	}

	return nil
}

// fetchDailyTasks pulls the active sprint's in-progress work plus anything
// completed since the start of the day, with comments attached, and groups
// it per assignee.
func fetchDailyTasks(cfg config.Config, deps Deps, active domain.Sprint, buckets report.StatusBuckets, now time.Time) (map[string]*report.AssigneeTasks, error) {
	jql := fmt.Sprintf("sprint = %d AND (status in (%s) OR (status in (%s) AND updated >= startOfDay()))",
		active.ID, quoteLabels(cfg.InProgressStatuses), quoteLabels(cfg.CompletedStatuses))
	issues, err := deps.Issues.SearchIssues(jql)
	if err != nil {
		return nil, err
	}
	log.Printf("daily issues fetched sprint=%d count=%d", active.ID, len(issues))

	keyword := strings.ToLower(cfg.ImpedimentKeyword)
	for i := range issues {
		bodies, err := deps.Issues.Comments(issues[i].Key)
		if err != nil {
			// Comments are enrichment; the task line still renders.
			log.Printf("comments fetch failed issue=%s: %v", issues[i].Key, err)
			continue
		}
		for _, body := range bodies {
			cleaned := report.CleanComment(body)
			issues[i].Comments = append(issues[i].Comments, domain.Comment{
				Body:         cleaned,
				IsImpediment: strings.Contains(strings.ToLower(cleaned), keyword),
			})
		}
	}

	return report.GroupIssuesByAssignee(issues, buckets, now), nil
}

// buildMetrics computes velocity over closed sprints, remaining project
// work, and the completion breakdown over active and closed sprints.
func buildMetrics(cfg config.Config, deps Deps, board domain.Board, sprints []domain.Sprint, buckets report.StatusBuckets, now time.Time) (*report.Metrics, error) {
	var completedPerClosed []int
	var statIssues []domain.Issue
	for _, sprint := range sprints {
		if sprint.State != "active" && sprint.State != "closed" {
			continue
		}
		issues, err := deps.Issues.SearchIssues(fmt.Sprintf("sprint = %d", sprint.ID))
		if err != nil {
			return nil, fmt.Errorf("fetching issues for sprint %d: %w", sprint.ID, err)
		}
		statIssues = append(statIssues, issues...)
		if sprint.State == "closed" {
			completed := 0
			for _, issue := range issues {
				if buckets.Classify(issue.Status) == report.BucketCompleted {
					completed++
				}
			}
			completedPerClosed = append(completedPerClosed, completed)
		}
	}

	velocity := report.Velocity(completedPerClosed)

	remaining, err := remainingWork(cfg, deps, board)
	if err != nil {
		return nil, err
	}

	completed, pending, notStarted, pct := report.CompletionStats(statIssues, buckets)
	return &report.Metrics{
		Velocity:            velocity,
		Remaining:           remaining,
		EstimatedCompletion: report.EstimateCompletion(velocity, remaining, cfg.SprintLengthDays, now),
		Completed:           completed,
		Pending:             pending,
		NotStarted:          notStarted,
		CompletedPct:        pct,
	}, nil
}

// remainingWork counts the project's not-completed issues. Boards without a
// project key yield zero remaining work rather than an error.
func remainingWork(cfg config.Config, deps Deps, board domain.Board) (int, error) {
	if board.ProjectKey == "" {
		log.Printf("board %d has no project key, remaining work unknown", board.ID)
		return 0, nil
	}
	jql := fmt.Sprintf("project = %q AND status not in (%s)", board.ProjectKey, quoteLabels(cfg.CompletedStatuses))
	issues, err := deps.Issues.SearchIssues(jql)
	if err != nil {
		return 0, fmt.Errorf("fetching remaining work: %w", err)
	}
	return len(issues), nil
}

func buildBurndownSeries(active domain.Sprint, issues []domain.Issue, buckets report.StatusBuckets) []report.BurndownPoint {
	start, err := domain.ParseSprintDate(active.StartDate)
	if err != nil {
		log.Printf("burndown skipped: bad sprint start %q: %v", active.StartDate, err)
		return nil
	}
	end, err := domain.ParseSprintDate(active.EndDate)
	if err != nil {
		log.Printf("burndown skipped: bad sprint end %q: %v", active.EndDate, err)
		return nil
	}

	completed := 0
	for _, issue := range issues {
		if buckets.Classify(issue.Status) == report.BucketCompleted {
			completed++
		}
	}
	return report.BuildBurndown(start, end, len(issues), completed)
}

func deliverBurndownChart(deps Deps, board domain.Board, active domain.Sprint, points []report.BurndownPoint) {
	png, err := deps.Charts.BurndownPNG(points, active.Name)
	if err != nil {
		log.Printf("burndown chart render failed board=%d: %v", board.ID, err)
		return
	}
	deliverErr := deps.Notify.DeliverImage(png, "# Burndown Chart:")
	if deliverErr != nil {
		log.Printf("burndown chart delivery failed board=%d: %v", board.ID, deliverErr)
	}
	recordRun(deps.DB, sqlite.ReportRun{
		BoardID:   board.ID,
		BoardName: board.Name,
		Kind:      "burndown",
		Chunks:    1,
		Delivered: deliverErr == nil,
		Error:     errString(deliverErr),
	})
}

func deliverSummary(cfg config.Config, deps Deps, board domain.Board, active domain.Sprint, issues []domain.Issue, buckets report.StatusBuckets, r report.SprintReport) {
	byStatus := report.GroupIssuesByStatus(issues)
	completed := 0
	for _, issue := range issues {
		if buckets.Classify(issue.Status) == report.BucketCompleted {
			completed++
		}
	}

	content := report.RenderStatusSummary(active.Name, r.StartDate, r.EndDate, byStatus, completed)
	delivered, chunks, deliverErr := deliverSections(deps.Notify, []string{content}, cfg.MaxMessageChars)

	counts := report.StatusCounts(byStatus)
	if png, err := deps.Charts.StatusCountsPNG(counts, "Tasks by Status"); err != nil {
		log.Printf("status chart render failed board=%d: %v", board.ID, err)
	} else if err := deps.Notify.DeliverImage(png, "Tasks by status:"); err != nil {
		log.Printf("status chart delivery failed board=%d: %v", board.ID, err)
		if deliverErr == nil {
			deliverErr = err
		}
		delivered = false
	}

	recordRun(deps.DB, sqlite.ReportRun{
		BoardID:   board.ID,
		BoardName: board.Name,
		Kind:      "summary",
		Chunks:    chunks,
		Delivered: delivered,
		Error:     errString(deliverErr),
	})
}

// runTimesheet builds the worked-hours report over the configured rolling
// window and delivers one message per person. A single user's fetch failure
// drops that user, not the report.
func runTimesheet(cfg config.Config, deps Deps) error {
	now := deps.now()
	end := now
	start := end.AddDate(0, 0, -cfg.TimesheetDays)

	users, err := deps.Time.Users(cfg.ClockifyWorkspaceID)
	if err != nil {
		return fmt.Errorf("fetching users: %w", err)
	}
	log.Printf("timesheet users=%d window=%s - %s", len(users),
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	var entries []domain.TimeEntry
	for _, user := range users {
		userEntries, err := deps.Time.TimeEntries(cfg.ClockifyWorkspaceID, user, start, end)
		if err != nil {
			log.Printf("time entries fetch failed user=%s: %v", user.Name, err)
			continue
		}
		entries = append(entries, userEntries...)
	}

	agg := report.AggregateTimeEntries(entries)
	periodStart := start.Format("02/01/2006")
	periodEnd := end.Format("02/01/2006")

	totalChunks := 0
	allDelivered := true
	var firstErr error
	for _, person := range agg.People() {
		content := report.RenderTimesheet(person, periodStart, periodEnd, agg)
		delivered, chunks, err := deliverSections(deps.Notify, []string{content}, cfg.MaxMessageChars)
		totalChunks += chunks
		if !delivered {
			allDelivered = false
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	recordRun(deps.DB, sqlite.ReportRun{
		Kind:      "timesheet",
		Chunks:    totalChunks,
		Delivered: allDelivered,
		Error:     errString(firstErr),
	})
	return nil
}

// deliverSections paginates each section and delivers the chunks in order.
// A failed chunk is logged and skipped; later chunks still go out.
func deliverSections(notify Dispatcher, sections []string, maxChars int) (delivered bool, chunks int, firstErr error) {
	delivered = true
	for _, section := range sections {
		for _, chunk := range report.SplitMessage(section, maxChars) {
			chunks++
			if err := notify.DeliverText(chunk); err != nil {
				log.Printf("chunk delivery failed: %v", err)
				delivered = false
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return delivered, chunks, firstErr
}

func recordRun(db *sql.DB, run sqlite.ReportRun) {
	if db == nil {
		return
	}
	if err := sqlite.InsertReportRun(db, run); err != nil {
		log.Printf("report run persist error (non-fatal): %v", err)
	}
}

// quoteLabels renders status labels as a quoted JQL list: "Done", "Closed".
func quoteLabels(labels []string) string {
	quoted := make([]string, 0, len(labels))
	for _, label := range labels {
		quoted = append(quoted, fmt.Sprintf("%q", label))
	}
	return strings.Join(quoted, ", ")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
