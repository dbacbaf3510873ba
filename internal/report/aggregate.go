package report

import (
	"log"
	"sort"
	"strings"
	"time"

	"sprintbot/internal/domain"
)

const (
	noProjectLabel  = "No Project"
	noTaskLabel     = "No Task"
	unassignedLabel = "Unassigned"
)

// TimeAggregate holds worked hours bucketed two ways: person -> weekday and
// person -> "project - task". Both maps share the same person key set.
type TimeAggregate struct {
	HoursByDay  map[string]map[string]float64
	HoursByTask map[string]map[string]float64
}

// People returns the person names in case-sensitive alphabetical order,
// which is the order reports enumerate people in.
func (a TimeAggregate) People() []string {
	names := make([]string, 0, len(a.HoursByDay))
	for name := range a.HoursByDay {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AggregateTimeEntries buckets raw time entries by person and weekday and by
// person and task label. Entries without a user name are logged and skipped;
// the rest of the batch is unaffected. Repeated (person, bucket) pairs
// accumulate. Every person gets explicit entries for all seven weekdays so
// zero days render as 0.00 rather than disappearing.
func AggregateTimeEntries(entries []domain.TimeEntry) TimeAggregate {
	agg := TimeAggregate{
		HoursByDay:  make(map[string]map[string]float64),
		HoursByTask: make(map[string]map[string]float64),
	}

	for _, entry := range entries {
		if entry.UserName == "" {
			log.Printf("time entry skipped: missing user name user_id=%q", entry.UserID)
			continue
		}
		if entry.Start.IsZero() {
			log.Printf("time entry skipped: missing start user=%s", entry.UserName)
			continue
		}

		hours := domain.ParseDuration(entry.Duration)
		day := domain.DayOfWeek(entry.Start)

		project := entry.ProjectName
		if project == "" {
			project = noProjectLabel
		}
		task := entry.TaskName
		if task == "" {
			task = noTaskLabel
		}

		if agg.HoursByDay[entry.UserName] == nil {
			agg.HoursByDay[entry.UserName] = make(map[string]float64, len(domain.DaysOfWeek))
			for _, d := range domain.DaysOfWeek {
				agg.HoursByDay[entry.UserName][d] = 0
			}
			agg.HoursByTask[entry.UserName] = make(map[string]float64)
		}
		agg.HoursByDay[entry.UserName][day] += hours
		agg.HoursByTask[entry.UserName][project+" - "+task] += hours
	}

	return agg
}

// StatusBuckets maps raw tracker status labels onto the three report
// buckets. Matching is case-insensitive so "Done" and "done" land in the
// same bucket regardless of tracker locale settings.
type StatusBuckets struct {
	Completed  []string
	InProgress []string
}

type Bucket int

const (
	BucketNext Bucket = iota
	BucketInProgress
	BucketCompleted
)

func (b StatusBuckets) Classify(status string) Bucket {
	for _, label := range b.Completed {
		if strings.EqualFold(status, label) {
			return BucketCompleted
		}
	}
	for _, label := range b.InProgress {
		if strings.EqualFold(status, label) {
			return BucketInProgress
		}
	}
	return BucketNext
}

// TaskDetail is one issue prepared for rendering: dates already formatted,
// comments split into progress notes and impediments.
type TaskDetail struct {
	Key         string
	Summary     string
	Status      string
	StartDate   string
	DueDate     string
	Overdue     bool
	Comments    []string
	Impediments []string
}

// AssigneeTasks is the per-person three-way split of sprint issues. Each
// issue lands in exactly one of the three lists per snapshot.
type AssigneeTasks struct {
	Completed  []TaskDetail
	InProgress []TaskDetail
	Next       []TaskDetail
}

// GroupIssuesByAssignee splits sprint issues per assignee into completed,
// in-progress and upcoming buckets. Issues without an assignee are grouped
// under "Unassigned". The overdue flag is computed against now.
func GroupIssuesByAssignee(issues []domain.Issue, buckets StatusBuckets, now time.Time) map[string]*AssigneeTasks {
	byPerson := make(map[string]*AssigneeTasks)

	for _, issue := range issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = unassignedLabel
		}

		detail := TaskDetail{
			Key:       issue.Key,
			Summary:   issue.Summary,
			Status:    issue.Status,
			StartDate: domain.FormatHumanDate(issue.CreatedDate),
			DueDate:   domain.FormatHumanDate(issue.DueDate),
			Overdue:   domain.IsOverdue(issue.DueDate, now),
		}
		for _, c := range issue.Comments {
			if c.IsImpediment {
				detail.Impediments = append(detail.Impediments, c.Body)
			} else {
				detail.Comments = append(detail.Comments, c.Body)
			}
		}

		if byPerson[assignee] == nil {
			byPerson[assignee] = &AssigneeTasks{}
		}
		switch buckets.Classify(issue.Status) {
		case BucketCompleted:
			byPerson[assignee].Completed = append(byPerson[assignee].Completed, detail)
		case BucketInProgress:
			byPerson[assignee].InProgress = append(byPerson[assignee].InProgress, detail)
		default:
			byPerson[assignee].Next = append(byPerson[assignee].Next, detail)
		}
	}

	return byPerson
}

// SortedAssignees returns the assignee names of a grouping in the
// case-sensitive alphabetical order reports use.
func SortedAssignees(byPerson map[string]*AssigneeTasks) []string {
	names := make([]string, 0, len(byPerson))
	for name := range byPerson {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupIssuesByStatus buckets sprint issues by raw status label, then by
// assignee, for the sprint summary section.
func GroupIssuesByStatus(issues []domain.Issue) map[string]map[string][]domain.Issue {
	byStatus := make(map[string]map[string][]domain.Issue)
	for _, issue := range issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = unassignedLabel
		}
		if byStatus[issue.Status] == nil {
			byStatus[issue.Status] = make(map[string][]domain.Issue)
		}
		byStatus[issue.Status][assignee] = append(byStatus[issue.Status][assignee], issue)
	}
	return byStatus
}

// StatusCounts reduces a status grouping to issue counts per status label,
// the shape the status chart consumes.
func StatusCounts(byStatus map[string]map[string][]domain.Issue) map[string]int {
	counts := make(map[string]int, len(byStatus))
	for status, assignees := range byStatus {
		for _, issues := range assignees {
			counts[status] += len(issues)
		}
	}
	return counts
}
