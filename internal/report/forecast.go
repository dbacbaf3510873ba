package report

import (
	"time"

	"sprintbot/internal/domain"
)

// CannotEstimate is rendered when velocity is zero or negative and a
// completion date would require dividing by it.
const CannotEstimate = "cannot estimate"

// Velocity returns the average number of completed items per closed sprint.
// completedPerClosedSprint holds one completed-item count per closed sprint;
// with no closed sprints the velocity is 0.
func Velocity(completedPerClosedSprint []int) float64 {
	if len(completedPerClosedSprint) == 0 {
		return 0
	}
	total := 0
	for _, n := range completedPerClosedSprint {
		total += n
	}
	return float64(total) / float64(len(completedPerClosedSprint))
}

// EstimateCompletion projects a completion date from velocity and remaining
// work. The projection is truncated to whole weeks
// (weeks = floor(sprintsNeeded * sprintLengthDays/7)), which report
// consumers have long relied on. Returns the CannotEstimate sentinel
// instead of dividing when velocity is not positive.
func EstimateCompletion(velocity float64, remaining, sprintLengthDays int, now time.Time) string {
	if velocity <= 0 {
		return CannotEstimate
	}
	sprintsNeeded := float64(remaining) / velocity
	weeks := int(sprintsNeeded * float64(sprintLengthDays) / 7)
	return now.AddDate(0, 0, weeks*7).Format("02/01/2006")
}

// CompletionStats summarizes sprint issues into completed, pending
// (in progress), and not-started counts plus the completed percentage.
// The caller passes the issues of every active and closed sprint; the
// percentage is 0 when there are no issues at all.
func CompletionStats(issues []domain.Issue, buckets StatusBuckets) (completed, pending, notStarted int, pct float64) {
	for _, issue := range issues {
		switch buckets.Classify(issue.Status) {
		case BucketCompleted:
			completed++
		case BucketInProgress:
			pending++
		}
	}
	total := len(issues)
	notStarted = total - completed - pending
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}
	return completed, pending, notStarted, pct
}
