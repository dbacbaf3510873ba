package domain

import "time"

// TimeEntry is one logged block of work fetched from the time tracker.
// Duration keeps the raw encoded string ("PT1H30M"); use ParseDuration to
// turn it into decimal hours. A missing duration is an empty string.
type TimeEntry struct {
	UserID      string
	UserName    string
	Start       time.Time
	Duration    string
	ProjectName string
	TaskName    string
}

// Comment is an issue comment with the author attribution already stripped.
type Comment struct {
	Body         string
	IsImpediment bool
}

type Issue struct {
	Key         string
	Summary     string
	Status      string
	Assignee    string // empty when unassigned
	CreatedDate string // yyyy-mm-dd
	DueDate     string // yyyy-mm-dd, empty when not set
	UpdatedDate string
	SprintID    int
	Comments    []Comment
}

type Sprint struct {
	ID        int
	Name      string
	State     string // "future", "active", or "closed"
	StartDate string // ISO timestamp as returned by the tracker
	EndDate   string
}

type Board struct {
	ID         int
	Name       string
	ProjectKey string
}

type User struct {
	ID   string
	Name string
}

// ActiveSprint returns the at most one active sprint of a board, or false
// when the board has none.
func ActiveSprint(sprints []Sprint) (Sprint, bool) {
	for _, s := range sprints {
		if s.State == "active" {
			return s, true
		}
	}
	return Sprint{}, false
}
