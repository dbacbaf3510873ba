package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"sprintbot/internal/domain"
)

const (
	// DefaultMaxMessageChars is the transport message-size limit chunks
	// must stay under.
	DefaultMaxMessageChars = 2000
	// DefaultSummaryMaxChars caps summarized comment bodies.
	DefaultSummaryMaxChars = 500

	summarySentenceLimit = 5
)

var attributionRe = regexp.MustCompile(`\[.*?\|`)

// CleanComment strips bracketed author-attribution markers
// ("[Name|...]") from a comment body.
func CleanComment(comment string) string {
	cleaned := attributionRe.ReplaceAllString(comment, "")
	cleaned = strings.ReplaceAll(cleaned, "]", "")
	return strings.TrimSpace(cleaned)
}

// SummarizeText keeps at most the first five non-empty sentences of text
// joined by single spaces, then hard-truncates to maxChars if the result is
// still over. The limit counts characters, not bytes, so multi-byte text is
// never cut mid-rune. Text already inside both limits comes back unchanged.
func SummarizeText(text string, maxChars int) string {
	sentences := splitSentences(text)
	kept := make([]string, 0, summarySentenceLimit)
	for _, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		kept = append(kept, s)
		if len(kept) == summarySentenceLimit {
			break
		}
	}
	summary := strings.Join(kept, " ")
	if runes := []rune(summary); len(runes) > maxChars {
		return string(runes[:maxChars])
	}
	return summary
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace (or end of input). The terminator stays with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Swallow runs like "..." or "?!".
		end := i + 1
		for end < len(text) && (text[end] == '.' || text[end] == '!' || text[end] == '?') {
			end++
		}
		if end < len(text) && text[end] != ' ' && text[end] != '\n' && text[end] != '\t' {
			i = end - 1
			continue
		}
		out = append(out, strings.TrimSpace(text[start:end]))
		start = end
		i = end - 1
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// SplitMessage splits text into fixed-size positional chunks of at most
// maxChars. Boundaries are purely positional: chunks may break mid-word,
// and concatenating all chunks reconstructs the input byte-for-byte, which
// downstream consumers rely on.
func SplitMessage(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxMessageChars
	}
	if text == "" {
		return nil
	}
	chunks := make([]string, 0, len(text)/maxChars+1)
	for i := 0; i < len(text); i += maxChars {
		end := i + maxChars
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// Metrics is the aggregate block of a sprint report: velocity, remaining
// work, the projected completion date (or the cannot-estimate sentinel),
// and the completion breakdown.
type Metrics struct {
	Velocity            float64
	Remaining           int
	EstimatedCompletion string
	Completed           int
	Pending             int
	NotStarted          int
	CompletedPct        float64
}

// SprintReport carries everything the renderer needs for one board's
// report. Tasks, Metrics and Burndown are each optional; sections for
// absent parts are omitted while the fixed order of present sections is
// header, per-person detail, metrics, burndown reference.
type SprintReport struct {
	SprintName      string
	StartDate       string
	EndDate         string
	Tasks           map[string]*AssigneeTasks
	Metrics         *Metrics
	Burndown        []BurndownPoint
	SummaryMaxChars int
}

// RenderSections turns a sprint report into ordered text sections. People
// are enumerated in case-sensitive alphabetical order regardless of how the
// issues arrived.
func RenderSections(r SprintReport) []string {
	maxSummary := r.SummaryMaxChars
	if maxSummary <= 0 {
		maxSummary = DefaultSummaryMaxChars
	}

	sections := []string{
		fmt.Sprintf("# Daily Report: %s (%s - %s)\n", r.SprintName, r.StartDate, r.EndDate),
	}
	for _, person := range SortedAssignees(r.Tasks) {
		sections = append(sections, RenderPersonSection(person, r.Tasks[person], maxSummary))
	}
	if r.Metrics != nil {
		sections = append(sections, RenderMetrics(r.SprintName, *r.Metrics))
	}
	if len(r.Burndown) > 0 {
		sections = append(sections, RenderBurndownReference(r.Burndown))
	}
	return sections
}

// RenderPersonSection renders one person's in-progress, completed-today and
// upcoming tasks. Comment and impediment bodies are summarized.
func RenderPersonSection(person string, tasks *AssigneeTasks, maxSummaryChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Name: %s\n\n", person)

	b.WriteString("## Tasks In Progress:\n")
	if len(tasks.InProgress) > 0 {
		for _, task := range tasks.InProgress {
			writeTaskDetail(&b, task, maxSummaryChars)
		}
	} else {
		b.WriteString("  - No tasks in progress.\n\n")
	}

	b.WriteString("## Tasks Completed Today:\n")
	if len(tasks.Completed) > 0 {
		for _, task := range tasks.Completed {
			writeTaskDetail(&b, task, maxSummaryChars)
		}
	} else {
		b.WriteString("  - No tasks completed today.\n")
	}

	b.WriteString("## Upcoming Tasks:\n")
	if len(tasks.Next) > 0 {
		for _, task := range tasks.Next {
			fmt.Fprintf(&b, "* %s: %s\n", task.Key, task.Summary)
		}
	} else {
		b.WriteString("  - No upcoming tasks identified.\n")
	}

	return b.String()
}

func writeTaskDetail(b *strings.Builder, task TaskDetail, maxSummaryChars int) {
	comments := SummarizeText(strings.Join(task.Comments, "\n"), maxSummaryChars)
	if comments == "" {
		comments = "No comments."
	}
	impediments := SummarizeText(strings.Join(task.Impediments, "\n"), maxSummaryChars)
	if impediments == "" {
		impediments = "No impediments."
	}
	overdue := "No"
	if task.Overdue {
		overdue = "Yes"
	}
	fmt.Fprintf(b, "* %s: %s\n", task.Key, task.Summary)
	fmt.Fprintf(b, "  * Start Date: %s\n", task.StartDate)
	fmt.Fprintf(b, "  * Due Date: %s\n", task.DueDate)
	fmt.Fprintf(b, "  * Overdue: %s\n", overdue)
	fmt.Fprintf(b, "  * Comments: %s\n", comments)
	fmt.Fprintf(b, "  * Impediments: %s\n\n", impediments)
}

// RenderMetrics renders the aggregate metrics block.
func RenderMetrics(name string, m Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Completion Forecast: %s**\n\n", name)
	fmt.Fprintf(&b, "**Team Velocity:** %.2f tasks per sprint\n", m.Velocity)
	fmt.Fprintf(&b, "**Remaining Work:** %d tasks\n", m.Remaining)
	fmt.Fprintf(&b, "**Estimated Completion Date:** %s\n", m.EstimatedCompletion)
	fmt.Fprintf(&b, "**Completed Tasks:** %d\n", m.Completed)
	fmt.Fprintf(&b, "**Pending Tasks:** %d\n", m.Pending)
	fmt.Fprintf(&b, "**Not Started Tasks:** %d\n", m.NotStarted)
	fmt.Fprintf(&b, "**Completed Percentage:** %.2f%%\n", m.CompletedPct)
	return b.String()
}

// RenderBurndownReference renders the short textual block that accompanies
// the burndown chart image.
func RenderBurndownReference(points []BurndownPoint) string {
	var b strings.Builder
	b.WriteString("# Burndown Chart:\n")
	first := points[0]
	last := points[len(points)-1]
	fmt.Fprintf(&b, "%s - %s, %d tasks remaining\n",
		first.Date.Format("02/01/2006"), last.Date.Format("02/01/2006"), first.Actual)
	return b.String()
}

// RenderStatusSummary renders the sprint summary: totals, completion
// percentage and the status -> assignee task listing. Statuses and
// assignees are sorted for deterministic output.
func RenderStatusSummary(sprintName, startDate, endDate string, byStatus map[string]map[string][]domain.Issue, completed int) string {
	total := 0
	for _, assignees := range byStatus {
		for _, issues := range assignees {
			total += len(issues)
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Daily Report: Sprint %s (%s - %s)**\n\n", sprintName, startDate, endDate)
	fmt.Fprintf(&b, "**Total Tasks:** %d\n", total)
	fmt.Fprintf(&b, "**Completed Tasks:** %d\n", completed)
	fmt.Fprintf(&b, "**Completed Percentage:** %.2f%%\n", pct)
	fmt.Fprintf(&b, "**Remaining Tasks:** %d\n\n", total-completed)
	b.WriteString("## Tasks by Status and Person:\n")

	statuses := make([]string, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	for _, status := range statuses {
		fmt.Fprintf(&b, "\n**%s:**\n", status)
		assignees := make([]string, 0, len(byStatus[status]))
		for assignee := range byStatus[status] {
			assignees = append(assignees, assignee)
		}
		sort.Strings(assignees)
		for _, assignee := range assignees {
			fmt.Fprintf(&b, "\n**%s:**\n", assignee)
			for _, issue := range byStatus[status][assignee] {
				fmt.Fprintf(&b, "- **%s**: %s (Created: %s, Updated: %s)\n",
					issue.Key, issue.Summary,
					domain.FormatHumanDate(issue.CreatedDate),
					domain.FormatHumanDate(issue.UpdatedDate))
			}
		}
	}
	return b.String()
}

// RenderTimesheet renders one person's worked-hours report: hours per task,
// then hours per weekday in fixed Monday-first order with a total. Days
// without logged time render as explicit 0.00 lines.
func RenderTimesheet(person, periodStart, periodEnd string, agg TimeAggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Worked Hours Report for %s\n", person)
	fmt.Fprintf(&b, "**Period:** %s - %s\n\n", periodStart, periodEnd)

	tasks := agg.HoursByTask[person]
	if len(tasks) > 0 {
		b.WriteString("## Hours by Task\n")
		labels := make([]string, 0, len(tasks))
		for label := range tasks {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&b, "- **%s:** %.2f hours\n", label, tasks[label])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Hours by Day of Week\n")
	total := 0.0
	days := agg.HoursByDay[person]
	for _, day := range domain.DaysOfWeek {
		hours := days[day]
		total += hours
		fmt.Fprintf(&b, "- %s: %.2f hours\n", day, hours)
	}
	fmt.Fprintf(&b, "**Total:** %.2f hours\n", total)
	return b.String()
}
