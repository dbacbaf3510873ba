package app

import (
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"sprintbot/internal/charts"
	"sprintbot/internal/config"
	"sprintbot/internal/integrations/clockify"
	"sprintbot/internal/integrations/discord"
	"sprintbot/internal/integrations/jira"
	slacknotify "sprintbot/internal/integrations/slack"
	"sprintbot/internal/storage/sqlite"
)

// Main wires configuration, storage and the external clients, then either
// runs a single report pass or keeps running on the configured cron
// schedule.
func Main() {
	cfg := config.LoadConfig()

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	if runs, err := sqlite.RecentRuns(db, 1); err != nil {
		log.Printf("run history read error: %v", err)
	} else if len(runs) == 1 {
		last := runs[0]
		log.Printf("last report run kind=%s board=%q delivered=%t at %s",
			last.Kind, last.BoardName, last.Delivered, last.RanAt.Format("2006-01-02 15:04"))
	}

	deps := Deps{
		Issues: jira.NewClient(cfg.JiraURL, cfg.JiraUsername, cfg.JiraAPIToken),
		Charts: charts.New(),
		DB:     db,
	}

	if cfg.ClockifyAPIKey != "" {
		deps.Time = clockify.NewClient("", cfg.ClockifyAPIKey)
	}

	switch cfg.Notifier {
	case "slack":
		deps.Notify = slacknotify.New(cfg.SlackBotToken, cfg.SlackChannelID)
		log.Printf("notifier=slack channel=%s", cfg.SlackChannelID)
	default:
		deps.Notify = discord.New(cfg.WebhookURL)
		log.Println("notifier=discord")
	}

	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		log.Println("No schedule configured, running once")
		if err := RunOnce(cfg, deps); err != nil {
			log.Fatalf("Report run failed: %v", err)
		}
		return
	}

	runScheduled(cfg, deps, schedule)
}

// runScheduled blocks forever, sleeping until the cron schedule's next
// firing and running a report pass each time. The schedule is a standard
// 5-field cron expression (minute hour day-of-month month day-of-week).
// Example: "0 17 * * 1-5" (weekdays at 5pm).
func runScheduled(cfg config.Config, deps Deps, schedule string) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Fatalf("Invalid schedule '%s': %v", schedule, err)
	}

	log.Printf("Reports scheduled (cron: %s, tz: %s)", schedule, cfg.Location)

	for {
		now := time.Now().In(cfg.Location)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next report at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)

		if err := RunOnce(cfg, deps); err != nil {
			log.Printf("Report run error: %v", err)
		}
	}
}
