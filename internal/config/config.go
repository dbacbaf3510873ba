package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	JiraURL      string `yaml:"jira_url"`
	JiraUsername string `yaml:"jira_username"`
	JiraAPIToken string `yaml:"jira_api_token"`

	ClockifyAPIKey      string `yaml:"clockify_api_key"`
	ClockifyWorkspaceID string `yaml:"clockify_workspace_id"`

	Notifier       string `yaml:"notifier"` // "discord" or "slack"
	WebhookURL     string `yaml:"webhook_url"`
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	DBPath string `yaml:"db_path"`

	CompletedStatuses  []string `yaml:"completed_statuses"`
	InProgressStatuses []string `yaml:"in_progress_statuses"`
	ImpedimentKeyword  string   `yaml:"impediment_keyword"`

	ReportSections []string `yaml:"report_sections"`

	MaxMessageChars  int `yaml:"max_message_chars"`
	SummaryMaxChars  int `yaml:"summary_max_chars"`
	SprintLengthDays int `yaml:"sprint_length_days"`
	TimesheetDays    int `yaml:"timesheet_days"`

	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

// knownSections are the report kinds a run understands.
var knownSections = map[string]bool{
	"daily":     true,
	"summary":   true,
	"burndown":  true,
	"forecast":  true,
	"timesheet": true,
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.JiraURL, "JIRA_URL")
	envOverride(&cfg.JiraUsername, "JIRA_USERNAME")
	envOverride(&cfg.JiraAPIToken, "JIRA_API_TOKEN")
	envOverride(&cfg.ClockifyAPIKey, "CLOCKIFY_API_KEY")
	envOverride(&cfg.ClockifyWorkspaceID, "CLOCKIFY_WORKSPACE_ID")
	envOverride(&cfg.Notifier, "NOTIFIER")
	envOverride(&cfg.WebhookURL, "WEBHOOK_URL")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ImpedimentKeyword, "IMPEDIMENT_KEYWORD")
	envOverrideInt(&cfg.MaxMessageChars, "MAX_MESSAGE_CHARS")
	envOverrideInt(&cfg.SummaryMaxChars, "SUMMARY_MAX_CHARS")
	envOverrideInt(&cfg.SprintLengthDays, "SPRINT_LENGTH_DAYS")
	envOverrideInt(&cfg.TimesheetDays, "TIMESHEET_DAYS")
	envOverride(&cfg.Schedule, "SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideList(&cfg.CompletedStatuses, "COMPLETED_STATUSES")
	envOverrideList(&cfg.InProgressStatuses, "IN_PROGRESS_STATUSES")
	envOverrideList(&cfg.ReportSections, "REPORT_SECTIONS")

	// Defaults
	if cfg.Notifier == "" {
		cfg.Notifier = "discord"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./sprintbot.db"
	}
	if len(cfg.CompletedStatuses) == 0 {
		cfg.CompletedStatuses = []string{"Done"}
	}
	if len(cfg.InProgressStatuses) == 0 {
		cfg.InProgressStatuses = []string{"In Progress"}
	}
	if cfg.ImpedimentKeyword == "" {
		cfg.ImpedimentKeyword = "impediment"
	}
	if len(cfg.ReportSections) == 0 {
		cfg.ReportSections = []string{"daily", "summary", "burndown", "forecast"}
	}
	if cfg.MaxMessageChars == 0 {
		cfg.MaxMessageChars = 2000
	}
	if cfg.SummaryMaxChars == 0 {
		cfg.SummaryMaxChars = 500
	}
	if cfg.SprintLengthDays == 0 {
		cfg.SprintLengthDays = 14
	}
	if cfg.TimesheetDays == 0 {
		cfg.TimesheetDays = 7
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate required fields
	required := map[string]string{
		"jira_url":       cfg.JiraURL,
		"jira_username":  cfg.JiraUsername,
		"jira_api_token": cfg.JiraAPIToken,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	switch cfg.Notifier {
	case "discord":
		if cfg.WebhookURL == "" {
			log.Fatalf("webhook_url is required when notifier=discord")
		}
	case "slack":
		if cfg.SlackBotToken == "" || cfg.SlackChannelID == "" {
			log.Fatalf("slack_bot_token and slack_channel_id are required when notifier=slack")
		}
	default:
		log.Fatalf("notifier must be 'discord' or 'slack', got '%s'", cfg.Notifier)
	}

	for _, section := range cfg.ReportSections {
		if !knownSections[section] {
			log.Fatalf("unknown report section '%s'", section)
		}
	}
	if SectionEnabled(cfg.ReportSections, "timesheet") {
		if cfg.ClockifyAPIKey == "" || cfg.ClockifyWorkspaceID == "" {
			log.Fatalf("clockify_api_key and clockify_workspace_id are required when the timesheet section is enabled")
		}
	}

	if cfg.MaxMessageChars < 1 {
		log.Fatalf("invalid max_message_chars '%d': must be >= 1", cfg.MaxMessageChars)
	}
	if cfg.SummaryMaxChars < 1 {
		log.Fatalf("invalid summary_max_chars '%d': must be >= 1", cfg.SummaryMaxChars)
	}
	if cfg.SprintLengthDays < 1 {
		log.Fatalf("invalid sprint_length_days '%d': must be >= 1", cfg.SprintLengthDays)
	}
	if cfg.TimesheetDays < 1 {
		log.Fatalf("invalid timesheet_days '%d': must be >= 1", cfg.TimesheetDays)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

// SectionEnabled reports whether a report kind is in the configured set.
func SectionEnabled(sections []string, name string) bool {
	for _, s := range sections {
		if s == name {
			return true
		}
	}
	return false
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideList(field *[]string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = nil
		for _, item := range strings.Split(val, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				*field = append(*field, item)
			}
		}
	}
}
