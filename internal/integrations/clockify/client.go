package clockify

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sprintbot/internal/domain"
)

const defaultBaseURL = "https://api.clockify.me/api/v1"

// Client talks to the Clockify REST API with an API key header.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   http.DefaultClient,
	}
}

type userItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type timeEntryItem struct {
	TimeInterval struct {
		Start    string `json:"start"`
		Duration string `json:"duration"`
	} `json:"timeInterval"`
	Project *struct {
		Name string `json:"name"`
	} `json:"project"`
	Task *struct {
		Name string `json:"name"`
	} `json:"task"`
}

// Users lists the members of a workspace. Entries with a missing id or name
// are logged and dropped rather than failing the batch.
// Ref: GET /workspaces/{workspaceId}/users
func (c *Client) Users(workspaceID string) ([]domain.User, error) {
	var items []userItem
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/users"
	if err := c.getJSON(path, &items); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Name == "" {
			log.Printf("clockify user skipped: incomplete record id=%q name=%q", item.ID, item.Name)
			continue
		}
		users = append(users, domain.User{ID: item.ID, Name: item.Name})
	}
	return users, nil
}

// TimeEntries returns a user's time entries within [start, end). The user
// name on each returned entry is filled in by the caller-side user record.
// Entries without a start timestamp are logged and dropped.
// Ref: GET /workspaces/{workspaceId}/user/{userId}/time-entries
func (c *Client) TimeEntries(workspaceID string, user domain.User, start, end time.Time) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format("2006-01-02T15:04:05")+"Z")
	q.Set("end", end.UTC().Format("2006-01-02T15:04:05")+"Z")
	q.Set("hydrated", "true")

	var items []timeEntryItem
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/user/" + url.PathEscape(user.ID) + "/time-entries?" + q.Encode()
	if err := c.getJSON(path, &items); err != nil {
		return nil, fmt.Errorf("listing time entries for %s: %w", user.ID, err)
	}

	entries := make([]domain.TimeEntry, 0, len(items))
	for _, item := range items {
		if item.TimeInterval.Start == "" {
			log.Printf("clockify time entry skipped: missing start user=%s", user.Name)
			continue
		}
		startAt, err := time.Parse(time.RFC3339, item.TimeInterval.Start)
		if err != nil {
			log.Printf("clockify time entry skipped: bad start %q user=%s: %v", item.TimeInterval.Start, user.Name, err)
			continue
		}
		entry := domain.TimeEntry{
			UserID:   user.ID,
			UserName: user.Name,
			Start:    startAt,
			Duration: item.TimeInterval.Duration,
		}
		if item.Project != nil {
			entry.ProjectName = item.Project.Name
		}
		if item.Task != nil {
			entry.TaskName = item.Task.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) getJSON(path string, out any) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("clockify API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
