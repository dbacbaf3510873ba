package jira

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"sprintbot/internal/domain"
)

const pageSize = 50

// Client talks to the Jira REST and Agile APIs with basic auth.
type Client struct {
	baseURL  string
	username string
	apiToken string
	httpc    *http.Client
}

func NewClient(baseURL, username, apiToken string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		apiToken: apiToken,
		httpc:    http.DefaultClient,
	}
}

type boardPage struct {
	IsLast bool `json:"isLast"`
	Values []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Location struct {
			ProjectKey string `json:"projectKey"`
		} `json:"location"`
	} `json:"values"`
}

type sprintPage struct {
	IsLast bool `json:"isLast"`
	Values []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		State     string `json:"state"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"values"`
}

type searchResponse struct {
	Total  int `json:"total"`
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
			Status  struct {
				Name string `json:"name"`
			} `json:"status"`
			Assignee *struct {
				DisplayName string `json:"displayName"`
			} `json:"assignee"`
			Created string `json:"created"`
			Updated string `json:"updated"`
			DueDate string `json:"duedate"`
		} `json:"fields"`
	} `json:"issues"`
}

type commentsResponse struct {
	Comments []struct {
		Body string `json:"body"`
	} `json:"comments"`
}

// Boards lists every board visible to the configured user.
// Ref: GET /rest/agile/1.0/board
func (c *Client) Boards() ([]domain.Board, error) {
	var boards []domain.Board
	startAt := 0
	for {
		var page boardPage
		path := fmt.Sprintf("/rest/agile/1.0/board?startAt=%d&maxResults=%d", startAt, pageSize)
		if err := c.getJSON(path, &page); err != nil {
			return nil, fmt.Errorf("listing boards: %w", err)
		}
		for _, b := range page.Values {
			boards = append(boards, domain.Board{ID: b.ID, Name: b.Name, ProjectKey: b.Location.ProjectKey})
		}
		if page.IsLast || len(page.Values) == 0 {
			break
		}
		startAt += len(page.Values)
	}
	return boards, nil
}

// Sprints lists the sprints of a board across all states.
// Ref: GET /rest/agile/1.0/board/{boardId}/sprint
func (c *Client) Sprints(boardID int) ([]domain.Sprint, error) {
	var sprints []domain.Sprint
	startAt := 0
	for {
		var page sprintPage
		path := fmt.Sprintf("/rest/agile/1.0/board/%d/sprint?startAt=%d&maxResults=%d", boardID, startAt, pageSize)
		if err := c.getJSON(path, &page); err != nil {
			return nil, fmt.Errorf("listing sprints for board %d: %w", boardID, err)
		}
		for _, s := range page.Values {
			sprints = append(sprints, domain.Sprint{
				ID:        s.ID,
				Name:      s.Name,
				State:     s.State,
				StartDate: s.StartDate,
				EndDate:   s.EndDate,
			})
		}
		if page.IsLast || len(page.Values) == 0 {
			break
		}
		startAt += len(page.Values)
	}
	return sprints, nil
}

// SearchIssues runs a JQL query and returns the matching issues.
// Ref: GET /rest/api/2/search
func (c *Client) SearchIssues(jql string) ([]domain.Issue, error) {
	var issues []domain.Issue
	startAt := 0
	for {
		var page searchResponse
		path := fmt.Sprintf("/rest/api/2/search?jql=%s&startAt=%d&maxResults=%d",
			url.QueryEscape(jql), startAt, pageSize)
		if err := c.getJSON(path, &page); err != nil {
			return nil, fmt.Errorf("searching issues jql=%q: %w", jql, err)
		}
		for _, item := range page.Issues {
			issue := domain.Issue{
				Key:         item.Key,
				Summary:     item.Fields.Summary,
				Status:      item.Fields.Status.Name,
				CreatedDate: datePart(item.Fields.Created),
				UpdatedDate: datePart(item.Fields.Updated),
				DueDate:     item.Fields.DueDate,
			}
			if item.Fields.Assignee != nil {
				issue.Assignee = item.Fields.Assignee.DisplayName
			}
			issues = append(issues, issue)
		}
		startAt += len(page.Issues)
		if startAt >= page.Total || len(page.Issues) == 0 {
			break
		}
	}
	return issues, nil
}

// Comments returns the raw comment bodies of an issue in order.
// Ref: GET /rest/api/2/issue/{key}/comment
func (c *Client) Comments(issueKey string) ([]string, error) {
	var page commentsResponse
	path := "/rest/api/2/issue/" + url.PathEscape(issueKey) + "/comment"
	if err := c.getJSON(path, &page); err != nil {
		return nil, fmt.Errorf("fetching comments for %s: %w", issueKey, err)
	}
	bodies := make([]string, 0, len(page.Comments))
	for _, comment := range page.Comments {
		bodies = append(bodies, comment.Body)
	}
	return bodies, nil
}

func (c *Client) getJSON(path string, out any) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")

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
		return fmt.Errorf("jira API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// datePart keeps the yyyy-mm-dd prefix of a Jira ISO timestamp.
func datePart(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
