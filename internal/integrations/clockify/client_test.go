package clockify

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sprintbot/internal/domain"
)

func TestUsersSkipsIncompleteRecords(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspaces/ws1/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotKey = r.Header.Get("X-Api-Key")
		fmt.Fprint(w, `[{"id":"u1","name":"Alice"},{"id":"","name":"Ghost"},{"id":"u3","name":""},{"id":"u2","name":"Bob"}]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key123")
	users, err := client.Users("ws1")
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if gotKey != "key123" {
		t.Fatalf("api key header not set, got %q", gotKey)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 complete users, got %d: %+v", len(users), users)
	}
	if users[0].Name != "Alice" || users[1].Name != "Bob" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestTimeEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspaces/ws1/user/u1/time-entries" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("start") != "2026-03-01T00:00:00Z" || q.Get("end") != "2026-03-08T00:00:00Z" {
			t.Errorf("unexpected window start=%q end=%q", q.Get("start"), q.Get("end"))
		}
		if q.Get("hydrated") != "true" {
			t.Errorf("expected hydrated=true")
		}
		fmt.Fprint(w, `[
			{"timeInterval":{"start":"2026-03-02T09:00:00Z","duration":"PT2H30M"},
				"project":{"name":"API"},"task":{"name":"Review"}},
			{"timeInterval":{"start":"","duration":"PT1H"}},
			{"timeInterval":{"start":"2026-03-03T10:00:00Z","duration":"PT1H"}}]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key123")
	user := domain.User{ID: "u1", Name: "Alice"}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	entries, err := client.TimeEntries("ws1", user, start, end)
	if err != nil {
		t.Fatalf("TimeEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after skipping the startless one, got %d", len(entries))
	}
	first := entries[0]
	if first.UserName != "Alice" || first.Duration != "PT2H30M" {
		t.Fatalf("unexpected entry %+v", first)
	}
	if first.ProjectName != "API" || first.TaskName != "Review" {
		t.Fatalf("project/task not mapped: %+v", first)
	}
	if entries[1].ProjectName != "" || entries[1].TaskName != "" {
		t.Fatalf("missing project/task should map to empty, got %+v", entries[1])
	}
}

func TestTimeEntriesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"invalid api key"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad")
	_, err := client.Users("ws1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("error should carry status and body, got %v", err)
	}
}
