package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sveder/awesome-web-dev-baseline/app/database"
	"github.com/Sveder/awesome-web-dev-baseline/app/pipeline"
	"github.com/Sveder/awesome-web-dev-baseline/app/tasks"
)

// MockRunStore implements database.RunStore for testing
type MockRunStore struct {
	runs      []database.Run
	added     []database.AddedTool
	err       error
	lastLimit int
}

func (m *MockRunStore) SaveRun(ctx context.Context, summary *pipeline.Summary) error {
	return m.err
}

func (m *MockRunStore) ListRuns(ctx context.Context, limit int) ([]database.Run, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *MockRunStore) GetRun(ctx context.Context, id string) (*database.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, nil
}

func (m *MockRunStore) GetRunCount(ctx context.Context) (int, error) {
	return len(m.runs), m.err
}

func (m *MockRunStore) ListAddedTools(ctx context.Context, limit int) ([]database.AddedTool, error) {
	m.lastLimit = limit
	return m.added, m.err
}

// MockScheduler implements tasks.TaskSchedulerInterface for testing
type MockScheduler struct {
	triggers []string
	err      error
}

func (m *MockScheduler) Start() error                               { return nil }
func (m *MockScheduler) Stop()                                      {}
func (m *MockScheduler) EnqueueTask(task tasks.TaskInterface) error { return m.err }

func (m *MockScheduler) Trigger(trigger string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.triggers = append(m.triggers, trigger)
	return "task-1", nil
}

const testDocument = `# Awesome

## CSS

- [Open Props](https://open-props.style) - CSS custom properties.

## Testing

- [Playwright](https://playwright.dev) - Browser testing.
`

func setupTestServer(t *testing.T, store database.RunStore, scheduler tasks.TaskSchedulerInterface, apiKey string) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "README.md")
	if err := os.WriteFile(path, []byte(testDocument), 0o644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	return NewServer(NewHandler(store, scheduler, path), apiKey)
}

func testRuns() []database.Run {
	started := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	return []database.Run{
		{ID: "run-2", StartedAt: started.Add(24 * time.Hour), Posts: 4, Added: 1},
		{ID: "run-1", StartedAt: started, Posts: 3, Decisions: []database.Decision{
			{Position: 0, Name: "Open Props", Category: "CSS", Verdict: "duplicate"},
		}},
	}
}

func serve(handler http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockRunStore{runs: testRuns()}, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["known_tools"] != float64(2) {
		t.Errorf("Expected 2 known tools, got %v", body["known_tools"])
	}
	if body["runs"] != float64(2) {
		t.Errorf("Expected 2 runs, got %v", body["runs"])
	}
}

func TestHealthWithoutHistory(t *testing.T) {
	server := setupTestServer(t, nil, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if _, ok := decodeBody(t, w)["runs"]; ok {
		t.Error("Expected no run count without run history")
	}
}

func TestListTools(t *testing.T) {
	server := setupTestServer(t, nil, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/tools", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["total"] != float64(2) {
		t.Errorf("Expected 2 tools, got %v", body["total"])
	}
	sections, _ := body["sections"].([]interface{})
	if len(sections) != 2 || sections[0] != "CSS" {
		t.Errorf("Expected sections [CSS Testing], got %v", body["sections"])
	}
}

func TestToolsFeed(t *testing.T) {
	store := &MockRunStore{added: []database.AddedTool{
		{
			RunID:   "run-2",
			AddedAt: time.Date(2025, 3, 2, 6, 1, 30, 0, time.UTC),
			Decision: database.Decision{
				Position:    0,
				Name:        "ExampleLint",
				Category:    "Linting & Code Quality",
				URL:         "https://examplelint.dev",
				Description: "Flags features outside Baseline.",
				Source:      "https://blog.example.com/a",
				Verdict:     "accepted",
			},
		},
	}}
	server := setupTestServer(t, store, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/tools/feed.xml", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/rss+xml") {
		t.Errorf("Expected RSS content type, got %s", w.Header().Get("Content-Type"))
	}
	if store.lastLimit != maxFeedItems {
		t.Errorf("Expected limit %d, got %d", maxFeedItems, store.lastLimit)
	}

	body := w.Body.String()
	for _, want := range []string{
		"<title>ExampleLint</title>",
		"<link>https://examplelint.dev</link>",
		`<guid isPermaLink="false">run-2:0</guid>`,
		`<atom:link href="http://example.com/tools/feed.xml"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected feed to contain %q, got:\n%s", want, body)
		}
	}

	server = setupTestServer(t, nil, &MockScheduler{}, "")
	if w := serve(server, http.MethodGet, "/tools/feed.xml", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 without run history, got %d", w.Code)
	}
}

func TestListRuns(t *testing.T) {
	store := &MockRunStore{runs: testRuns()}
	server := setupTestServer(t, store, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/runs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if store.lastLimit != defaultRunLimit {
		t.Errorf("Expected default limit %d, got %d", defaultRunLimit, store.lastLimit)
	}
	if decodeBody(t, w)["total"] != float64(2) {
		t.Errorf("Expected 2 runs, got %s", w.Body.String())
	}

	w = serve(server, http.MethodGet, "/runs?limit=1", nil)
	if decodeBody(t, w)["total"] != float64(1) {
		t.Errorf("Expected 1 run, got %s", w.Body.String())
	}

	serve(server, http.MethodGet, "/runs?limit=5000", nil)
	if store.lastLimit != maxRunLimit {
		t.Errorf("Expected limit capped at %d, got %d", maxRunLimit, store.lastLimit)
	}

	w = serve(server, http.MethodGet, "/runs?limit=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid limit, got %d", w.Code)
	}
}

func TestListRunsErrors(t *testing.T) {
	server := setupTestServer(t, &MockRunStore{err: errors.New("disk I/O error")}, &MockScheduler{}, "")
	if w := serve(server, http.MethodGet, "/runs", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	server = setupTestServer(t, nil, &MockScheduler{}, "")
	if w := serve(server, http.MethodGet, "/runs", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 without run history, got %d", w.Code)
	}
}

func TestGetRun(t *testing.T) {
	server := setupTestServer(t, &MockRunStore{runs: testRuns()}, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/runs/run-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var run database.Run
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("Failed to decode run: %v", err)
	}
	if run.ID != "run-1" || len(run.Decisions) != 1 {
		t.Errorf("Expected run-1 with 1 decision, got %+v", run)
	}

	w = serve(server, http.MethodGet, "/runs/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestTriggerRunRequiresKey(t *testing.T) {
	scheduler := &MockScheduler{}
	server := setupTestServer(t, nil, scheduler, "secret")

	if w := serve(server, http.MethodPost, "/api/runs", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without key, got %d", w.Code)
	}
	if w := serve(server, http.MethodPost, "/api/runs", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for wrong key, got %d", w.Code)
	}

	w := serve(server, http.MethodPost, "/api/runs", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}

	w = serve(server, http.MethodPost, "/api/runs", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202 with bearer token, got %d", w.Code)
	}

	if len(scheduler.triggers) != 2 || scheduler.triggers[0] != tasks.TriggerAPI {
		t.Errorf("Expected 2 API triggers, got %v", scheduler.triggers)
	}
}

func TestTriggerRunQueueFull(t *testing.T) {
	server := setupTestServer(t, nil, &MockScheduler{err: errors.New("task queue is full")}, "secret")

	w := serve(server, http.MethodPost, "/api/runs", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestTriggerRunDisabledWithoutKey(t *testing.T) {
	server := setupTestServer(t, nil, &MockScheduler{}, "")

	if w := serve(server, http.MethodPost, "/api/runs", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 when API is disabled, got %d", w.Code)
	}
}

func TestRootEndpoint(t *testing.T) {
	server := setupTestServer(t, nil, &MockScheduler{}, "secret")

	w := serve(server, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	endpoints, _ := decodeBody(t, w)["endpoints"].(map[string]interface{})
	if _, ok := endpoints["trigger"]; !ok {
		t.Errorf("Expected trigger endpoint to be listed, got %v", endpoints)
	}
}
