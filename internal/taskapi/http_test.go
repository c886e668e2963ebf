package taskapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknest/internal/auth"
	"tasknest/internal/config"
	"tasknest/internal/store"
	"tasknest/internal/telemetry"
)

func newTestHandler() *Handler {
	limits := config.Limits{TitleMax: 100, DescriptionMax: 500, CommentMax: 200}
	return NewHandler(store.New(), telemetry.NewMemoryRepository(), limits)
}

func doAs(h http.HandlerFunc, userID, method, path string, body any) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req = req.WithContext(auth.ContextWithUser(req.Context(), auth.User{ID: userID, Email: userID + "@example.com"}))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func createTask(t *testing.T, h *Handler, userID, title string) int {
	t.Helper()
	rec := doAs(h.TasksRoot, userID, http.MethodPost, "/api/tasks", map[string]any{
		"title":       title,
		"description": "desc for " + title,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.ID
}

func TestTasksRoot_CreateAndList(t *testing.T) {
	h := newTestHandler()

	id := createTask(t, h, "alice", "first")
	assert.Equal(t, 1, id)

	rec := doAs(h.TasksRoot, "alice", http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0]["title"])
}

func TestTasksRoot_ValidationErrors(t *testing.T) {
	h := newTestHandler()

	cases := []map[string]any{
		{"title": "", "description": "ok"},
		{"title": "   ", "description": "ok"},
		{"title": "ok", "description": ""},
		{"title": strings.Repeat("a", 101), "description": "ok"},
		{"title": "ok", "description": strings.Repeat("b", 501)},
	}
	for _, in := range cases {
		rec := doAs(h.TasksRoot, "alice", http.MethodPost, "/api/tasks", in)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "input %v", in)
	}

	// nothing was stored
	rec := doAs(h.TaskCount, "alice", http.MethodGet, "/api/tasks/count", nil)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestTasksSub_ForeignTaskIs404(t *testing.T) {
	h := newTestHandler()
	id := createTask(t, h, "alice", "hers")
	path := "/api/tasks/" + strconv.Itoa(id)

	assert.Equal(t, http.StatusNotFound, doAs(h.TasksSub, "bob", http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, doAs(h.TasksSub, "bob", http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, doAs(h.TasksSub, "bob", http.MethodPost, path+"/toggle", nil).Code)
	assert.Equal(t, http.StatusNotFound, doAs(h.TasksSub, "bob", http.MethodPost, path+"/comments", map[string]any{"text": "hi"}).Code)

	// alice still sees it untouched
	rec := doAs(h.TasksSub, "alice", http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":false`)
}

func TestTasksSub_ToggleAndComments(t *testing.T) {
	h := newTestHandler()
	id := createTask(t, h, "alice", "flip")
	path := "/api/tasks/" + strconv.Itoa(id)

	rec := doAs(h.TasksSub, "alice", http.MethodPost, path+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":true`)

	rec = doAs(h.TasksSub, "alice", http.MethodPost, path+"/comments", map[string]any{"text": "note one"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doAs(h.TasksSub, "alice", http.MethodPost, path+"/comments", map[string]any{"text": "note two"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doAs(h.TasksSub, "alice", http.MethodGet, path+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["note one","note two"]`, rec.Body.String())

	rec = doAs(h.TasksSub, "alice", http.MethodPost, path+"/comments", map[string]any{"text": strings.Repeat("c", 201)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTasksByStatusAndClearCompleted(t *testing.T) {
	h := newTestHandler()

	done := createTask(t, h, "alice", "done soon")
	createTask(t, h, "alice", "stays active")
	doAs(h.TasksSub, "alice", http.MethodPost, "/api/tasks/"+strconv.Itoa(done)+"/toggle", nil)

	rec := doAs(h.TasksByStatus, "alice", http.MethodGet, "/api/tasks/status?completed=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "done soon", list[0]["title"])

	rec = doAs(h.TasksByStatus, "alice", http.MethodGet, "/api/tasks/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doAs(h.ClearCompleted, "alice", http.MethodPost, "/api/tasks/clear-completed", nil)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())

	rec = doAs(h.TaskCount, "alice", http.MethodGet, "/api/tasks/count", nil)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}

func TestMe(t *testing.T) {
	h := newTestHandler()
	rec := doAs(h.Me, "alice", http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"alice","email":"alice@example.com"}`, rec.Body.String())
}

func TestStats_CountsCallerEventsOnly(t *testing.T) {
	h := newTestHandler()
	createTask(t, h, "alice", "a1")
	createTask(t, h, "alice", "a2")
	createTask(t, h, "bob", "b1")

	rec := doAs(h.Stats, "alice", http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TasksCreated int `json:"tasks_created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TasksCreated)
}
