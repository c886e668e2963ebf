package taskapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tasknest/internal/auth"
	"tasknest/internal/config"
	"tasknest/internal/store"
	"tasknest/internal/telemetry"
)

// Handler is the boundary layer in front of the store. It resolves the
// verified caller identity from the request context, rejects structurally
// invalid input against the configured limits, and translates the store's
// boolean not-found results into 404s. The store itself never re-validates.
type Handler struct {
	store  *store.Store
	events *telemetry.MemoryRepository
	limits config.Limits
}

func NewHandler(st *store.Store, events *telemetry.MemoryRepository, limits config.Limits) *Handler {
	return &Handler{store: st, events: events, limits: limits}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func ownerFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return u.ID, true
}

func validateText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s exceeds %d characters", field, max)
	}
	return nil
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.List(owner))

	case http.MethodPost:
		var in struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validateText("title", in.Title, h.limits.TitleMax); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validateText("description", in.Description, h.limits.DescriptionMax); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		t := h.store.Add(owner, in.Title, in.Description)
		h.events.Record(owner, telemetry.EventTaskCreated, t.ID, 0)
		writeJSON(w, http.StatusCreated, t)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/tasks/{id}[/toggle|/comments]
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	parts := strings.Split(tail, "/")
	id, err := strconv.Atoi(parts[0])
	if err != nil || id <= 0 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case len(parts) == 1:
		h.taskByID(w, r, owner, id)
	case len(parts) == 2 && parts[1] == "toggle":
		h.toggle(w, r, owner, id)
	case len(parts) == 2 && parts[1] == "comments":
		h.comments(w, r, owner, id)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) taskByID(w http.ResponseWriter, r *http.Request, owner string, id int) {
	switch r.Method {
	case http.MethodGet:
		t, ok := h.store.Get(owner, id)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		if !h.store.Delete(owner, id) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		h.events.Record(owner, telemetry.EventTaskDeleted, id, 0)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, owner string, id int) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.store.Toggle(owner, id) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	t, _ := h.store.Get(owner, id)
	if t.Completed {
		h.events.Record(owner, telemetry.EventTaskCompleted, id, 0)
	} else {
		h.events.Record(owner, telemetry.EventTaskReopened, id, 0)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request, owner string, id int) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.Comments(owner, id))

	case http.MethodPost:
		var in struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validateText("text", in.Text, h.limits.CommentMax); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		if !h.store.AddComment(owner, id, in.Text) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		h.events.Record(owner, telemetry.EventCommentAdded, id, 0)
		writeJSON(w, http.StatusCreated, h.store.Comments(owner, id))

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /api/tasks/count
func (h *Handler) TaskCount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": h.store.Count(owner)})
}

// GET /api/tasks/status?completed=true|false
func (h *Handler) TasksByStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	completed, err := strconv.ParseBool(r.URL.Query().Get("completed"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, `completed must be "true" or "false"`)
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListByStatus(owner, completed))
}

// POST /api/tasks/clear-completed
func (h *Handler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	removed := h.store.ClearCompleted(owner)
	if removed > 0 {
		h.events.Record(owner, telemetry.EventCompletedCleared, 0, removed)
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "email": u.Email})
}

// GET /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	since := time.Now().UTC().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		since = parsed
	}
	writeJSON(w, http.StatusOK, telemetry.CalculateStats(h.events.EventsForOwner(owner, since), since))
}
