// Package handler exposes the JSON API consumed by the routine page: the
// public routine and chat endpoints, and the authenticated admin surface.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/polytechbd/examroutine/internal/assistant"
	appI18n "github.com/polytechbd/examroutine/internal/i18n"
	"github.com/polytechbd/examroutine/internal/model"
	"github.com/polytechbd/examroutine/internal/reminder"
	"github.com/polytechbd/examroutine/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	assistant *assistant.Assistant
	config    model.AppConfig

	mu       sync.Mutex
	sessions map[string]*chatSession
}

// chatSession pairs a conversation context with the mutex that serializes
// utterances against it. One utterance at a time per context; the lock, not
// the assistant, enforces that.
type chatSession struct {
	mu   sync.Mutex
	conv *assistant.Context
}

// New creates a new Handler.
func New(s *store.Store, a *assistant.Assistant, cfg model.AppConfig) *Handler {
	return &Handler{
		store:     s,
		assistant: a,
		config:    cfg,
		sessions:  make(map[string]*chatSession),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/exams", h.handleListExams)
	r.Get("/api/exams/{examID}", h.handleGetExam)
	r.Get("/api/subjects", h.handleListSubjects)
	r.Get("/api/departments", h.handleListDepartments)
	r.Get("/api/semesters", h.handleListSemesters)
	r.Get("/api/stats", h.handleStats)
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/exams/{examID}/reminders", h.handleScheduleReminders)

	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	r.Route("/api/admin", func(admin chi.Router) {
		admin.Use(h.requireAuth)
		admin.Use(requireRole(model.UserRoleAdmin))
		admin.Post("/exams", h.handleCreateExam)
		admin.Put("/exams/{examID}", h.handleUpdateExam)
		admin.Delete("/exams/{examID}", h.handleDeleteExam)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, map[string]string{"error": appI18n.T(r.Context(), msgID)})
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		slog.Error("list exams", "error", err)
		writeError(w, r, http.StatusServiceUnavailable, "DataUnavailable")
		return
	}

	// Optional filters reuse the assistant's composer so the page and the
	// chat answer identical questions identically.
	cond := model.Conditions{
		Department: r.URL.Query().Get("department"),
		Semester:   r.URL.Query().Get("semester"),
		DateFilter: model.DateFilter(r.URL.Query().Get("dateFilter")),
	}
	if cond.HasAny() {
		exams = assistant.Filter(exams, cond, model.DateOf(time.Now()))
	}
	assistant.SortChronological(exams)

	if exams == nil {
		exams = []model.ExamRecord{}
	}
	writeJSON(w, http.StatusOK, exams)
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	exam, err := h.store.GetExam(chi.URLParam(r, "examID"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	h.writeDistinct(w, r, h.store.ListDistinctSubjects)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	h.writeDistinct(w, r, h.store.ListDistinctDepartments)
}

func (h *Handler) handleListSemesters(w http.ResponseWriter, r *http.Request) {
	h.writeDistinct(w, r, h.store.ListDistinctSemesters)
}

func (h *Handler) writeDistinct(w http.ResponseWriter, r *http.Request, list func() ([]string, error)) {
	values, err := list()
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "DataUnavailable")
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, values)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "DataUnavailable")
		return
	}
	nowDate := model.DateOf(time.Now())
	stats := struct {
		Total     int `json:"total"`
		Upcoming  int `json:"upcoming"`
		Today     int `json:"today"`
		Completed int `json:"completed"`
	}{Total: len(exams)}
	for _, e := range exams {
		switch {
		case e.ExamDate == nowDate:
			stats.Today++
			stats.Upcoming++
		case e.ExamDate > nowDate:
			stats.Upcoming++
		default:
			stats.Completed++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, r, http.StatusBadRequest, "EmptyMessage")
		return
	}

	id, sess := h.session(req.SessionID)

	// Serialize utterances per session; the snapshot is taken once inside
	// the lock so the context always reflects the last completed query.
	sess.mu.Lock()
	defer sess.mu.Unlock()

	records, err := h.store.ListExams()
	if err != nil {
		slog.Error("fetch exam snapshot", "error", err)
		writeJSON(w, http.StatusOK, chatResponse{SessionID: id, Reply: assistant.UnavailableReply()})
		return
	}

	reply := h.assistant.ProcessUtterance(req.Message, sess.conv, records, time.Now())
	writeJSON(w, http.StatusOK, chatResponse{SessionID: id, Reply: reply})
}

// session returns the existing chat session for id, or a fresh one (with a
// newly generated id) when id is empty or unknown.
func (h *Handler) session(id string) (string, *chatSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id != "" {
		if sess, ok := h.sessions[id]; ok {
			return id, sess
		}
	}
	id = newSessionID()
	sess := &chatSession{conv: assistant.NewContext()}
	h.sessions[id] = sess
	return id, sess
}

func (h *Handler) handleScheduleReminders(w http.ResponseWriter, r *http.Request) {
	exam, err := h.store.GetExam(chi.URLParam(r, "examID"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}

	reminders, err := reminder.Compute(exam, time.Now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	for _, rem := range reminders {
		if _, err := h.store.InsertReminder(rem); err != nil {
			slog.Error("insert reminder", "exam_id", exam.ID, "error", err)
			writeError(w, r, http.StatusServiceUnavailable, "DataUnavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scheduled": len(reminders),
		"message":   appI18n.Tp(r.Context(), "ReminderScheduled", len(reminders)),
	})
}
