package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/polytechbd/examroutine/internal/i18n"
	"github.com/polytechbd/examroutine/internal/model"
)

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var rec model.ExamRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	rec, ok := model.Normalize(rec)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if user := model.UserFromContext(r.Context()); user != nil {
		rec.AddedBy = user.Username
	}

	id, err := h.store.InsertExam(rec)
	if err != nil {
		slog.Error("insert exam", "subject", rec.Subject, "error", err)
		writeError(w, r, http.StatusServiceUnavailable, "DataUnavailable")
		return
	}
	rec.ID = id

	slog.Info("exam created", "id", id, "subject", rec.Subject, "date", rec.ExamDate)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleUpdateExam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "examID")

	var rec model.ExamRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	rec, ok := model.Normalize(rec)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	rec.ID = id

	if err := h.store.UpdateExam(rec); err != nil {
		writeError(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}

	slog.Info("exam updated", "id", id, "subject", rec.Subject)
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "examID")

	if err := h.store.DeleteExam(id); err != nil {
		writeError(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}

	slog.Info("exam deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": appI18n.T(r.Context(), "ExamDeleted"),
	})
}
