package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civicbriefs/planner/internal/planner"
)

const defaultQuestionsPerSection = 15

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	engine *planner.Engine
}

// New creates a new Handler.
func New(e *planner.Engine) *Handler {
	return &Handler{engine: e}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/tests", h.handlePrepareTest)
	r.Post("/api/tests/evaluate", h.handleEvaluateTest)
	r.Post("/api/plan", h.handlePlan)
}

type prepareTestRequest struct {
	QuestionsPerSection int `json:"questions_per_section"`
}

func (h *Handler) handlePrepareTest(w http.ResponseWriter, r *http.Request) {
	req := prepareTestRequest{QuestionsPerSection: defaultQuestionsPerSection}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	test, err := h.engine.PrepareTest(r.Context(), req.QuestionsPerSection)
	if err != nil {
		if errors.Is(err, planner.ErrNonPositiveCount) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		slog.Error("test preparation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, test)
}

type evaluateTestRequest struct {
	UserID  string            `json:"user_id"`
	Answers map[string]string `json:"answers"`
}

func (h *Handler) handleEvaluateTest(w http.ResponseWriter, r *http.Request) {
	var req evaluateTestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.engine.EvaluateTest(r.Context(), req.UserID, req.Answers)
	if err != nil {
		var unknown *planner.UnknownQuestionsError
		switch {
		case errors.Is(err, planner.ErrEmptyAnswers), errors.As(err, &unknown):
			writeError(w, http.StatusBadRequest, err)
		default:
			slog.Error("test evaluation failed", "error", err)
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type planRequest struct {
	Performance map[string]float64 `json:"performance"`
	Email       string             `json:"email"`
	UserID      string             `json:"user_id"`
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	plan := h.engine.GeneratePlan(r.Context(), req.Performance, req.Email, req.UserID)
	writeJSON(w, http.StatusOK, plan)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
