package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/questions/be/service"
	platformlogging "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/logging"
)

// Handler exposes the AI question generation endpoints. These endpoints keep
// a success-flag response contract on errors instead of problem documents
// because the quiz editor consumes the flag directly.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("questions service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

type generateResponse struct {
	Success  bool                  `json:"success"`
	Question *service.QuizQuestion `json:"question,omitempty"`
}

type regenerateResponse struct {
	Success             bool                  `json:"success"`
	RegeneratedQuestion *service.QuizQuestion `json:"regenerated_question,omitempty"`
	ChangesSummary      []string              `json:"changes_summary,omitempty"`
}

type errorResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
}

// GenerateQuestion implements POST /api/ai/generate-question.
func (h *Handler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var req service.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{ErrorMessage: err.Error()})
		return
	}

	question, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{ErrorMessage: err.Error()})
			return
		}
		logger.Error("question generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{ErrorMessage: "question generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, Question: &question})
}

// RegenerateQuestion implements POST /api/ai/regenerate-question.
func (h *Handler) RegenerateQuestion(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var req service.RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{ErrorMessage: err.Error()})
		return
	}

	question, changes, err := h.svc.Regenerate(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{ErrorMessage: err.Error()})
			return
		}
		logger.Error("question regeneration failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{ErrorMessage: "question regeneration failed"})
		return
	}

	writeJSON(w, http.StatusOK, regenerateResponse{
		Success:             true,
		RegeneratedQuestion: &question,
		ChangesSummary:      changes,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
