package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/service"
	platformlogging "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/logging"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/problems"
)

const (
	problemTypeValidation = "https://teacher-dashboard.edyou.com/problems/validation-error"
	problemTypeInternal   = "https://teacher-dashboard.edyou.com/problems/internal-error"
)

// Handler exposes the student subject-list linking endpoint.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("students service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

type updateSubjectsRequest struct {
	Body struct {
		LessonPlannerUUID string   `json:"lesson_planner_UUID"`
		Student           []string `json:"student"`
	} `json:"body"`
}

type updateSubjectsResponse struct {
	Status            string   `json:"status"`
	LessonPlannerUUID string   `json:"lesson_planner_UUID"`
	UpdatedStudents   []string `json:"updated_students"`
	AlreadyLinked     []string `json:"already_linked"`
	NotFound          []string `json:"not_found"`
}

// UpdateStudentSubjects implements POST /update_student_subjects.
func (h *Handler) UpdateStudentSubjects(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var req updateSubjectsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
		return
	}
	if req.Body.LessonPlannerUUID == "" || len(req.Body.Student) == 0 {
		problems.Write(w, problems.New(
			"Invalid request body",
			"body.lesson_planner_UUID and body.student[] are required",
			problemTypeValidation, http.StatusBadRequest,
		))
		return
	}
	if _, err := uuid.Parse(req.Body.LessonPlannerUUID); err != nil {
		problems.Write(w, problems.New(
			"Invalid request body",
			"body.lesson_planner_UUID must be a UUID",
			problemTypeValidation, http.StatusBadRequest,
		))
		return
	}

	report, err := h.svc.LinkAll(r.Context(), req.Body.Student, req.Body.LessonPlannerUUID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
			return
		}
		logger.Error("update student subjects failed", zap.Error(err))
		problems.Write(w, problems.New("Internal error", "internal error", problemTypeInternal, http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, updateSubjectsResponse{
		Status:            "success",
		LessonPlannerUUID: report.LessonUUID,
		UpdatedStudents:   emptyIfNil(report.Updated),
		AlreadyLinked:     emptyIfNil(report.AlreadyLinked),
		NotFound:          emptyIfNil(report.NotFound),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
