package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/service"
	platformlogging "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/logging"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/problems"
)

const (
	problemTypeValidation = "https://teacher-dashboard.edyou.com/problems/validation-error"
	problemTypeInternal   = "https://teacher-dashboard.edyou.com/problems/internal-error"
)

// Handler exposes the lesson provisioning endpoint.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("lessons service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

type processAllRequest struct {
	Subject     string         `json:"subject"`
	TenantEmail string         `json:"tenantEmail"`
	TenantName  string         `json:"tenantName"`
	Body        map[string]any `json:"body"`
}

type processAllResponse struct {
	Status            string                      `json:"status"`
	LessonPlannerUUID string                      `json:"lesson_planner_UUID"`
	SubjectID         string                      `json:"subject_id,omitempty"`
	AssignedStudents  []service.AssignmentOutcome `json:"assigned_students"`
	NotFoundStudents  []string                    `json:"not_found_students"`
	FailedAssignments []service.AssignmentOutcome `json:"failed_assignments"`
	StepErrors        []service.StepError         `json:"step_errors,omitempty"`
}

// ProcessAll implements POST /process_all. The request body doubles as the
// lesson planner payload, so it is decoded loosely and the known fields are
// picked out of it.
func (h *Handler) ProcessAll(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var req processAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
		return
	}
	if req.Subject == "" || req.Body == nil {
		problems.Write(w, problems.New(
			"Invalid request body",
			"subject and body are required",
			problemTypeValidation, http.StatusBadRequest,
		))
		return
	}

	lessonUUID := bodyString(req.Body, "lesson_planner_UUID")
	if _, err := uuid.Parse(lessonUUID); err != nil {
		problems.Write(w, problems.New(
			"Invalid request body",
			"body.lesson_planner_UUID must be a UUID",
			problemTypeValidation, http.StatusBadRequest,
		))
		return
	}

	input := service.ProvisionInput{
		Subject:       req.Subject,
		TenantEmail:   req.TenantEmail,
		TenantName:    req.TenantName,
		LessonUUID:    lessonUUID,
		Grade:         bodyString(req.Body, "grade"),
		Section:       bodyString(req.Body, "section"),
		Period:        bodyString(req.Body, "period"),
		TeacherID:     bodyString(req.Body, "teacher_id"),
		StudentEmails: bodyStrings(req.Body, "student"),
		Payload:       req.Body,
	}

	report, err := h.svc.Provision(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
			return
		}
		logger.Error("lesson provisioning failed", zap.Error(err))
		problems.Write(w, problems.New("Internal error", "lesson record could not be created", problemTypeInternal, http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, processAllResponse{
		Status:            "success",
		LessonPlannerUUID: report.LessonUUID,
		SubjectID:         report.SubjectID,
		AssignedStudents:  emptyOutcomes(report.Assigned),
		NotFoundStudents:  emptyIfNil(report.NotFound),
		FailedAssignments: emptyOutcomes(report.Failed),
		StepErrors:        report.StepErrors,
	})
}

func bodyString(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func bodyStrings(body map[string]any, key string) []string {
	raw, ok := body[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
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

func emptyOutcomes(s []service.AssignmentOutcome) []service.AssignmentOutcome {
	if s == nil {
		return []service.AssignmentOutcome{}
	}
	return s
}
