package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
	platformlogging "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/logging"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/problems"
)

const (
	problemTypeValidation = "https://teacher-dashboard.edyou.com/problems/validation-error"
	problemTypeNotFound   = "https://teacher-dashboard.edyou.com/problems/not-found"
	problemTypeUpstream   = "https://teacher-dashboard.edyou.com/problems/upstream-error"
	problemTypeInternal   = "https://teacher-dashboard.edyou.com/problems/internal-error"
)

// Handler exposes the generation endpoints.
type Handler struct {
	series  *service.SeriesWorkflow
	courses *service.CourseWorkflow
	logger  *zap.Logger
}

// New constructs a Handler instance.
func New(series *service.SeriesWorkflow, courses *service.CourseWorkflow, logger *zap.Logger) *Handler {
	if series == nil {
		panic("series workflow is required")
	}
	if courses == nil {
		panic("course workflow is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{series: series, courses: courses, logger: logger}
}

// GenerateITP implements POST /generate_itp. The request body is forwarded
// to the series generator as-is; user_id and pre_defined additionally steer
// which job store the poll loop reads.
func (h *Handler) GenerateITP(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
		return
	}

	predefined := true
	if v, ok := payload["pre_defined"].(bool); ok {
		predefined = v
	}
	userEmail, _ := payload["user_id"].(string)

	res, err := h.series.DispatchAndPoll(r.Context(), service.DispatchRequest{
		Payload:    payload,
		UserEmail:  userEmail,
		Predefined: predefined,
	})
	if err != nil {
		h.writeSeriesError(w, logger, err)
		return
	}

	switch res.Outcome {
	case service.OutcomeAlreadyDone:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"body":       res.Body,
			"statusCode": res.StatusCode,
		})
	case service.OutcomeDone:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "series generated successfully",
			"data":    map[string]any{"id": res.JobID, "series_title": res.Title},
		})
	case service.OutcomeTimeout:
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":  "timeout",
			"message": "series generation still in progress",
			"id":      res.JobID,
		})
	default:
		if res.StatusCode == http.StatusOK {
			writeJSON(w, http.StatusOK, map[string]any{
				"body":       res.Body,
				"statusCode": res.StatusCode,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "unexpected initialize response",
			"response": map[string]any{
				"statusCode": res.StatusCode,
				"body":       res.Body,
			},
		})
	}
}

func (h *Handler) writeSeriesError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
	case errors.Is(err, service.ErrJobNotFound):
		problems.Write(w, problems.New("Job not found", err.Error(), problemTypeNotFound, http.StatusNotFound))
	case errors.Is(err, service.ErrJobCorrupted):
		logger.Error("job record corrupted", zap.Error(err))
		problems.Write(w, problems.New("Job record corrupted", err.Error(), problemTypeInternal, http.StatusInternalServerError))
	default:
		logger.Error("series generation failed", zap.Error(err))
		problems.Write(w, problems.New("Internal error", "series generation failed", problemTypeInternal, http.StatusInternalServerError))
	}
}

type generateCourseRequest struct {
	SubjectID   string `json:"subject_id"`
	TopicID     string `json:"topic_id"`
	TenantEmail string `json:"tenantEmail"`
	Topic       string `json:"topic"`
	Audience    string `json:"audience"`
	CourseUUID  string `json:"icp_UUID"`
	Description string `json:"description"`
	PreDefined  *bool  `json:"pre_defined"`
}

// GenerateICP implements POST /generate_icp. Without pre_defined the request
// defaults to the predefined variant, which forwards the generated course
// downstream instead of storing it.
func (h *Handler) GenerateICP(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var req generateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
		return
	}
	if req.TopicID == "" || req.Topic == "" || req.CourseUUID == "" {
		problems.Write(w, problems.New(
			"Invalid request body",
			"topic_id, topic and icp_UUID are required",
			problemTypeValidation, http.StatusBadRequest,
		))
		return
	}

	predefined := true
	if req.PreDefined != nil {
		predefined = *req.PreDefined
	}

	report, err := h.courses.GenerateOrFetch(r.Context(), service.GenerateCourseInput{
		OwnerEmail: req.TenantEmail,
		SubjectID:  req.SubjectID,
		TopicID:    req.TopicID,
		Predefined: predefined,
		Request: service.CourseRequest{
			Topic:       req.Topic,
			Audience:    req.Audience,
			CourseUUID:  req.CourseUUID,
			Description: req.Description,
		},
	})
	if err != nil {
		h.writeCourseError(w, logger, err)
		return
	}

	switch report.Outcome {
	case service.OutcomeAlreadyExists:
		writeJSON(w, http.StatusOK, map[string]any{"status": "already_exists", "topic_id": report.TopicID})
	case service.OutcomeStored:
		writeJSON(w, http.StatusOK, map[string]any{"status": "stored", "topic_id": report.TopicID})
	case service.OutcomeForwarded:
		switch report.StatusCode {
		case http.StatusOK:
			writeJSON(w, http.StatusOK, map[string]any{"status": report.Body})
		case http.StatusBadRequest:
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": report.Body})
		default:
			logger.Error("downstream function returned unexpected status", zap.Int("status_code", report.StatusCode))
			problems.Write(w, problems.New(
				"Downstream function error",
				"downstream function returned unexpected status",
				problemTypeUpstream, http.StatusBadGateway,
			))
		}
	case service.OutcomeUpstreamError:
		problems.Write(w, problems.New("Course generator error", report.Detail, problemTypeUpstream, http.StatusBadGateway))
	case service.OutcomeMalformedUpstream:
		problems.Write(w, problems.New("Course generator error", report.Detail, problemTypeUpstream, http.StatusBadGateway))
	default:
		logger.Error("unhandled course outcome", zap.String("outcome", string(report.Outcome)))
		problems.Write(w, problems.New("Internal error", "internal error", problemTypeInternal, http.StatusInternalServerError))
	}
}

func (h *Handler) writeCourseError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		problems.Write(w, problems.New("Invalid request body", err.Error(), problemTypeValidation, http.StatusBadRequest))
	case errors.Is(err, service.ErrSubjectNotFound):
		problems.Write(w, problems.New("Subject not found", err.Error(), problemTypeNotFound, http.StatusNotFound))
	default:
		logger.Error("course generation failed", zap.Error(err))
		problems.Write(w, problems.New("Internal error", "course generation failed", problemTypeInternal, http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
