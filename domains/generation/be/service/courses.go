package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrSubjectNotFound means the subject id could not be resolved to an owning
// tenant. Unlike upstream failures this aborts the workflow.
var ErrSubjectNotFound = errors.New("subject not found")

// CourseRequest is the topic description sent to the course generator.
type CourseRequest struct {
	Topic       string `json:"topic"`
	Audience    string `json:"audience"`
	CourseUUID  string `json:"icp_UUID"`
	Description string `json:"description"`
}

// CourseResult is the generator's response. Course is nil when the payload
// field was missing or unparseable.
type CourseResult struct {
	StatusCode int
	Course     map[string]any
}

// CourseGenerator calls the external course generator. Transport failures
// are returned as errors; HTTP-level failures come back in the result.
type CourseGenerator interface {
	GenerateCourse(ctx context.Context, req CourseRequest) (CourseResult, error)
}

// CourseRecord is one generated course plus its provenance.
type CourseRecord struct {
	OwnerEmail string
	TopicID    string
	SubjectID  string
	Course     map[string]any
	Env        string
}

// DedupStore remembers which (owner, topic) pairs already have a course.
// A record's existence is the dedup signal.
type DedupStore interface {
	Exists(ctx context.Context, ownerEmail, topicID string) (bool, error)
	Put(ctx context.Context, rec CourseRecord) error
}

// SubjectOwnerResolver maps a subject id to the owning tenant's email,
// returning ErrSubjectNotFound when no such subject exists.
type SubjectOwnerResolver interface {
	SubjectOwner(ctx context.Context, subjectID string) (string, error)
}

// InvocationResult is a downstream function's response envelope.
type InvocationResult struct {
	StatusCode int
	Body       any
}

// FunctionInvoker synchronously invokes the downstream processing function.
type FunctionInvoker interface {
	Invoke(ctx context.Context, payload map[string]any) (InvocationResult, error)
}

// CourseDeps are the collaborators of the course workflow.
type CourseDeps struct {
	Generator CourseGenerator
	Dedup     DedupStore
	Subjects  SubjectOwnerResolver
	Invoker   FunctionInvoker
}

// CourseConfig holds the course workflow settings.
type CourseConfig struct {
	// Env tags persisted and forwarded courses with the deployment
	// environment.
	Env string
}

// GenerateCourseInput describes one course generation call. OwnerEmail may
// be empty, in which case it is resolved from SubjectID. Predefined courses
// skip the dedup check and are forwarded downstream instead of stored.
type GenerateCourseInput struct {
	OwnerEmail string
	SubjectID  string
	TopicID    string
	Predefined bool
	Request    CourseRequest
}

// CourseReport is the terminal state of a course generation call.
// StatusCode and Body are set for forwarded outcomes; Detail explains
// upstream_error and malformed_upstream.
type CourseReport struct {
	Outcome    Outcome
	TopicID    string
	StatusCode int
	Body       any
	Detail     string
}

// CourseWorkflow generates a course per (owner, topic) at most once, or in
// the predefined variant hands the generated course to a downstream function.
type CourseWorkflow struct {
	deps   CourseDeps
	cfg    CourseConfig
	logger *zap.Logger
}

const defaultCourseEnv = "production"

// NewCourseWorkflow constructs a CourseWorkflow instance.
func NewCourseWorkflow(deps CourseDeps, cfg CourseConfig, logger *zap.Logger) *CourseWorkflow {
	if deps.Generator == nil {
		panic("course generator is required")
	}
	if deps.Dedup == nil {
		panic("dedup store is required")
	}
	if deps.Subjects == nil {
		panic("subject resolver is required")
	}
	if deps.Invoker == nil {
		panic("function invoker is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if cfg.Env == "" {
		cfg.Env = defaultCourseEnv
	}
	return &CourseWorkflow{deps: deps, cfg: cfg, logger: logger}
}

// GenerateOrFetch runs the dedup-guarded generate-store workflow. The owner
// email is lowercased before it is used as a dedup key so that differently
// cased requests for the same tenant dedup together.
func (w *CourseWorkflow) GenerateOrFetch(ctx context.Context, input GenerateCourseInput) (CourseReport, error) {
	if input.TopicID == "" {
		return CourseReport{}, fmt.Errorf("%w: topic id is required", ErrInvalidInput)
	}

	owner := strings.ToLower(strings.TrimSpace(input.OwnerEmail))
	if owner == "" {
		if input.SubjectID == "" {
			return CourseReport{}, fmt.Errorf("%w: owner email or subject id is required", ErrInvalidInput)
		}
		resolved, err := w.deps.Subjects.SubjectOwner(ctx, input.SubjectID)
		if err != nil {
			return CourseReport{}, fmt.Errorf("resolve owner of subject %s: %w", input.SubjectID, err)
		}
		owner = strings.ToLower(resolved)
	}

	if input.Predefined {
		return w.generateAndForward(ctx, owner, input)
	}
	return w.generateAndStore(ctx, owner, input)
}

func (w *CourseWorkflow) generateAndStore(ctx context.Context, owner string, input GenerateCourseInput) (CourseReport, error) {
	exists, err := w.deps.Dedup.Exists(ctx, owner, input.TopicID)
	if err != nil {
		return CourseReport{}, fmt.Errorf("check course record for %s/%s: %w", owner, input.TopicID, err)
	}
	if exists {
		w.logger.Info("course already generated",
			zap.String("owner", owner),
			zap.String("topic_id", input.TopicID),
		)
		return CourseReport{Outcome: OutcomeAlreadyExists, TopicID: input.TopicID}, nil
	}

	res, report := w.generate(ctx, input)
	if report != nil {
		return *report, nil
	}

	rec := CourseRecord{
		OwnerEmail: owner,
		TopicID:    input.TopicID,
		SubjectID:  input.SubjectID,
		Course:     res.Course,
		Env:        w.cfg.Env,
	}
	if err := w.deps.Dedup.Put(ctx, rec); err != nil {
		return CourseReport{}, fmt.Errorf("store course for %s/%s: %w", owner, input.TopicID, err)
	}

	w.logger.Info("course generated and stored",
		zap.String("owner", owner),
		zap.String("topic_id", input.TopicID),
	)
	return CourseReport{Outcome: OutcomeStored, TopicID: input.TopicID}, nil
}

func (w *CourseWorkflow) generateAndForward(ctx context.Context, owner string, input GenerateCourseInput) (CourseReport, error) {
	res, report := w.generate(ctx, input)
	if report != nil {
		return *report, nil
	}

	payload := map[string]any{
		"user_id": owner,
		"body": map[string]any{
			"module":     "ICP",
			"body":       res.Course,
			"env":        w.cfg.Env,
			"subject_id": input.SubjectID,
			"topic_id":   input.TopicID,
		},
	}

	inv, err := w.deps.Invoker.Invoke(ctx, payload)
	if err != nil {
		return CourseReport{}, fmt.Errorf("forward course %s downstream: %w", input.TopicID, err)
	}

	return CourseReport{
		Outcome:    OutcomeForwarded,
		TopicID:    input.TopicID,
		StatusCode: inv.StatusCode,
		Body:       inv.Body,
	}, nil
}

// generate calls the upstream generator and screens its response. A non-nil
// report means the call ended in a degraded outcome and nothing may be
// persisted or forwarded.
func (w *CourseWorkflow) generate(ctx context.Context, input GenerateCourseInput) (CourseResult, *CourseReport) {
	res, err := w.deps.Generator.GenerateCourse(ctx, input.Request)
	if err != nil {
		w.logger.Warn("course generator unreachable", zap.String("topic_id", input.TopicID), zap.Error(err))
		return CourseResult{}, &CourseReport{
			Outcome: OutcomeUpstreamError,
			TopicID: input.TopicID,
			Detail:  err.Error(),
		}
	}
	if res.StatusCode != http.StatusOK {
		w.logger.Warn("course generator returned error status",
			zap.String("topic_id", input.TopicID),
			zap.Int("status_code", res.StatusCode),
		)
		return CourseResult{}, &CourseReport{
			Outcome:    OutcomeUpstreamError,
			TopicID:    input.TopicID,
			StatusCode: res.StatusCode,
			Detail:     fmt.Sprintf("generator returned status %d", res.StatusCode),
		}
	}
	if res.Course == nil {
		w.logger.Warn("course generator response missing course payload", zap.String("topic_id", input.TopicID))
		return CourseResult{}, &CourseReport{
			Outcome:    OutcomeMalformedUpstream,
			TopicID:    input.TopicID,
			StatusCode: res.StatusCode,
			Detail:     "generator response missing course payload",
		}
	}
	return res, nil
}
