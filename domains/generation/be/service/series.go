package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrJobNotFound means a poll found no record for the job id the
	// generator handed out.
	ErrJobNotFound = errors.New("generation job not found")

	// ErrJobCorrupted means the job record exists but carries no completion
	// flag, which distinguishes a broken record from one still in progress.
	ErrJobCorrupted = errors.New("generation job record has no completion flag")
)

// Envelope is the generator's synchronous response shape.
type Envelope struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// Initializer submits a generation request and returns the generator's
// immediate envelope.
type Initializer interface {
	Initialize(ctx context.Context, payload map[string]any) (Envelope, error)
}

// Job is a generation job's status record. Generated is nil when the record
// carries no completion flag at all.
type Job struct {
	ID        string
	Title     string
	Generated *bool
}

// JobStore reads job status records. Predefined jobs are keyed by id alone;
// user jobs are scoped to the owning email. Both return ErrJobNotFound when
// no record exists.
type JobStore interface {
	GetPredefinedJob(ctx context.Context, id string) (Job, error)
	GetUserJob(ctx context.Context, email, id string) (Job, error)
}

// SleepFunc waits for the given duration or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SeriesDeps are the collaborators of the series workflow.
type SeriesDeps struct {
	Initializer Initializer
	Jobs        JobStore

	// Sleep paces the poll loop. Defaults to a timer-backed wait; tests
	// inject their own to avoid real delays.
	Sleep SleepFunc
}

// PollConfig bounds the poll loop. The defaults give a hard deadline of
// about four minutes.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 80
)

// DispatchRequest describes one dispatch-and-poll invocation. Payload is
// forwarded to the generator untouched. Predefined selects which job store
// the poll loop reads; UserEmail is required when it is false.
type DispatchRequest struct {
	Payload    map[string]any
	UserEmail  string
	Predefined bool
}

// DispatchResult is the terminal state of a dispatch-and-poll call.
// StatusCode and Body are only set for passthrough outcomes (already_done,
// unexpected); Title is only set for done.
type DispatchResult struct {
	Outcome    Outcome
	JobID      string
	Title      string
	StatusCode int
	Body       any
}

// SeriesWorkflow submits a test-series generation request and waits for the
// generator to finish by polling the job record.
type SeriesWorkflow struct {
	deps   SeriesDeps
	cfg    PollConfig
	logger *zap.Logger
}

// NewSeriesWorkflow constructs a SeriesWorkflow instance.
func NewSeriesWorkflow(deps SeriesDeps, cfg PollConfig, logger *zap.Logger) *SeriesWorkflow {
	if deps.Initializer == nil {
		panic("initializer is required")
	}
	if deps.Jobs == nil {
		panic("job store is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &SeriesWorkflow{deps: deps, cfg: cfg, logger: logger}
}

// DispatchAndPoll submits the request and interprets the generator's
// envelope: 400 means the series already exists, 200 with generating=true
// starts the poll loop, anything else is passed through. Cancellation during
// the poll loop yields a timeout result because the job keeps generating
// regardless of this call.
func (w *SeriesWorkflow) DispatchAndPoll(ctx context.Context, req DispatchRequest) (DispatchResult, error) {
	if req.Payload == nil {
		return DispatchResult{}, fmt.Errorf("%w: payload is required", ErrInvalidInput)
	}
	if !req.Predefined && req.UserEmail == "" {
		return DispatchResult{}, fmt.Errorf("%w: user email is required for user-scoped jobs", ErrInvalidInput)
	}

	env, err := w.deps.Initializer.Initialize(ctx, req.Payload)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("dispatch generation: %w", err)
	}

	if env.StatusCode == http.StatusBadRequest {
		return DispatchResult{Outcome: OutcomeAlreadyDone, StatusCode: env.StatusCode, Body: env.Body}, nil
	}

	if env.StatusCode == http.StatusOK && generationStarted(env.Body) {
		jobID := bodyField(env.Body, "id")
		if jobID == "" {
			return DispatchResult{}, errors.New("generator reported generating without a job id")
		}
		return w.poll(ctx, jobID, req)
	}

	w.logger.Warn("unexpected initialize response", zap.Int("status_code", env.StatusCode))
	return DispatchResult{Outcome: OutcomeUnexpected, StatusCode: env.StatusCode, Body: env.Body}, nil
}

func (w *SeriesWorkflow) poll(ctx context.Context, jobID string, req DispatchRequest) (DispatchResult, error) {
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if err := w.deps.Sleep(ctx, w.cfg.Interval); err != nil {
			w.logger.Info("poll canceled, job continues server-side",
				zap.String("job_id", jobID),
				zap.Int("attempt", attempt),
			)
			return DispatchResult{Outcome: OutcomeTimeout, JobID: jobID}, nil
		}

		job, err := w.lookupJob(ctx, jobID, req)
		if err != nil {
			if ctx.Err() != nil {
				return DispatchResult{Outcome: OutcomeTimeout, JobID: jobID}, nil
			}
			return DispatchResult{}, fmt.Errorf("poll job %s: %w", jobID, err)
		}
		if job.Generated == nil {
			return DispatchResult{}, fmt.Errorf("%w: job %s", ErrJobCorrupted, jobID)
		}
		if *job.Generated {
			w.logger.Info("generation finished",
				zap.String("job_id", jobID),
				zap.Int("attempts", attempt),
			)
			return DispatchResult{Outcome: OutcomeDone, JobID: jobID, Title: job.Title}, nil
		}
	}

	w.logger.Info("generation still in progress after poll budget", zap.String("job_id", jobID))
	return DispatchResult{Outcome: OutcomeTimeout, JobID: jobID}, nil
}

func (w *SeriesWorkflow) lookupJob(ctx context.Context, jobID string, req DispatchRequest) (Job, error) {
	if req.Predefined {
		return w.deps.Jobs.GetPredefinedJob(ctx, jobID)
	}
	return w.deps.Jobs.GetUserJob(ctx, req.UserEmail, jobID)
}

func generationStarted(body any) bool {
	m, ok := body.(map[string]any)
	if !ok {
		return false
	}
	started, _ := m["generating"].(bool)
	return started
}

// bodyField reads a string-ish field out of a loosely typed envelope body.
func bodyField(body any, key string) string {
	m, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
