package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubInitializer struct {
	env     Envelope
	err     error
	payload map[string]any
}

func (s *stubInitializer) Initialize(_ context.Context, payload map[string]any) (Envelope, error) {
	s.payload = payload
	if s.err != nil {
		return Envelope{}, s.err
	}
	return s.env, nil
}

// scriptedJobs serves one Generated value per poll, repeating the last one
// once the script runs out.
type scriptedJobs struct {
	mu       sync.Mutex
	sequence []*bool
	title    string
	err      error

	predefinedCalls int
	userCalls       int
	lastUserEmail   string
}

func (s *scriptedJobs) next(id string) (Job, error) {
	if s.err != nil {
		return Job{}, s.err
	}
	idx := s.predefinedCalls + s.userCalls - 1
	if idx >= len(s.sequence) {
		idx = len(s.sequence) - 1
	}
	return Job{ID: id, Title: s.title, Generated: s.sequence[idx]}, nil
}

func (s *scriptedJobs) GetPredefinedJob(_ context.Context, id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predefinedCalls++
	return s.next(id)
}

func (s *scriptedJobs) GetUserJob(_ context.Context, email, id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCalls++
	s.lastUserEmail = email
	return s.next(id)
}

// recordedSleep counts poll waits without actually waiting.
type recordedSleep struct {
	mu        sync.Mutex
	durations []time.Duration
	failAfter int // return context.Canceled once this many waits happened; 0 disables
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter > 0 && len(r.durations) >= r.failAfter {
		return context.Canceled
	}
	r.durations = append(r.durations, d)
	return nil
}

func boolPtr(b bool) *bool { return &b }

func generatingEnvelope(id string) Envelope {
	return Envelope{StatusCode: 200, Body: map[string]any{"generating": true, "id": id}}
}

func newSeriesWorkflow(t *testing.T, init *stubInitializer, jobs *scriptedJobs, sleep *recordedSleep) *SeriesWorkflow {
	t.Helper()
	return NewSeriesWorkflow(
		SeriesDeps{Initializer: init, Jobs: jobs, Sleep: sleep.sleep},
		PollConfig{Interval: 3 * time.Second, MaxAttempts: 80},
		zaptest.NewLogger(t),
	)
}

func TestDispatchAlreadyDone(t *testing.T) {
	init := &stubInitializer{env: Envelope{StatusCode: 400, Body: map[string]any{"message": "already generated"}}}
	jobs := &scriptedJobs{}
	sleep := &recordedSleep{}
	w := newSeriesWorkflow(t, init, jobs, sleep)

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{"id": "J1"}, Predefined: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAlreadyDone, res.Outcome)
	assert.Equal(t, 400, res.StatusCode)
	assert.Zero(t, jobs.predefinedCalls)
	assert.Empty(t, sleep.durations)
}

func TestDispatchPollsUntilDone(t *testing.T) {
	init := &stubInitializer{env: generatingEnvelope("J1")}
	jobs := &scriptedJobs{
		sequence: []*bool{boolPtr(false), boolPtr(false), boolPtr(true)},
		title:    "Linear equations series",
	}
	sleep := &recordedSleep{}
	w := newSeriesWorkflow(t, init, jobs, sleep)

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{"id": "J1"}, Predefined: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDone, res.Outcome)
	assert.Equal(t, "J1", res.JobID)
	assert.Equal(t, "Linear equations series", res.Title)

	// Exactly three polls, each preceded by one interval wait.
	assert.Equal(t, 3, jobs.predefinedCalls)
	require.Len(t, sleep.durations, 3)
	for _, d := range sleep.durations {
		assert.Equal(t, 3*time.Second, d)
	}
}

func TestDispatchTimesOutAfterBudget(t *testing.T) {
	init := &stubInitializer{env: generatingEnvelope("J1")}
	jobs := &scriptedJobs{sequence: []*bool{boolPtr(false)}}
	sleep := &recordedSleep{}
	w := newSeriesWorkflow(t, init, jobs, sleep)

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{"id": "J1"}, Predefined: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Equal(t, "J1", res.JobID)

	// The budget is exactly 80 attempts, never 81.
	assert.Equal(t, 80, jobs.predefinedCalls)
	assert.Len(t, sleep.durations, 80)
}

func TestDispatchPassesThroughUnexpectedOK(t *testing.T) {
	init := &stubInitializer{env: Envelope{StatusCode: 200, Body: map[string]any{"note": "nothing to generate"}}}
	w := newSeriesWorkflow(t, init, &scriptedJobs{}, &recordedSleep{})

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnexpected, res.Outcome)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, map[string]any{"note": "nothing to generate"}, res.Body)
}

func TestDispatchPassesThroughUnexpectedStatus(t *testing.T) {
	init := &stubInitializer{env: Envelope{StatusCode: 502, Body: "bad gateway"}}
	w := newSeriesWorkflow(t, init, &scriptedJobs{}, &recordedSleep{})

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnexpected, res.Outcome)
	assert.Equal(t, 502, res.StatusCode)
}

func TestPollMissingRecordIsTerminal(t *testing.T) {
	init := &stubInitializer{env: generatingEnvelope("J1")}
	jobs := &scriptedJobs{err: ErrJobNotFound}
	w := newSeriesWorkflow(t, init, jobs, &recordedSleep{})

	_, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.ErrorIs(t, err, ErrJobNotFound)

	// Not retried.
	assert.Equal(t, 1, jobs.predefinedCalls)
}

func TestPollMissingFlagIsTerminal(t *testing.T) {
	init := &stubInitializer{env: generatingEnvelope("J1")}
	jobs := &scriptedJobs{sequence: []*bool{nil}}
	w := newSeriesWorkflow(t, init, jobs, &recordedSleep{})

	_, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.ErrorIs(t, err, ErrJobCorrupted)
	assert.Equal(t, 1, jobs.predefinedCalls)
}

func TestPollCancellationLooksLikeTimeout(t *testing.T) {
	init := &stubInitializer{env: generatingEnvelope("J1")}
	jobs := &scriptedJobs{sequence: []*bool{boolPtr(false)}}
	sleep := &recordedSleep{failAfter: 2}
	w := newSeriesWorkflow(t, init, jobs, sleep)

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Equal(t, "J1", res.JobID)
	assert.Equal(t, 2, jobs.predefinedCalls)
}

func TestPollUserScopedJob(t *testing.T) {
	init := &stubInitializer{env: generatingEnvelope("J2")}
	jobs := &scriptedJobs{sequence: []*bool{boolPtr(true)}, title: "My series"}
	w := newSeriesWorkflow(t, init, jobs, &recordedSleep{})

	res, err := w.DispatchAndPoll(context.Background(), DispatchRequest{
		Payload:   map[string]any{"id": "J2"},
		UserEmail: "kid@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDone, res.Outcome)
	assert.Equal(t, 1, jobs.userCalls)
	assert.Zero(t, jobs.predefinedCalls)
	assert.Equal(t, "kid@example.com", jobs.lastUserEmail)
}

func TestDispatchValidation(t *testing.T) {
	w := newSeriesWorkflow(t, &stubInitializer{}, &scriptedJobs{}, &recordedSleep{})

	_, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Predefined: true})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDispatchGeneratingWithoutID(t *testing.T) {
	init := &stubInitializer{env: Envelope{StatusCode: 200, Body: map[string]any{"generating": true}}}
	w := newSeriesWorkflow(t, init, &scriptedJobs{}, &recordedSleep{})

	_, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a job id")
}

func TestDispatchInitializerError(t *testing.T) {
	init := &stubInitializer{err: errors.New("connection refused")}
	w := newSeriesWorkflow(t, init, &scriptedJobs{}, &recordedSleep{})

	_, err := w.DispatchAndPoll(context.Background(), DispatchRequest{Payload: map[string]any{}, Predefined: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch generation")
}
