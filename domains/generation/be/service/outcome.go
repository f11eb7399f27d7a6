package service

// Outcome names the terminal state of a generation workflow call.
type Outcome string

// Dispatch-and-poll outcomes.
const (
	// OutcomeAlreadyDone means the generator reported the series as already
	// generated before any polling happened.
	OutcomeAlreadyDone Outcome = "already_done"
	// OutcomeDone means a poll observed the completion flag set to true.
	OutcomeDone Outcome = "done"
	// OutcomeTimeout means the poll budget ran out while the job was still
	// in progress. The job keeps generating server-side and can be checked
	// again later.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeUnexpected carries a generator response that matched no known
	// branch; the raw envelope is passed through to the caller.
	OutcomeUnexpected Outcome = "unexpected"
)

// Dedup-guarded course outcomes.
const (
	// OutcomeAlreadyExists means a course for this (owner, topic) pair was
	// generated before; no upstream call was made.
	OutcomeAlreadyExists Outcome = "already_exists"
	// OutcomeStored means the course was generated and persisted.
	OutcomeStored Outcome = "stored"
	// OutcomeUpstreamError means the course generator answered with a
	// non-success status or was unreachable.
	OutcomeUpstreamError Outcome = "upstream_error"
	// OutcomeMalformedUpstream means the generator answered 200 but the
	// course payload was missing. Nothing is persisted.
	OutcomeMalformedUpstream Outcome = "malformed_upstream"
	// OutcomeForwarded means the predefined variant handed the course to
	// the downstream function and its envelope is the result.
	OutcomeForwarded Outcome = "forwarded"
)
