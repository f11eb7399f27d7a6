package requesttrace

import (
	"context"
	"errors"
	"strings"
)

type contextKey string

const (
	ctxAuditInfo contextKey = "DASHBOARD_REQUEST_TRACE"
)

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindTeacher   ActorKind = "teacher"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata needed for traceability and auditing.
// TeacherEmail is optional; set only when ActorKind is teacher. RequestID is
// optional but encouraged.
type AuditInfo struct {
	ActorKind    ActorKind
	TeacherEmail *string
	RequestID    string
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	v := ctx.Value(ctxAuditInfo)
	if v == nil {
		return AuditInfo{}, false
	}

	audit, ok := v.(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromTeacherEmail builds an AuditInfo from the teacher email carried in a request
// payload and a request ID. The email is lowercased so repeated requests from the
// same account trace to the same actor.
func FromTeacherEmail(email, requestID string) (AuditInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return AuditInfo{}, errors.New("teacher email is required to build audit info")
	}

	return AuditInfo{
		ActorKind:    ActorKindTeacher,
		TeacherEmail: &email,
		RequestID:    requestID,
	}, nil
}

// Anonymous builds an AuditInfo for requests that carry no account identity.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System builds an AuditInfo for background/system operations.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}
