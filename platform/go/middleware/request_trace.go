package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformlogging "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/logging"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/requesttrace"
)

// TeacherEmailHeader optionally identifies the dashboard account issuing a request.
// Most endpoints also carry the email in the payload; handlers re-stamp the audit
// info from the body when they parse it.
const TeacherEmailHeader = "X-Teacher-Email"

// RequestTrace populates the context with request-scoped AuditInfo so services and
// clients can stamp audit fields. Requests without an identifying header start as
// anonymous and are upgraded by handlers once the payload is decoded.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := platformlogging.FromRequest(r, nil)
		requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)

		audit := requesttrace.Anonymous(requestID)
		if email := r.Header.Get(TeacherEmailHeader); email != "" {
			if fromHeader, err := requesttrace.FromTeacherEmail(email, requestID); err == nil {
				audit = fromHeader
			}
		}

		ctx := requesttrace.IntoContext(r.Context(), audit)
		if logger != nil {
			fields := []zap.Field{zap.String("actor_kind", string(audit.ActorKind))}
			if audit.TeacherEmail != nil && *audit.TeacherEmail != "" {
				fields = append(fields, zap.String("teacher_email", *audit.TeacherEmail))
			}
			logger = logger.With(fields...)
			ctx = platformlogging.WithLogger(ctx, logger)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
