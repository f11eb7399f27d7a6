package service

import (
	"context"
	"time"
)

// LessonStore persists lesson records in the document store.
type LessonStore interface {
	PutLesson(ctx context.Context, rec LessonRecord) error
}

// LessonRecord is the document created once per provisioning call and never
// mutated afterward by this service.
type LessonRecord struct {
	ID                string
	CreatedAt         time.Time
	Grade             string
	Section           string
	Period            string
	Subject           string
	GradeAndSubject   string
	GradeAndSubjectUI string
	Status            string
	TenantEmail       string
	TenantName        string
	Icon              string
}

// SubjectRegistration is the gateway-side representation of a subject within
// a school, grade, section, and period.
type SubjectRegistration struct {
	Name     string
	Grade    string
	Section  string
	Period   string
	SchoolID string
}

// SchoolGateway wraps the relational gateway endpoints the saga calls. IDs are
// carried as strings regardless of how the gateway encodes them.
type SchoolGateway interface {
	// ResolveSchoolID maps a tenant email to its school id. Returns
	// ErrSchoolNotFound when the email has no registered school.
	ResolveSchoolID(ctx context.Context, tenantEmail string) (string, error)
	// RegisterSubject inserts the subject and returns the gateway-assigned id,
	// or "" when the gateway acked without one.
	RegisterSubject(ctx context.Context, reg SubjectRegistration) (string, error)
	// LookupStudentID maps a student email to a student id. Returns
	// ErrStudentNotFound when the email is unknown.
	LookupStudentID(ctx context.Context, email string) (string, error)
	// AssignSubject attaches the subject to the student; the bool reports
	// whether the gateway confirmed the assignment.
	AssignSubject(ctx context.Context, studentID, subjectID string) (bool, error)
	// RegisterTeacherRelation records the authoring teacher for the subject.
	RegisterTeacherRelation(ctx context.Context, subjectID, teacherID string) error
}

// PlannerStore persists the full lesson-planner payload in the secondary store.
type PlannerStore interface {
	InsertLessonPlanner(ctx context.Context, payload map[string]any) error
}

// Deps bundles the collaborators the provisioning saga depends on.
type Deps struct {
	Lessons LessonStore
	School  SchoolGateway
	Planner PlannerStore
}
