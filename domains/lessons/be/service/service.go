package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Errors returned by the service layer.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSchoolNotFound  = errors.New("school not found for tenant")
	ErrStudentNotFound = errors.New("student not found")
)

// StatusActive is the status every freshly provisioned lesson record carries.
const StatusActive = "Active"

const defaultAssignWorkers = 4

// Saga step names used in step error reports.
const (
	StepRegisterSubject = "register_subject"
	StepTeacherRelation = "teacher_relation"
	StepLessonPlanner   = "lesson_planner"
)

// Config carries the tenant identity and display defaults stamped onto every
// lesson record.
type Config struct {
	TenantEmail string
	TenantName  string
	Icon        string
	// AssignWorkers bounds concurrent per-student assignment calls.
	AssignWorkers int
}

// ProvisionInput is the validated request for one provisioning run.
type ProvisionInput struct {
	LessonUUID    string
	Subject       string
	Grade         string
	Section       string
	Period        string
	TeacherID     string
	StudentEmails []string
	// TenantEmail/TenantName override the configured defaults when set.
	TenantEmail string
	TenantName  string
	// Payload is the full lesson-planner document forwarded to the secondary
	// store unchanged.
	Payload map[string]any
}

// StepError records a degraded (non-fatal) saga step failure.
type StepError struct {
	Step   string `json:"step"`
	Detail string `json:"detail"`
}

// AssignmentOutcome reports one student's assignment attempt.
type AssignmentOutcome struct {
	Email     string `json:"email"`
	StudentID string `json:"student_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// ProvisionReport is the structured account of one saga run: which students
// were linked, which steps degraded, and the gateway subject id when one was
// obtained. Only a failure to create the root lesson record aborts the saga;
// everything else lands here.
type ProvisionReport struct {
	LessonUUID string
	SubjectID  string
	Assigned   []AssignmentOutcome
	NotFound   []string
	Failed     []AssignmentOutcome
	StepErrors []StepError
}

// Service runs the lesson provisioning saga.
type Service struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

// New constructs a Service with required dependencies.
func New(deps Deps, cfg Config, logger *zap.Logger) *Service {
	if deps.Lessons == nil {
		panic("lesson store is required")
	}
	if deps.School == nil {
		panic("school gateway is required")
	}
	if deps.Planner == nil {
		panic("planner store is required")
	}
	if cfg.TenantEmail == "" || cfg.TenantName == "" {
		panic("tenant identity is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if cfg.AssignWorkers <= 0 {
		cfg.AssignWorkers = defaultAssignWorkers
	}
	return &Service{deps: deps, cfg: cfg, logger: logger}
}

// Provision executes the saga steps in order: create the lesson record,
// register the subject with the school gateway, assign it to the listed
// students, record the teacher relation, and persist the planner payload.
// The saga is forward-only: there is no rollback, and every step after record
// creation degrades the report instead of aborting.
func (s *Service) Provision(ctx context.Context, input ProvisionInput) (ProvisionReport, error) {
	subject := strings.TrimSpace(input.Subject)
	if input.LessonUUID == "" || subject == "" {
		return ProvisionReport{}, fmt.Errorf("%w: lesson uuid and subject are required", ErrInvalidInput)
	}

	tenantEmail := input.TenantEmail
	if tenantEmail == "" {
		tenantEmail = s.cfg.TenantEmail
	}
	tenantName := input.TenantName
	if tenantName == "" {
		tenantName = s.cfg.TenantName
	}

	rec := LessonRecord{
		ID:                input.LessonUUID,
		CreatedAt:         time.Now().UTC(),
		Grade:             input.Grade,
		Section:           input.Section,
		Period:            input.Period,
		Subject:           subject,
		GradeAndSubject:   "TD: " + subject,
		GradeAndSubjectUI: subject + " - Assignment",
		Status:            StatusActive,
		TenantEmail:       tenantEmail,
		TenantName:        tenantName,
		Icon:              s.cfg.Icon,
	}
	if err := s.deps.Lessons.PutLesson(ctx, rec); err != nil {
		// Everything downstream depends on the record existing.
		return ProvisionReport{}, fmt.Errorf("create lesson record %s: %w", input.LessonUUID, err)
	}

	report := ProvisionReport{LessonUUID: input.LessonUUID}
	report.SubjectID = s.registerSubject(ctx, tenantEmail, subject, input, &report)

	if report.SubjectID != "" && len(input.StudentEmails) > 0 {
		s.assignStudents(ctx, report.SubjectID, input.StudentEmails, &report)
	}

	if report.SubjectID != "" && input.TeacherID != "" {
		if err := s.deps.School.RegisterTeacherRelation(ctx, report.SubjectID, input.TeacherID); err != nil {
			s.logger.Warn("teacher relation registration failed",
				zap.String("lesson_uuid", input.LessonUUID),
				zap.String("subject_id", report.SubjectID),
				zap.Error(err),
			)
			report.StepErrors = append(report.StepErrors, StepError{Step: StepTeacherRelation, Detail: err.Error()})
		}
	}

	if input.Payload == nil {
		report.StepErrors = append(report.StepErrors, StepError{Step: StepLessonPlanner, Detail: "lesson planner payload missing"})
	} else if err := s.deps.Planner.InsertLessonPlanner(ctx, input.Payload); err != nil {
		s.logger.Warn("lesson planner insert failed",
			zap.String("lesson_uuid", input.LessonUUID),
			zap.Error(err),
		)
		report.StepErrors = append(report.StepErrors, StepError{Step: StepLessonPlanner, Detail: err.Error()})
	}

	return report, nil
}

// registerSubject resolves the tenant's school and inserts the subject,
// returning the gateway-assigned subject id or "" when the step degraded.
func (s *Service) registerSubject(ctx context.Context, tenantEmail, subject string, input ProvisionInput, report *ProvisionReport) string {
	schoolID, err := s.deps.School.ResolveSchoolID(ctx, tenantEmail)
	if err != nil {
		report.StepErrors = append(report.StepErrors, StepError{
			Step:   StepRegisterSubject,
			Detail: fmt.Sprintf("resolve school: %v", err),
		})
		return ""
	}

	subjectID, err := s.deps.School.RegisterSubject(ctx, SubjectRegistration{
		Name:     subject,
		Grade:    input.Grade,
		Section:  input.Section,
		Period:   input.Period,
		SchoolID: schoolID,
	})
	if err != nil {
		report.StepErrors = append(report.StepErrors, StepError{
			Step:   StepRegisterSubject,
			Detail: fmt.Sprintf("insert subject: %v", err),
		})
		return ""
	}
	if subjectID == "" {
		report.StepErrors = append(report.StepErrors, StepError{
			Step:   StepRegisterSubject,
			Detail: "gateway returned no subject id",
		})
	}
	return subjectID
}

type assignStatus int

const (
	assignOK assignStatus = iota
	assignNotFound
	assignFailed
)

type assignOutcome struct {
	email  string
	id     string
	status assignStatus
	detail string
}

// assignStudents resolves and assigns every student concurrently. Each
// student lands in exactly one of the report's three lists; no failure aborts
// the siblings.
func (s *Service) assignStudents(ctx context.Context, subjectID string, emails []string, report *ProvisionReport) {
	results := make([]assignOutcome, len(emails))

	var g errgroup.Group
	g.SetLimit(s.cfg.AssignWorkers)
	for i, email := range emails {
		g.Go(func() error {
			results[i] = s.assignOne(ctx, subjectID, email)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		switch res.status {
		case assignOK:
			report.Assigned = append(report.Assigned, AssignmentOutcome{Email: res.email, StudentID: res.id})
		case assignNotFound:
			report.NotFound = append(report.NotFound, res.email)
		default:
			report.Failed = append(report.Failed, AssignmentOutcome{Email: res.email, StudentID: res.id, Detail: res.detail})
		}
	}
}

func (s *Service) assignOne(ctx context.Context, subjectID, email string) assignOutcome {
	studentID, err := s.deps.School.LookupStudentID(ctx, email)
	if err != nil || studentID == "" {
		// Any lookup failure means no student id was resolved.
		if err != nil && !errors.Is(err, ErrStudentNotFound) {
			s.logger.Warn("student lookup failed", zap.String("student_email", email), zap.Error(err))
		}
		return assignOutcome{email: email, status: assignNotFound}
	}

	assigned, err := s.deps.School.AssignSubject(ctx, studentID, subjectID)
	if err != nil {
		return assignOutcome{email: email, id: studentID, status: assignFailed, detail: fmt.Sprintf("assign subject: %v", err)}
	}
	if !assigned {
		return assignOutcome{email: email, id: studentID, status: assignFailed, detail: "assignment not confirmed by gateway"}
	}
	return assignOutcome{email: email, id: studentID, status: assignOK}
}
