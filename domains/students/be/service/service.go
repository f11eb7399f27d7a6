package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Errors returned by the service layer.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Student is the directory record a lesson gets linked to. Email is the
// record key; SubjectList holds linked lesson UUIDs in insertion order.
type Student struct {
	Email       string
	SubjectList []string
}

// Directory abstracts the student directory store.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (Student, error)
	SetSubjectList(ctx context.Context, email string, subjects []string) error
}

// LinkResult reports one linking attempt. StoredEmail is the key the record is
// actually stored under, which may differ from the caller-supplied casing.
type LinkResult struct {
	Added       bool
	StoredEmail string
}

// BulkLinkReport partitions a batch of emails by linking outcome.
type BulkLinkReport struct {
	LessonUUID    string
	Updated       []string
	AlreadyLinked []string
	NotFound      []string
}

// Service links lesson records into student subject lists.
type Service struct {
	directory Directory
	logger    *zap.Logger
}

// New constructs a Service with required dependencies.
func New(directory Directory, logger *zap.Logger) *Service {
	if directory == nil {
		panic("student directory is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Service{directory: directory, logger: logger}
}

// Link ensures lessonUUID appears in the student's subject list at most once.
// Lookup falls back to the lowercased email when the supplied casing does not
// match a record; the write always targets the stored key. Returns
// ErrStudentNotFound when neither casing resolves.
func (s *Service) Link(ctx context.Context, email, lessonUUID string) (LinkResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || lessonUUID == "" {
		return LinkResult{}, fmt.Errorf("%w: email and lesson uuid are required", ErrInvalidInput)
	}

	student, err := s.directory.GetByEmail(ctx, email)
	if errors.Is(err, ErrStudentNotFound) {
		if lower := strings.ToLower(email); lower != email {
			student, err = s.directory.GetByEmail(ctx, lower)
		}
	}
	if err != nil {
		return LinkResult{}, err
	}

	for _, id := range student.SubjectList {
		if id == lessonUUID {
			return LinkResult{Added: false, StoredEmail: student.Email}, nil
		}
	}

	// Read-modify-write without a conditional update: two concurrent links to
	// the same student can lose one of the appends. Accepted at current write
	// volumes; revisit with a condition expression if that changes.
	subjects := append(student.SubjectList, lessonUUID)
	if err := s.directory.SetSubjectList(ctx, student.Email, subjects); err != nil {
		return LinkResult{}, fmt.Errorf("persist subject list for %s: %w", student.Email, err)
	}

	s.logger.Info("linked lesson to student",
		zap.String("student_email", student.Email),
		zap.String("lesson_uuid", lessonUUID),
	)
	return LinkResult{Added: true, StoredEmail: student.Email}, nil
}

// LinkAll links every email to lessonUUID, partitioning outcomes into updated,
// already linked, and not found. Store failures other than a missing record
// abort the batch.
func (s *Service) LinkAll(ctx context.Context, emails []string, lessonUUID string) (BulkLinkReport, error) {
	if lessonUUID == "" || len(emails) == 0 {
		return BulkLinkReport{}, fmt.Errorf("%w: lesson uuid and at least one student email are required", ErrInvalidInput)
	}

	report := BulkLinkReport{LessonUUID: lessonUUID}
	for _, email := range emails {
		res, err := s.Link(ctx, email, lessonUUID)
		switch {
		case errors.Is(err, ErrStudentNotFound):
			report.NotFound = append(report.NotFound, email)
		case err != nil:
			return BulkLinkReport{}, err
		case res.Added:
			report.Updated = append(report.Updated, res.StoredEmail)
		default:
			report.AlreadyLinked = append(report.AlreadyLinked, res.StoredEmail)
		}
	}
	return report, nil
}
