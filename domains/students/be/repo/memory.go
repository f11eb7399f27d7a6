package repo

import (
	"context"
	"sync"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/service"
)

// MemoryDirectory is a simple in-memory implementation suitable for tests and
// early development. Records are keyed by the exact stored email.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byEmail map[string]service.Student
}

// NewMemoryDirectory constructs a MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byEmail: make(map[string]service.Student)}
}

// Seed inserts or replaces a student record.
func (r *MemoryDirectory) Seed(student service.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[student.Email] = student
}

func (r *MemoryDirectory) GetByEmail(ctx context.Context, email string) (service.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	student, ok := r.byEmail[email]
	if !ok {
		return service.Student{}, service.ErrStudentNotFound
	}
	out := student
	out.SubjectList = append([]string(nil), student.SubjectList...)
	return out, nil
}

func (r *MemoryDirectory) SetSubjectList(ctx context.Context, email string, subjects []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.byEmail[email]
	if !ok {
		return service.ErrStudentNotFound
	}
	student.SubjectList = append([]string(nil), subjects...)
	r.byEmail[email] = student
	return nil
}

// Ensure interface compliance.
var _ service.Directory = (*MemoryDirectory)(nil)
