package repo

import (
	"context"
	"sync"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
)

// MemoryJobStore is an in-memory JobStore for tests and local development.
type MemoryJobStore struct {
	mu         sync.Mutex
	predefined map[string]service.Job
	user       map[string]service.Job
}

// NewMemoryJobStore constructs an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		predefined: map[string]service.Job{},
		user:       map[string]service.Job{},
	}
}

// SeedPredefined stores a predefined job record.
func (r *MemoryJobStore) SeedPredefined(job service.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predefined[job.ID] = job
}

// SeedUser stores a user-scoped job record.
func (r *MemoryJobStore) SeedUser(email string, job service.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user[email+"/"+job.ID] = job
}

func (r *MemoryJobStore) GetPredefinedJob(_ context.Context, id string) (service.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.predefined[id]
	if !ok {
		return service.Job{}, service.ErrJobNotFound
	}
	return job, nil
}

func (r *MemoryJobStore) GetUserJob(_ context.Context, email, id string) (service.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.user[email+"/"+id]
	if !ok {
		return service.Job{}, service.ErrJobNotFound
	}
	return job, nil
}

// MemoryDedupStore is an in-memory DedupStore for tests and local
// development.
type MemoryDedupStore struct {
	mu      sync.Mutex
	records map[string]service.CourseRecord
}

// NewMemoryDedupStore constructs an empty MemoryDedupStore.
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{records: map[string]service.CourseRecord{}}
}

func (r *MemoryDedupStore) Exists(_ context.Context, ownerEmail, topicID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[ownerEmail+"/"+topicID]
	return ok, nil
}

func (r *MemoryDedupStore) Put(_ context.Context, rec service.CourseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.OwnerEmail+"/"+rec.TopicID] = rec
	return nil
}

// Get returns a stored record for assertions.
func (r *MemoryDedupStore) Get(ownerEmail, topicID string) (service.CourseRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[ownerEmail+"/"+topicID]
	return rec, ok
}

// MemorySubjectResolver is an in-memory SubjectOwnerResolver for tests.
type MemorySubjectResolver struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewMemorySubjectResolver constructs an empty MemorySubjectResolver.
func NewMemorySubjectResolver() *MemorySubjectResolver {
	return &MemorySubjectResolver{owners: map[string]string{}}
}

// Seed maps a subject id to its owning tenant email.
func (r *MemorySubjectResolver) Seed(subjectID, ownerEmail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[subjectID] = ownerEmail
}

func (r *MemorySubjectResolver) SubjectOwner(_ context.Context, subjectID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[subjectID]
	if !ok {
		return "", service.ErrSubjectNotFound
	}
	return owner, nil
}

// Ensure interface compliance.
var (
	_ service.JobStore             = (*MemoryJobStore)(nil)
	_ service.DedupStore           = (*MemoryDedupStore)(nil)
	_ service.SubjectOwnerResolver = (*MemorySubjectResolver)(nil)
)
