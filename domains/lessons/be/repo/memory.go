package repo

import (
	"context"
	"sync"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/service"
)

// MemoryLessonStore is a simple in-memory implementation suitable for tests
// and early development.
type MemoryLessonStore struct {
	mu   sync.RWMutex
	byID map[string]service.LessonRecord
}

// NewMemoryLessonStore constructs a MemoryLessonStore.
func NewMemoryLessonStore() *MemoryLessonStore {
	return &MemoryLessonStore{byID: make(map[string]service.LessonRecord)}
}

func (r *MemoryLessonStore) PutLesson(ctx context.Context, rec service.LessonRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

// Get returns a stored record and whether it exists.
func (r *MemoryLessonStore) Get(id string) (service.LessonRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	return rec, ok
}

// Ensure interface compliance.
var _ service.LessonStore = (*MemoryLessonStore)(nil)
