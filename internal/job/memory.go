package job

import (
	"context"
	"sync"
	"time"
)

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of Store.
// Suitable for development and testing; production uses the GORM store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore creates a new in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

// Put seeds a job record, cloning to avoid external mutations.
func (s *MemoryStore) Put(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j.Clone()
}

// FindByID retrieves a job by its ID, returning a clone.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j.Clone(), nil
}

// MarkProcessing records that a worker owns the job.
func (s *MemoryStore) MarkProcessing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	j.Status = StatusProcessing
	return nil
}

// MarkCompleted records the terminal completed status and result fields.
func (s *MemoryStore) MarkCompleted(_ context.Context, id, processedPath string, durationSeconds int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	j.Status = StatusCompleted
	j.ProcessedPath = &processedPath
	j.DurationSeconds = &durationSeconds
	j.CompletedAt = &completedAt
	return nil
}

// MarkFailed records the terminal failed status and the error message.
func (s *MemoryStore) MarkFailed(_ context.Context, id, errorMessage string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	j.Status = StatusFailed
	j.ErrorMessage = &errorMessage
	j.CompletedAt = &completedAt
	return nil
}
