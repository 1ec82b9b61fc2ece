package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Compile-time check that GormStore implements Store.
var _ Store = (*GormStore)(nil)

// GormStore persists job records in the shared application database.
// All updates are partial column sets keyed by job id, so concurrent
// workers writing different jobs never interfere and a redelivered job
// overwrites its own previous fields last-write-wins.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a job store backed by the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindByID retrieves a job record by id.
func (s *GormStore) FindByID(ctx context.Context, id string) (*Job, error) {
	var j Job
	err := s.db.WithContext(ctx).First(&j, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", id, err)
	}
	return &j, nil
}

// MarkProcessing updates only the status column.
func (s *GormStore) MarkProcessing(ctx context.Context, id string) error {
	return s.update(ctx, id, map[string]any{
		"status": StatusProcessing,
	})
}

// MarkCompleted updates the completed field set in one write.
func (s *GormStore) MarkCompleted(ctx context.Context, id, processedPath string, durationSeconds int, completedAt time.Time) error {
	return s.update(ctx, id, map[string]any{
		"status":        StatusCompleted,
		"processed_url": processedPath,
		"duration":      durationSeconds,
		"completed_at":  completedAt,
	})
}

// MarkFailed updates the failed field set in one write.
func (s *GormStore) MarkFailed(ctx context.Context, id, errorMessage string, completedAt time.Time) error {
	return s.update(ctx, id, map[string]any{
		"status":        StatusFailed,
		"error_message": errorMessage,
		"completed_at":  completedAt,
	})
}

func (s *GormStore) update(ctx context.Context, id string, fields map[string]any) error {
	// RowsAffected is not checked: MySQL reports zero affected rows for a
	// value-identical update, which redelivered jobs legitimately produce.
	res := s.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update job %s: %w", id, res.Error)
	}
	return nil
}
