package credits

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormLedger settles credits against the shared MySQL database.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a ledger backed by db.
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// Verify interface implementation at compile time.
var _ Ledger = (*GormLedger)(nil)

// Refund returns one credit to the workspace. The increment happens in
// the database so concurrent refunds cannot lose updates.
func (l *GormLedger) Refund(ctx context.Context, workspaceID string) error {
	result := l.db.WithContext(ctx).
		Model(&Workspace{}).
		Where("id = ?", workspaceID).
		Updates(map[string]any{
			"credits":    gorm.Expr("credits + ?", 1),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("refund credit for workspace %s: %w", workspaceID, result.Error)
	}
	return nil
}
