// Package credits settles workspace processing credits. A credit is
// deducted by the web app when a job is enqueued; the worker's only
// responsibility is returning it when processing fails.
package credits

import (
	"context"
	"time"
)

// Workspace mirrors the workspaces table owned by the web application.
// The worker touches only the credits counter.
type Workspace struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Credits   int       `gorm:"column:credits"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName maps the model onto the shared schema.
func (Workspace) TableName() string {
	return "workspaces"
}

// Ledger refunds processing credits. Refunds are best effort: the
// executor logs failures and continues, a job outcome never depends on
// the ledger.
type Ledger interface {
	Refund(ctx context.Context, workspaceID string) error
}
