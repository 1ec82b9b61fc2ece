package credits

import (
	"context"
	"sync"
)

// MemoryLedger is an in-memory Ledger for tests.
type MemoryLedger struct {
	mu      sync.Mutex
	refunds map[string]int
	err     error
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{refunds: make(map[string]int)}
}

// Verify interface implementation at compile time.
var _ Ledger = (*MemoryLedger)(nil)

// FailWith makes every subsequent Refund return err.
func (l *MemoryLedger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Refund implements Ledger.
func (l *MemoryLedger) Refund(_ context.Context, workspaceID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.refunds[workspaceID]++
	return nil
}

// Refunded reports how many credits were returned to the workspace.
func (l *MemoryLedger) Refunded(workspaceID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refunds[workspaceID]
}
