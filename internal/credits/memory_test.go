package credits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_Refund(t *testing.T) {
	ledger := NewMemoryLedger()

	require.NoError(t, ledger.Refund(context.Background(), "ws-1"))
	require.NoError(t, ledger.Refund(context.Background(), "ws-1"))
	require.NoError(t, ledger.Refund(context.Background(), "ws-2"))

	assert.Equal(t, 2, ledger.Refunded("ws-1"))
	assert.Equal(t, 1, ledger.Refunded("ws-2"))
	assert.Equal(t, 0, ledger.Refunded("ws-3"))
}

func TestMemoryLedger_FailWith(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.FailWith(assert.AnError)

	err := ledger.Refund(context.Background(), "ws-1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, ledger.Refunded("ws-1"))
}
