// Package audit receives transaction receipts from the ledger engine.
// Retention and storage format belong to an external collaborator, so
// the default recorder just emits structured log lines; recording is
// fire-and-forget and never fails an operation.
package audit

import (
	"context"
	"sync"

	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/logging"
)

type Recorder interface {
	Record(ctx context.Context, receipt *domain.TransactionReceipt)
}

// LogRecorder writes each receipt as a structured log entry.
type LogRecorder struct{}

func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (r *LogRecorder) Record(ctx context.Context, receipt *domain.TransactionReceipt) {
	log := logging.FromContext(ctx)

	attrs := []any{
		"receipt_id", receipt.ID,
		"reference_id", receipt.ReferenceID,
		"account", receipt.AccountNumber,
		"type", receipt.Type,
		"amount", receipt.Amount.String(),
		"balance_before", receipt.BalanceBefore.String(),
		"balance_after", receipt.BalanceAfter.String(),
		"timestamp", receipt.Timestamp,
	}
	if receipt.CounterpartyAccount != nil {
		attrs = append(attrs, "counterparty", *receipt.CounterpartyAccount)
	}
	log.Info("transaction recorded", attrs...)
}

// MemoryRecorder keeps receipts in memory, in arrival order.
type MemoryRecorder struct {
	mu       sync.Mutex
	receipts []domain.TransactionReceipt
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, receipt *domain.TransactionReceipt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, *receipt)
}

func (r *MemoryRecorder) Receipts() []domain.TransactionReceipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TransactionReceipt, len(r.receipts))
	copy(out, r.receipts)
	return out
}
