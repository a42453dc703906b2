package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
)

// TransactionReceipt is the immutable record of a completed
// balance-affecting operation. Receipts are created by the ledger engine
// on every successful mutation and handed to the audit recorder; they are
// never modified afterwards.
type TransactionReceipt struct {
	ID                  uuid.UUID
	ReferenceID         uuid.UUID // shared by both legs of a transfer
	AccountNumber       string
	Type                TransactionType
	Amount              Money
	BalanceBefore       Money
	BalanceAfter        Money
	CounterpartyAccount *string
	Message             *string
	Timestamp           time.Time
}
