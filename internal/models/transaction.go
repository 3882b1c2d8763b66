package models

import (
	"time"

	"github.com/google/uuid"
)

// Credit transaction kind enums. The credit_transactions table is append-only:
// rows are never updated or deleted, and accounts.balance must always equal
// the sum of the account's transaction amounts.
const (
	TxKindPurchase        = "purchase"
	TxKindDebitUnlock     = "debit_unlock"
	TxKindAdminAdjustment = "admin_adjustment"
)

type CreditTransaction struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Amount      int       `json:"amount"` // positive = credit, negative = debit
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
