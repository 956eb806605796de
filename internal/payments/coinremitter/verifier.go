package coinremitter

import (
	"context"
	"github.com/shopspring/decimal"
)

// Observation is what a verifier saw on chain for an invoice.
type Observation struct {
	Found         bool
	TxHash        string
	Amount        decimal.Decimal
	Confirmations int
}

// TransactionVerifier isolates chain lookups from the invoice state machine.
// FindPayment looks for any payment to the invoice address; LookupTransaction
// checks one hash the customer claims to have sent.
type TransactionVerifier interface {
	FindPayment(ctx context.Context, inv Invoice) (Observation, error)
	LookupTransaction(ctx context.Context, inv Invoice, hash string) (Observation, error)
}
