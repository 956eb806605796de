package events

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentCreated   = "PaymentCreated"
	EventPaymentConfirmed = "PaymentConfirmed"
	EventPaymentExpired   = "PaymentExpired"
	EventPaymentCaptured  = "PaymentCaptured"
)

// Satu topic untuk semua event payment; consumer filter pakai event_type.
const TopicPayments = "storefront.payments"

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // invoice id / order id
	Payload       json.RawMessage `json:"payload"`
}

type PaymentPayload struct {
	Provider      string `json:"provider"`
	ReferenceID   string `json:"reference_id"`
	OrderID       string `json:"order_id,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Coin          string `json:"coin,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Partition key = reference id, supaya semua event 1 pembayaran maintain urutan.
func PartitionKey(referenceID string) []byte { return []byte(referenceID) }
