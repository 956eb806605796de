package redisx

import "time"

const (
	// Cart per session: cart:{session_id} -> JSON array of items
	KeyCart = "cart:%s"

	// Invoice crypto: invoice:{invoice_id} -> JSON invoice
	KeyInvoice = "invoice:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart    = 24 * time.Hour
	TTLInvoice = 24 * time.Hour
	TTLDedup   = 48 * time.Hour
)
