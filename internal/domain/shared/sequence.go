package shared

import "context"

// SequenceKind names a database-backed document number sequence
type SequenceKind string

const (
	SequenceInvoiceNumber       SequenceKind = "invoice_number_seq"
	SequencePurchaseOrderNumber SequenceKind = "purchase_order_number_seq"
)

// SequenceAllocator hands out strictly increasing counters for document
// numbers. Counters are global per kind and never reset, so two documents can
// never collide even across a year boundary. Implementations must be safe
// under concurrent allocation.
type SequenceAllocator interface {
	Next(ctx context.Context, kind SequenceKind) (int64, error)
}
