package domain

import (
	"context"
	"time"
)

type DeliveryStatus string

const (
	DeliveryStatus_Pending    DeliveryStatus = "pending"
	DeliveryStatus_Sent       DeliveryStatus = "sent"
	DeliveryStatus_Failed     DeliveryStatus = "failed"
	DeliveryStatus_DeadLetter DeliveryStatus = "dead_letter"
)

// DeliveryAttempt is one ledger row for a delivery sequence. RetryCount only
// increases; a row goes pending -> sent, or pending -> dead_letter after the
// retry budget is exhausted. Terminal states never regress.
type DeliveryAttempt struct {
	ID         string
	Channel    NotificationChannel
	Recipient  string
	Payload    []byte
	Status     DeliveryStatus
	RetryCount int
	LastError  string
	SentAt     *time.Time
	CreatedAt  time.Time
}

// DeliveryLedger persists delivery attempts. Rows are mutated only by the
// retry loop that created them.
type DeliveryLedger interface {
	Insert(ctx context.Context, attempt DeliveryAttempt) error
	Update(ctx context.Context, attempt DeliveryAttempt) error
}
