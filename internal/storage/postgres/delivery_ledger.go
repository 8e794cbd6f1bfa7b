package postgres

import (
	"context"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryLedger struct {
	pool *pgxpool.Pool
}

func NewDeliveryLedger(pool *pgxpool.Pool) *DeliveryLedger {
	return &DeliveryLedger{
		pool: pool,
	}
}

func (l *DeliveryLedger) Insert(ctx context.Context, attempt domain.DeliveryAttempt) error {
	const query = `
		INSERT INTO delivery_attempts (id, channel, recipient, payload, status, retry_count, last_error, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := l.pool.Exec(ctx, query,
		attempt.ID,
		attempt.Channel,
		attempt.Recipient,
		attempt.Payload,
		attempt.Status,
		attempt.RetryCount,
		attempt.LastError,
		attempt.SentAt,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery attempt: %w", err)
	}

	return nil
}

func (l *DeliveryLedger) Update(ctx context.Context, attempt domain.DeliveryAttempt) error {
	const query = `
		UPDATE delivery_attempts
		SET status = $2, retry_count = $3, last_error = $4, sent_at = $5
		WHERE id = $1`

	_, err := l.pool.Exec(ctx, query,
		attempt.ID,
		attempt.Status,
		attempt.RetryCount,
		attempt.LastError,
		attempt.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update delivery attempt: %w", err)
	}

	return nil
}
