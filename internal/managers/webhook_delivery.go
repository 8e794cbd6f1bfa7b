package managers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// WebhookDeliveryService posts an event payload to a target URL with a
// bounded inline retry loop. Deliver blocks through the backoff sleeps;
// callers must tolerate the worst-case latency.
type WebhookDeliveryService interface {
	Deliver(ctx context.Context, params DeliverWebhookParams) (domain.ChannelOutcome, error)
}

type DeliverWebhookParams struct {
	URL     string
	Payload []byte
}

type webhookDeliveryService struct {
	client     *http.Client
	ledger     domain.DeliveryLedger
	maxRetries int
	baseDelay  time.Duration
}

type WebhookDeliveryServiceDependencies struct {
	Ledger     domain.DeliveryLedger
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

func NewWebhookDeliveryService(deps WebhookDeliveryServiceDependencies) WebhookDeliveryService {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxRetries := deps.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	baseDelay := deps.BaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	return &webhookDeliveryService{
		client:     &http.Client{Timeout: timeout},
		ledger:     deps.Ledger,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Deliver attempts the POST up to maxRetries times with linear backoff
// (baseDelay * attemptNumber between attempts). A 2xx terminates the sequence
// as sent; exhausting the budget demotes the ledger row to dead_letter with
// the final error preserved. A dead_letter row is written if and only if no
// attempt returned 2xx.
func (s *webhookDeliveryService) Deliver(ctx context.Context, params DeliverWebhookParams) (domain.ChannelOutcome, error) {
	attempt := domain.DeliveryAttempt{
		ID:        xid.New().String(),
		Channel:   domain.NotificationChannel_Webhook,
		Recipient: params.URL,
		Payload:   params.Payload,
		Status:    domain.DeliveryStatus_Pending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.ledger.Insert(ctx, attempt); err != nil {
		return domain.ChannelOutcome{}, fmt.Errorf("failed to record delivery attempt: %w", err)
	}

	deliveryID := uuid.NewString()

	var lastErr error

	for attemptNumber := 1; attemptNumber <= s.maxRetries; attemptNumber++ {
		err := s.post(ctx, params.URL, params.Payload, deliveryID)
		if err == nil {
			now := time.Now().UTC()

			attempt.Status = domain.DeliveryStatus_Sent
			attempt.RetryCount = attemptNumber - 1
			attempt.LastError = ""
			attempt.SentAt = &now

			if err := s.ledger.Update(ctx, attempt); err != nil {
				return domain.ChannelOutcome{}, fmt.Errorf("failed to record delivery result: %w", err)
			}

			return domain.ChannelOutcome{
				Channel: domain.NotificationChannel_Webhook,
				Status:  domain.DeliveryStatus_Sent,
			}, nil
		}

		lastErr = err

		attempt.RetryCount = attemptNumber
		attempt.LastError = err.Error()

		log.Warn().
			Err(err).
			Str("url", params.URL).
			Int("attempt", attemptNumber).
			Msg("Webhook delivery attempt failed")

		if attemptNumber < s.maxRetries {
			if err := s.ledger.Update(ctx, attempt); err != nil {
				return domain.ChannelOutcome{}, fmt.Errorf("failed to record delivery attempt: %w", err)
			}

			time.Sleep(s.baseDelay * time.Duration(attemptNumber))
		}
	}

	attempt.Status = domain.DeliveryStatus_DeadLetter

	if err := s.ledger.Update(ctx, attempt); err != nil {
		return domain.ChannelOutcome{}, fmt.Errorf("failed to record dead-letter: %w", err)
	}

	return domain.ChannelOutcome{
		Channel: domain.NotificationChannel_Webhook,
		Status:  domain.DeliveryStatus_DeadLetter,
		Error:   lastErr.Error(),
	}, nil
}

func (s *webhookDeliveryService) post(ctx context.Context, url string, payload []byte, deliveryID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Opsdeck-Delivery", deliveryID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook delivery failed with status %d", resp.StatusCode)
	}

	return nil
}
