package domain

import (
	"context"
	"time"
)

type NotificationChannel string

const (
	NotificationChannel_InApp   NotificationChannel = "in_app"
	NotificationChannel_Webhook NotificationChannel = "webhook"
	NotificationChannel_Email   NotificationChannel = "email"
)

type NotificationEventType string

const (
	NotificationEvent_RunStarted      NotificationEventType = "run_started"
	NotificationEvent_RunCompleted    NotificationEventType = "run_completed"
	NotificationEvent_RunFailed       NotificationEventType = "run_failed"
	NotificationEvent_ApprovalPending NotificationEventType = "approval_pending"
)

// NotificationEvent is an ephemeral domain event fanned out to a channel set.
// The event itself is not stored, only its delivery attempts are.
type NotificationEvent struct {
	EventType  NotificationEventType
	UserID     string
	Channels   []NotificationChannel
	TemplateID string
	Variables  map[string]string
	WebhookURL string
	RouteTo    string
	EntityID   string
	EntityType string
}

// ChannelOutcome is the per-channel result of a fan-out. One channel failing
// never blocks another.
type ChannelOutcome struct {
	Channel NotificationChannel `json:"channel"`
	Status  DeliveryStatus      `json:"status"`
	Error   string              `json:"error,omitempty"`
}

type InAppNotification struct {
	ID         string
	UserID     string
	EventType  NotificationEventType
	Message    string
	RouteTo    string
	EntityID   string
	EntityType string
	CreatedAt  time.Time
}

type NotificationStore interface {
	Insert(ctx context.Context, notification InAppNotification) error
}

type SendEmailParams struct {
	To      string
	Subject string
	Text    string
}

// EmailSender delivers the email channel. An unconfigured sender reports
// Configured() == false and the dispatcher records the channel as pending.
type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, params SendEmailParams) error
}
