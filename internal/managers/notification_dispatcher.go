package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// NotificationDispatcher fans one event out to its channel set. Channels are
// independent: one channel failing never aborts the others.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event domain.NotificationEvent) (DispatchNotificationResult, error)
}

type DispatchNotificationResult struct {
	Deliveries []domain.ChannelOutcome
	RouteTo    string
}

type notificationDispatcher struct {
	store           domain.NotificationStore
	webhookDelivery WebhookDeliveryService
	emailSender     domain.EmailSender
}

type NotificationDispatcherDependencies struct {
	NotificationStore      domain.NotificationStore
	WebhookDeliveryService WebhookDeliveryService
	EmailSender            domain.EmailSender
}

func NewNotificationDispatcher(deps NotificationDispatcherDependencies) NotificationDispatcher {
	return &notificationDispatcher{
		store:           deps.NotificationStore,
		webhookDelivery: deps.WebhookDeliveryService,
		emailSender:     deps.EmailSender,
	}
}

var defaultTemplates = map[string]string{
	string(domain.NotificationEvent_RunStarted):      "Pipeline run started for {{pipeline}} on {{branch}}",
	string(domain.NotificationEvent_RunCompleted):    "Pipeline run completed for {{pipeline}} on {{branch}}",
	string(domain.NotificationEvent_RunFailed):       "Pipeline run failed for {{pipeline}} on {{branch}}: {{error}}",
	string(domain.NotificationEvent_ApprovalPending): "Approval pending for {{entity}}",
}

func (d *notificationDispatcher) Dispatch(ctx context.Context, event domain.NotificationEvent) (DispatchNotificationResult, error) {
	message := RenderTemplate(d.lookupTemplate(event), event.Variables)

	outcomes := make([]domain.ChannelOutcome, 0, len(event.Channels))

	for _, channel := range event.Channels {
		switch channel {
		case domain.NotificationChannel_InApp:
			outcomes = append(outcomes, d.deliverInApp(ctx, event, message))

		case domain.NotificationChannel_Webhook:
			outcomes = append(outcomes, d.deliverWebhook(ctx, event, message))

		case domain.NotificationChannel_Email:
			outcomes = append(outcomes, d.deliverEmail(ctx, event, message))

		default:
			outcomes = append(outcomes, domain.ChannelOutcome{
				Channel: channel,
				Status:  domain.DeliveryStatus_Failed,
				Error:   fmt.Sprintf("unknown channel %q", channel),
			})
		}
	}

	return DispatchNotificationResult{
		Deliveries: outcomes,
		RouteTo:    event.RouteTo,
	}, nil
}

func (d *notificationDispatcher) lookupTemplate(event domain.NotificationEvent) string {
	if event.TemplateID != "" {
		if template, ok := defaultTemplates[event.TemplateID]; ok {
			return template
		}
	}

	if template, ok := defaultTemplates[string(event.EventType)]; ok {
		return template
	}

	return string(event.EventType)
}

func (d *notificationDispatcher) deliverInApp(ctx context.Context, event domain.NotificationEvent, message string) domain.ChannelOutcome {
	err := d.store.Insert(ctx, domain.InAppNotification{
		ID:         xid.New().String(),
		UserID:     event.UserID,
		EventType:  event.EventType,
		Message:    message,
		RouteTo:    event.RouteTo,
		EntityID:   event.EntityID,
		EntityType: event.EntityType,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", event.UserID).Msg("Failed to insert in-app notification")

		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_InApp,
			Status:  domain.DeliveryStatus_Failed,
			Error:   err.Error(),
		}
	}

	return domain.ChannelOutcome{
		Channel: domain.NotificationChannel_InApp,
		Status:  domain.DeliveryStatus_Sent,
	}
}

func (d *notificationDispatcher) deliverWebhook(ctx context.Context, event domain.NotificationEvent, message string) domain.ChannelOutcome {
	if event.WebhookURL == "" {
		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_Webhook,
			Status:  domain.DeliveryStatus_Failed,
			Error:   "no webhook url provided",
		}
	}

	payload, err := json.Marshal(map[string]any{
		"event_type":  event.EventType,
		"user_id":     event.UserID,
		"message":     message,
		"entity_id":   event.EntityID,
		"entity_type": event.EntityType,
		"variables":   event.Variables,
	})
	if err != nil {
		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_Webhook,
			Status:  domain.DeliveryStatus_Failed,
			Error:   err.Error(),
		}
	}

	outcome, err := d.webhookDelivery.Deliver(ctx, DeliverWebhookParams{
		URL:     event.WebhookURL,
		Payload: payload,
	})
	if err != nil {
		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_Webhook,
			Status:  domain.DeliveryStatus_Failed,
			Error:   err.Error(),
		}
	}

	return outcome
}

func (d *notificationDispatcher) deliverEmail(ctx context.Context, event domain.NotificationEvent, message string) domain.ChannelOutcome {
	if d.emailSender == nil || !d.emailSender.Configured() {
		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_Email,
			Status:  domain.DeliveryStatus_Pending,
			Error:   "email channel not configured",
		}
	}

	recipient := event.Variables["email"]
	if recipient == "" {
		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_Email,
			Status:  domain.DeliveryStatus_Failed,
			Error:   "no recipient email address in event variables",
		}
	}

	err := d.emailSender.Send(ctx, domain.SendEmailParams{
		To:      recipient,
		Subject: fmt.Sprintf("Opsdeck: %s", event.EventType),
		Text:    message,
	})
	if err != nil {
		return domain.ChannelOutcome{
			Channel: domain.NotificationChannel_Email,
			Status:  domain.DeliveryStatus_Failed,
			Error:   err.Error(),
		}
	}

	return domain.ChannelOutcome{
		Channel: domain.NotificationChannel_Email,
		Status:  domain.DeliveryStatus_Sent,
	}
}

// RenderTemplate substitutes {{key}} tokens with values from variables.
// Unresolved tokens are left verbatim: templates and variable sets come from
// the same internal caller and are expected to match.
func RenderTemplate(template string, variables map[string]string) string {
	message := template

	for key, value := range variables {
		message = strings.ReplaceAll(message, "{{"+key+"}}", value)
	}

	return message
}
