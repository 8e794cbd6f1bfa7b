package controllers

import (
	"github.com/opsdeck/opsdeck/internal/managers"
	"github.com/opsdeck/opsdeck/internal/middlewares"
	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

type NotificationController struct {
	dispatcher managers.NotificationDispatcher
}

type NotificationControllerDependencies struct {
	NotificationDispatcher managers.NotificationDispatcher
}

func NewNotificationController(deps NotificationControllerDependencies) *NotificationController {
	return &NotificationController{
		dispatcher: deps.NotificationDispatcher,
	}
}

type SendNotificationRequest struct {
	EventType  string            `json:"eventType"`
	UserID     string            `json:"userId"`
	Channels   []string          `json:"channels"`
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
	WebhookURL string            `json:"webhookUrl"`
	RouteTo    string            `json:"routeTo"`
	EntityID   string            `json:"entityId"`
	EntityType string            `json:"entityType"`
}

// SendNotification fans one event out to the requested channels. The webhook
// channel retries inline, so the response can take up to the retry loop's
// bounded worst case.
func (c *NotificationController) SendNotification(ctx fiber.Ctx) error {
	var req SendNotificationRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.EventType == "" || len(req.Channels) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "eventType and channels are required",
		})
	}

	targetUserID := req.UserID
	if targetUserID == "" {
		targetUserID = middlewares.UserID(ctx)
	}

	channels := make([]domain.NotificationChannel, 0, len(req.Channels))
	for _, channel := range req.Channels {
		channels = append(channels, domain.NotificationChannel(channel))
	}

	result, err := c.dispatcher.Dispatch(ctx.RequestCtx(), domain.NotificationEvent{
		EventType:  domain.NotificationEventType(req.EventType),
		UserID:     targetUserID,
		Channels:   channels,
		TemplateID: req.TemplateID,
		Variables:  req.Variables,
		WebhookURL: req.WebhookURL,
		RouteTo:    req.RouteTo,
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
	})
	if err != nil {
		log.Error().Err(err).Str("event_type", req.EventType).Msg("Failed to dispatch notification")

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to dispatch notification",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":    true,
		"deliveries": result.Deliveries,
		"routeTo":    result.RouteTo,
	})
}
