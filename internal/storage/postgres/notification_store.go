package postgres

import (
	"context"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationStore struct {
	pool *pgxpool.Pool
}

func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{
		pool: pool,
	}
}

func (s *NotificationStore) Insert(ctx context.Context, notification domain.InAppNotification) error {
	const query = `
		INSERT INTO notifications (id, user_id, event_type, message, route_to, entity_id, entity_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		notification.ID,
		notification.UserID,
		notification.EventType,
		notification.Message,
		notification.RouteTo,
		notification.EntityID,
		notification.EntityType,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}
