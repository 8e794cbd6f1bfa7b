// Package postgres holds the pgx-backed implementations of the gateway's
// datastore contracts.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{
		pool: pool,
	}
}

func (r *CredentialRepository) Get(ctx context.Context, userID string, provider domain.Provider) (domain.CredentialRecord, error) {
	const query = `
		SELECT id, user_id, provider, encrypted_payload, created_at, updated_at
		FROM provider_credentials
		WHERE user_id = $1 AND provider = $2`

	var record domain.CredentialRecord

	err := r.pool.QueryRow(ctx, query, userID, provider).Scan(
		&record.ID,
		&record.UserID,
		&record.Provider,
		&record.EncryptedPayload,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CredentialRecord{}, domain.ErrCredentialNotFound
		}

		return domain.CredentialRecord{}, fmt.Errorf("failed to query credential: %w", err)
	}

	return record, nil
}

// Upsert replaces any existing row for (user, provider) wholesale. The
// original row's id and created_at survive a replace.
func (r *CredentialRepository) Upsert(ctx context.Context, record domain.CredentialRecord) (domain.CredentialRecord, error) {
	const query = `
		INSERT INTO provider_credentials (id, user_id, provider, encrypted_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			encrypted_payload = EXCLUDED.encrypted_payload,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.UserID,
		record.Provider,
		record.EncryptedPayload,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return domain.CredentialRecord{}, fmt.Errorf("failed to upsert credential: %w", err)
	}

	return record, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string, provider domain.Provider) error {
	const query = `DELETE FROM provider_credentials WHERE user_id = $1 AND provider = $2`

	if _, err := r.pool.Exec(ctx, query, userID, provider); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}

func (r *CredentialRepository) List(ctx context.Context, userID string, provider *domain.Provider) ([]domain.CredentialRecord, error) {
	query := `
		SELECT id, user_id, provider, encrypted_payload, created_at, updated_at
		FROM provider_credentials
		WHERE user_id = $1`
	args := []any{userID}

	if provider != nil {
		query += ` AND provider = $2`
		args = append(args, *provider)
	}

	query += ` ORDER BY provider`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	records := make([]domain.CredentialRecord, 0)

	for rows.Next() {
		var record domain.CredentialRecord

		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Provider,
			&record.EncryptedPayload,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credential rows: %w", err)
	}

	return records, nil
}
