package managers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/rs/xid"
)

// credentialManager is the vault accessor. Blobs are ciphertext everywhere
// except inside Get, which decrypts for the lifetime of one request.
type credentialManager struct {
	repository domain.CredentialRepository
	encryptor  domain.CredentialEncryptor
}

type CredentialManagerDependencies struct {
	Repository domain.CredentialRepository
	Encryptor  domain.CredentialEncryptor
}

func NewCredentialManager(deps CredentialManagerDependencies) domain.CredentialVault {
	return &credentialManager{
		repository: deps.Repository,
		encryptor:  deps.Encryptor,
	}
}

func (m *credentialManager) Get(ctx context.Context, userID string, provider domain.Provider) (*domain.ProviderCredential, error) {
	record, err := m.repository.Get(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get credential record: %w", err)
	}

	plaintext, err := m.encryptor.Decrypt(record.EncryptedPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credential: %w", err)
	}

	var credential domain.ProviderCredential
	if err := json.Unmarshal(plaintext, &credential); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &credential, nil
}

// Save is an upsert: an existing (user, provider) row is replaced wholesale,
// never merged field by field.
func (m *credentialManager) Save(ctx context.Context, userID string, provider domain.Provider, credential domain.ProviderCredential) (domain.CredentialMetadata, error) {
	plaintext, err := json.Marshal(credential)
	if err != nil {
		return domain.CredentialMetadata{}, fmt.Errorf("failed to marshal credential: %w", err)
	}

	blob, err := m.encryptor.Encrypt(plaintext)
	if err != nil {
		return domain.CredentialMetadata{}, fmt.Errorf("failed to encrypt credential: %w", err)
	}

	now := time.Now().UTC()

	record, err := m.repository.Upsert(ctx, domain.CredentialRecord{
		ID:               xid.New().String(),
		UserID:           userID,
		Provider:         provider,
		EncryptedPayload: blob,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return domain.CredentialMetadata{}, fmt.Errorf("failed to upsert credential record: %w", err)
	}

	return metadataOf(record), nil
}

func (m *credentialManager) Delete(ctx context.Context, userID string, provider domain.Provider) error {
	if err := m.repository.Delete(ctx, userID, provider); err != nil {
		return fmt.Errorf("failed to delete credential record: %w", err)
	}

	return nil
}

func (m *credentialManager) List(ctx context.Context, userID string, provider *domain.Provider) ([]domain.CredentialMetadata, error) {
	records, err := m.repository.List(ctx, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to list credential records: %w", err)
	}

	metadata := make([]domain.CredentialMetadata, 0, len(records))

	for _, record := range records {
		metadata = append(metadata, metadataOf(record))
	}

	return metadata, nil
}

func metadataOf(record domain.CredentialRecord) domain.CredentialMetadata {
	return domain.CredentialMetadata{
		ID:        record.ID,
		Provider:  record.Provider,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
