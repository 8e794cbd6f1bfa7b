package domain

import (
	"context"
	"errors"
	"time"
)

var ErrCredentialNotFound = errors.New("credential not found")

// ProviderCredential is the decrypted shape of one stored credential blob.
// It exists in memory for the lifetime of a single request and is never
// persisted or logged in this form.
type ProviderCredential struct {
	Token    string `json:"token,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	Username string `json:"username,omitempty"`
}

func (c ProviderCredential) Empty() bool {
	return c.Token == "" && c.APIKey == "" && c.BaseURL == "" && c.Username == ""
}

// CredentialRecord is the persisted row. EncryptedPayload is opaque
// ciphertext to every component except the vault's encryptor.
type CredentialRecord struct {
	ID               string
	UserID           string
	Provider         Provider
	EncryptedPayload []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CredentialMetadata is the listing view of a record. It never carries
// secret material.
type CredentialMetadata struct {
	ID        string    `json:"id"`
	Provider  Provider  `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialRepository is the datastore contract for credential rows, at most
// one per (user, provider) pair. Upsert replaces an existing row wholesale.
type CredentialRepository interface {
	Get(ctx context.Context, userID string, provider Provider) (CredentialRecord, error)
	Upsert(ctx context.Context, record CredentialRecord) (CredentialRecord, error)
	Delete(ctx context.Context, userID string, provider Provider) error
	List(ctx context.Context, userID string, provider *Provider) ([]CredentialRecord, error)
}

type CredentialEncryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// CredentialVault resolves and manages per-user provider credentials.
// Get returns (nil, nil) when no credential is configured; that is the
// normal "integration not connected" flow, not a fault.
type CredentialVault interface {
	Get(ctx context.Context, userID string, provider Provider) (*ProviderCredential, error)
	Save(ctx context.Context, userID string, provider Provider, credential ProviderCredential) (CredentialMetadata, error)
	Delete(ctx context.Context, userID string, provider Provider) error
	List(ctx context.Context, userID string, provider *Provider) ([]CredentialMetadata, error)
}
