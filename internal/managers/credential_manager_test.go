package managers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCredentialRepository struct {
	records map[string]domain.CredentialRecord
}

func newMemoryCredentialRepository() *memoryCredentialRepository {
	return &memoryCredentialRepository{records: map[string]domain.CredentialRecord{}}
}

func (r *memoryCredentialRepository) key(userID string, provider domain.Provider) string {
	return userID + "/" + string(provider)
}

func (r *memoryCredentialRepository) Get(ctx context.Context, userID string, provider domain.Provider) (domain.CredentialRecord, error) {
	record, ok := r.records[r.key(userID, provider)]
	if !ok {
		return domain.CredentialRecord{}, domain.ErrCredentialNotFound
	}

	return record, nil
}

func (r *memoryCredentialRepository) Upsert(ctx context.Context, record domain.CredentialRecord) (domain.CredentialRecord, error) {
	key := r.key(record.UserID, record.Provider)

	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	r.records[key] = record
	return record, nil
}

func (r *memoryCredentialRepository) Delete(ctx context.Context, userID string, provider domain.Provider) error {
	delete(r.records, r.key(userID, provider))
	return nil
}

func (r *memoryCredentialRepository) List(ctx context.Context, userID string, provider *domain.Provider) ([]domain.CredentialRecord, error) {
	records := make([]domain.CredentialRecord, 0)

	for _, record := range r.records {
		if record.UserID != userID {
			continue
		}

		if provider != nil && record.Provider != *provider {
			continue
		}

		records = append(records, record)
	}

	return records, nil
}

func testVaultKey(t *testing.T) string {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(key)
}

func newTestVault(t *testing.T, repository domain.CredentialRepository) domain.CredentialVault {
	t.Helper()

	encryptor, err := NewCredentialEncryptionService(testVaultKey(t))
	require.NoError(t, err)

	return NewCredentialManager(CredentialManagerDependencies{
		Repository: repository,
		Encryptor:  encryptor,
	})
}

func TestCredentialEncryptionService_RoundTrip(t *testing.T) {
	encryptor, err := NewCredentialEncryptionService(testVaultKey(t))
	require.NoError(t, err)

	plaintext := []byte(`{"token":"ghp_secret"}`)

	blob, err := encryptor.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "ghp_secret")

	decrypted, err := encryptor.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestCredentialEncryptionService_RejectsBadKey(t *testing.T) {
	_, err := NewCredentialEncryptionService("not-base64!")
	assert.Error(t, err)

	_, err = NewCredentialEncryptionService(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

func TestCredentialManager_SaveThenGet(t *testing.T) {
	vault := newTestVault(t, newMemoryCredentialRepository())

	saved := domain.ProviderCredential{
		Token:   "ghp_secret",
		BaseURL: "https://github.example.dev",
	}

	metadata, err := vault.Save(context.Background(), "user-1", domain.ProviderGithubActions, saved)
	require.NoError(t, err)
	assert.NotEmpty(t, metadata.ID)
	assert.Equal(t, domain.ProviderGithubActions, metadata.Provider)

	credential, err := vault.Get(context.Background(), "user-1", domain.ProviderGithubActions)
	require.NoError(t, err)
	require.NotNil(t, credential)
	assert.Equal(t, saved, *credential)
}

func TestCredentialManager_GetMissingReturnsNil(t *testing.T) {
	vault := newTestVault(t, newMemoryCredentialRepository())

	credential, err := vault.Get(context.Background(), "user-1", domain.ProviderJenkins)
	require.NoError(t, err)
	assert.Nil(t, credential)
}

func TestCredentialManager_ProviderIsolation(t *testing.T) {
	vault := newTestVault(t, newMemoryCredentialRepository())

	_, err := vault.Save(context.Background(), "user-1", domain.ProviderGithubActions, domain.ProviderCredential{Token: "ghp_secret"})
	require.NoError(t, err)

	_, err = vault.Save(context.Background(), "user-1", domain.ProviderCircleCI, domain.ProviderCredential{APIKey: "circle-key"})
	require.NoError(t, err)

	github, err := vault.Get(context.Background(), "user-1", domain.ProviderGithubActions)
	require.NoError(t, err)
	require.NotNil(t, github)
	assert.Equal(t, "ghp_secret", github.Token)
	assert.Empty(t, github.APIKey)

	circle, err := vault.Get(context.Background(), "user-1", domain.ProviderCircleCI)
	require.NoError(t, err)
	require.NotNil(t, circle)
	assert.Equal(t, "circle-key", circle.APIKey)
	assert.Empty(t, circle.Token)
}

// Save replaces the stored set wholesale, it never merges fields.
func TestCredentialManager_SaveReplacesWholesale(t *testing.T) {
	vault := newTestVault(t, newMemoryCredentialRepository())

	_, err := vault.Save(context.Background(), "user-1", domain.ProviderJenkins, domain.ProviderCredential{
		BaseURL:  "https://jenkins.acme.dev",
		Username: "deploy-bot",
		APIKey:   "jenkins-token",
	})
	require.NoError(t, err)

	_, err = vault.Save(context.Background(), "user-1", domain.ProviderJenkins, domain.ProviderCredential{
		BaseURL: "https://jenkins.acme.dev",
	})
	require.NoError(t, err)

	credential, err := vault.Get(context.Background(), "user-1", domain.ProviderJenkins)
	require.NoError(t, err)
	require.NotNil(t, credential)
	assert.Empty(t, credential.Username)
	assert.Empty(t, credential.APIKey)
}

func TestCredentialManager_DeleteRemovesRow(t *testing.T) {
	vault := newTestVault(t, newMemoryCredentialRepository())

	_, err := vault.Save(context.Background(), "user-1", domain.ProviderCircleCI, domain.ProviderCredential{APIKey: "circle-key"})
	require.NoError(t, err)

	require.NoError(t, vault.Delete(context.Background(), "user-1", domain.ProviderCircleCI))

	credential, err := vault.Get(context.Background(), "user-1", domain.ProviderCircleCI)
	require.NoError(t, err)
	assert.Nil(t, credential)
}

func TestCredentialManager_ListReturnsMetadataOnly(t *testing.T) {
	repository := newMemoryCredentialRepository()
	vault := newTestVault(t, repository)

	_, err := vault.Save(context.Background(), "user-1", domain.ProviderGithubActions, domain.ProviderCredential{Token: "ghp_secret"})
	require.NoError(t, err)

	metadata, err := vault.List(context.Background(), "user-1", nil)
	require.NoError(t, err)
	require.Len(t, metadata, 1)

	assert.Equal(t, domain.ProviderGithubActions, metadata[0].Provider)
	assert.NotEmpty(t, metadata[0].ID)

	// The stored blob is ciphertext, not the raw secret.
	record, err := repository.Get(context.Background(), "user-1", domain.ProviderGithubActions)
	require.NoError(t, err)
	assert.NotContains(t, string(record.EncryptedPayload), "ghp_secret")
}
