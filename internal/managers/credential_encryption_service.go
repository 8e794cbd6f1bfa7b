package managers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// credentialEncryptionService seals and opens credential blobs with
// ChaCha20-Poly1305. The stored blob is nonce || ciphertext.
type credentialEncryptionService struct {
	key []byte
}

func NewCredentialEncryptionService(serviceKeyBase64 string) (domain.CredentialEncryptor, error) {
	serviceKey, err := decodeServiceKey(serviceKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vault key: %w", err)
	}

	key, err := deriveEncryptionKey(serviceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	return &credentialEncryptionService{
		key: key,
	}, nil
}

func (s *credentialEncryptionService) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *credentialEncryptionService) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("credential blob too short")
	}

	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	nonce, ciphertext := blob[:chacha20poly1305.NonceSize], blob[chacha20poly1305.NonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

func decodeServiceKey(base64Key string) ([]byte, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}

	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("invalid key length: expected 32 bytes, got %d", len(keyBytes))
	}

	return keyBytes, nil
}

func deriveEncryptionKey(serviceKey []byte) ([]byte, error) {
	salt := []byte("opsdeck-credential-vault")
	info := []byte("encryption-key")

	hkdf := hkdf.New(sha256.New, serviceKey, salt, info)
	key := make([]byte, chacha20poly1305.KeySize) // 32 bytes

	if _, err := io.ReadFull(hkdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	return key, nil
}
