package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"runtime"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the 256-bit storage key.
const (
	keyMemory      = 64 * 1024 // KB
	keyIterations  = 1
	keyParallelism = 4
	keyLength      = 32
)

// keySalt is a fixed application salt. The key material itself is secret
// (env var or machine identity); the salt only domain-separates it.
var keySalt = []byte("ragctl-secret-store-v1")

// encryptor provides AES-256-GCM encryption for values at rest.
type encryptor struct {
	key []byte
}

// newEncryptor derives the storage key.
// Priority: RAGCTL_ENCRYPTION_KEY env var > machine-derived key.
func newEncryptor() *encryptor {
	material := os.Getenv("RAGCTL_ENCRYPTION_KEY")
	if material == "" {
		material = deriveMachineKey()
	}

	key := argon2.IDKey([]byte(material), keySalt, keyIterations, keyMemory, keyParallelism, keyLength)
	return &encryptor{key: key}
}

// newEncryptorWithKey builds an encryptor from a raw 32-byte key (tests).
func newEncryptorWithKey(key []byte) (*encryptor, error) {
	if len(key) != keyLength {
		return nil, errors.New("key must be 32 bytes for AES-256")
	}
	return &encryptor{key: key}, nil
}

// Encrypt seals plaintext with AES-256-GCM and base64-encodes the result.
func (e *encryptor) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt.
func (e *encryptor) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// deriveMachineKey builds machine-specific key material so secrets stored
// on one machine cannot be read from a copied database on another.
func deriveMachineKey() string {
	material := "ragctl-default-key"

	if hostname, err := os.Hostname(); err == nil {
		material += hostname
	}
	if home, err := os.UserHomeDir(); err == nil {
		material += home
	}
	material += runtime.GOOS + runtime.GOARCH

	return material
}
