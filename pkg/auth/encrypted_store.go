package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore stores credentials in an encrypted file
type EncryptedFileStore struct {
	filePath   string
	passphrase []byte
}

// encryptedData represents the structure of the encrypted file
type encryptedData struct {
	Salt        []byte                  `json:"salt"`
	Nonce       []byte                  `json:"nonce"`
	Ciphertext  []byte                  `json:"ciphertext"`
	Credentials map[string]*Credentials `json:"-"`
}

// NewEncryptedFileStore creates a new encrypted file-based credential store
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	passphrase, err := getPassphrase()
	if err != nil {
		return nil, err
	}

	store := &EncryptedFileStore{
		filePath:   filePath,
		passphrase: passphrase,
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return store, nil
}

// getPassphrase gets the encryption passphrase from environment or generates one
func getPassphrase() ([]byte, error) {
	// Check environment variable first
	if pass := os.Getenv("FCUNFOLLOW_PASSPHRASE"); pass != "" {
		return []byte(pass), nil
	}

	// Use a machine-specific passphrase file
	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}

	passphraseFile := filepath.Join(configDir, ".passphrase")

	// Try to read existing passphrase
	if data, err := os.ReadFile(passphraseFile); err == nil {
		return data, nil
	}

	// Generate new passphrase
	passphrase := make([]byte, 32)
	if _, err := rand.Read(passphrase); err != nil {
		return nil, fmt.Errorf("failed to generate passphrase: %w", err)
	}

	// Save passphrase with restricted permissions
	if err := os.WriteFile(passphraseFile, passphrase, 0600); err != nil {
		return nil, fmt.Errorf("failed to save passphrase: %w", err)
	}

	return passphrase, nil
}

// Store saves credentials in the encrypted file
func (e *EncryptedFileStore) Store(creds *Credentials) error {
	all, err := e.loadAll()
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if all == nil {
		all = make(map[string]*Credentials)
	}

	all[creds.Label] = creds
	return e.saveAll(all)
}

// Retrieve gets credentials from the encrypted file
func (e *EncryptedFileStore) Retrieve(label string) (*Credentials, error) {
	all, err := e.loadAll()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}

	creds, ok := all[label]
	if !ok {
		return nil, ErrCredentialsNotFound
	}

	return creds, nil
}

// List returns all credentials from the encrypted file
func (e *EncryptedFileStore) List() ([]*Credentials, error) {
	all, err := e.loadAll()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []*Credentials
	for _, creds := range all {
		result = append(result, creds)
	}

	return result, nil
}

// Delete removes credentials from the encrypted file
func (e *EncryptedFileStore) Delete(label string) error {
	all, err := e.loadAll()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return err
	}

	if _, ok := all[label]; !ok {
		return ErrCredentialsNotFound
	}

	delete(all, label)

	if len(all) == 0 {
		return os.Remove(e.filePath)
	}

	return e.saveAll(all)
}

// Exists checks if credentials exist in the encrypted file
func (e *EncryptedFileStore) Exists(label string) bool {
	all, err := e.loadAll()
	if err != nil {
		return false
	}
	_, ok := all[label]
	return ok
}

// loadAll loads and decrypts all credentials from the file
func (e *EncryptedFileStore) loadAll() (map[string]*Credentials, error) {
	data, err := os.ReadFile(e.filePath)
	if err != nil {
		return nil, err
	}

	var encData encryptedData
	if err := json.Unmarshal(data, &encData); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted file: %w", err)
	}

	plaintext, err := e.decrypt(encData.Salt, encData.Nonce, encData.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var credentials map[string]*Credentials
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return credentials, nil
}

// saveAll encrypts and saves all credentials to the file
func (e *EncryptedFileStore) saveAll(credentials map[string]*Credentials) error {
	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	salt, nonce, ciphertext, err := e.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	encData := encryptedData{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}

	data, err := json.Marshal(encData)
	if err != nil {
		return fmt.Errorf("failed to marshal encrypted data: %w", err)
	}

	return os.WriteFile(e.filePath, data, 0600)
}

// encrypt encrypts data using AES-GCM with a key derived from the passphrase
func (e *EncryptedFileStore) encrypt(plaintext []byte) (salt, nonce, ciphertext []byte, err error) {
	salt = make([]byte, saltSize)
	if _, err = io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, nil, err
	}

	key := pbkdf2.Key(e.passphrase, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, err
	}

	ciphertext = gcm.Seal(nil, nonce, plaintext, nil)
	return salt, nonce, ciphertext, nil
}

// decrypt decrypts data using AES-GCM
func (e *EncryptedFileStore) decrypt(salt, nonce, ciphertext []byte) ([]byte, error) {
	key := pbkdf2.Key(e.passphrase, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		if strings.Contains(err.Error(), "authentication failed") {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return plaintext, nil
}
