package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "fcunfollow"
	keyringPrefix  = "neynar-"
)

// KeyringStore uses the system keychain for credential storage
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Test keyring availability
	testKey := keyringPrefix + "test"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials in the system keyring
func (k *KeyringStore) Store(creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	key := keyringPrefix + creds.Label
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	// Also maintain a list of labels
	return k.addToLabelList(creds.Label)
}

// Retrieve gets credentials from the system keyring
func (k *KeyringStore) Retrieve(label string) (*Credentials, error) {
	key := keyringPrefix + label
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// List returns all credentials stored in the keyring
func (k *KeyringStore) List() ([]*Credentials, error) {
	labels, err := k.getLabelList()
	if err != nil {
		return nil, err
	}

	var result []*Credentials
	for _, label := range labels {
		if creds, err := k.Retrieve(label); err == nil {
			result = append(result, creds)
		}
	}

	return result, nil
}

// Delete removes credentials from the keyring
func (k *KeyringStore) Delete(label string) error {
	key := keyringPrefix + label
	if err := keyring.Delete(keyringService, key); err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return k.removeFromLabelList(label)
}

// Exists checks if credentials exist in the keyring
func (k *KeyringStore) Exists(label string) bool {
	key := keyringPrefix + label
	_, err := keyring.Get(keyringService, key)
	return err == nil
}

// addToLabelList maintains a list of stored labels
func (k *KeyringStore) addToLabelList(label string) error {
	labels, _ := k.getLabelList()

	for _, l := range labels {
		if l == label {
			return nil
		}
	}

	labels = append(labels, label)
	data := strings.Join(labels, ",")
	return keyring.Set(keyringService, keyringPrefix+"labels", data)
}

// removeFromLabelList removes a label from the list
func (k *KeyringStore) removeFromLabelList(label string) error {
	labels, err := k.getLabelList()
	if err != nil {
		return err
	}

	var updated []string
	for _, l := range labels {
		if l != label {
			updated = append(updated, l)
		}
	}

	if len(updated) == 0 {
		return keyring.Delete(keyringService, keyringPrefix+"labels")
	}

	data := strings.Join(updated, ",")
	return keyring.Set(keyringService, keyringPrefix+"labels", data)
}

// getLabelList retrieves the list of stored labels
func (k *KeyringStore) getLabelList() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringPrefix+"labels")
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	if data == "" {
		return nil, nil
	}

	return strings.Split(data, ","), nil
}
