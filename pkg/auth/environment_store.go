package auth

import (
	"errors"
	"os"
	"time"
)

// EnvironmentStore reads credentials from environment variables.
// This is a read-only store used as a fallback for deployments
// that configure credentials via the environment.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return errors.New("environment store is read-only")
}

// Retrieve gets credentials from environment variables.
// The label is ignored since the environment holds a single set.
func (e *EnvironmentStore) Retrieve(label string) (*Credentials, error) {
	apiKey := os.Getenv("NEYNAR_API_KEY")
	if apiKey == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Label:        "environment",
		APIKey:       apiKey,
		SignerUUID:   os.Getenv("NEYNAR_SIGNER_UUID"),
		LastModified: time.Now(),
	}, nil
}

// List returns the environment credentials if set
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return nil, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return errors.New("environment store is read-only")
}

// Exists checks if environment credentials are set
func (e *EnvironmentStore) Exists(label string) bool {
	return os.Getenv("NEYNAR_API_KEY") != ""
}
