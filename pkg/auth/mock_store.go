package auth

import "sync"

// MockStore is an in-memory credential store for testing
type MockStore struct {
	mu          sync.Mutex
	credentials map[string]*Credentials

	// Error injection for testing failure paths
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		credentials: make(map[string]*Credentials),
	}
}

// Store saves credentials in memory
func (m *MockStore) Store(creds *Credentials) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials[creds.Label] = creds
	return nil
}

// Retrieve gets credentials from memory
func (m *MockStore) Retrieve(label string) (*Credentials, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.credentials[label]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return creds, nil
}

// List returns all credentials from memory
func (m *MockStore) List() ([]*Credentials, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Credentials
	for _, creds := range m.credentials {
		result = append(result, creds)
	}
	return result, nil
}

// Delete removes credentials from memory
func (m *MockStore) Delete(label string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credentials[label]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.credentials, label)
	return nil
}

// Exists checks if credentials exist in memory
func (m *MockStore) Exists(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.credentials[label]
	return ok
}
