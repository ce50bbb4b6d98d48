package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// MockNeynar is an httptest stand-in for the Neynar API. Users are
// registered by FID; the following list is served wrapped in the
// {"user": ...} envelope the real endpoint uses.
type MockNeynar struct {
	server *httptest.Server

	mu        sync.Mutex
	users     map[int64]map[string]interface{}
	following map[int64][]int64
	unfollows []int64

	// FailBulk makes every user bulk request return this status (0 = off)
	FailBulk int
	// FailFollowing makes the following endpoint return this status
	FailFollowing int
	// FailUnfollow makes the follows endpoint return this status
	FailUnfollow int
}

// NewMockNeynar creates and starts a mock Neynar server
func NewMockNeynar() *MockNeynar {
	m := &MockNeynar{
		users:     make(map[int64]map[string]interface{}),
		following: make(map[int64][]int64),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/farcaster/user/bulk", m.handleUserBulk)
	mux.HandleFunc("/v2/farcaster/following", m.handleFollowing)
	mux.HandleFunc("/v2/farcaster/follows", m.handleFollows)
	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the mock server's base URL
func (m *MockNeynar) URL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockNeynar) Close() {
	m.server.Close()
}

// AddUser registers a user profile
func (m *MockNeynar) AddUser(fid int64, username string, followerCount int, lastActive int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := map[string]interface{}{
		"fid":            fid,
		"username":       username,
		"display_name":   username,
		"follower_count": followerCount,
	}
	if lastActive > 0 {
		user["last_active"] = lastActive
	}
	m.users[fid] = user
}

// SetFollowing registers the following list for a FID
func (m *MockNeynar) SetFollowing(fid int64, follows []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.following[fid] = follows
}

// Unfollowed returns the FIDs unfollowed so far
func (m *MockNeynar) Unfollowed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.unfollows...)
}

func (m *MockNeynar) handleUserBulk(w http.ResponseWriter, r *http.Request) {
	if m.FailBulk != 0 {
		http.Error(w, `{"message":"injected failure"}`, m.FailBulk)
		return
	}

	if r.Header.Get("x-api-key") == "" {
		http.Error(w, `{"message":"missing api key"}`, http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var users []map[string]interface{}
	for _, part := range strings.Split(r.URL.Query().Get("fids"), ",") {
		fid, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		if user, ok := m.users[fid]; ok {
			users = append(users, user)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"users": users})
}

func (m *MockNeynar) handleFollowing(w http.ResponseWriter, r *http.Request) {
	if m.FailFollowing != 0 {
		http.Error(w, `{"message":"injected failure"}`, m.FailFollowing)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fid, _ := strconv.ParseInt(r.URL.Query().Get("fid"), 10, 64)

	var entries []map[string]interface{}
	for _, followedFID := range m.following[fid] {
		if user, ok := m.users[followedFID]; ok {
			entries = append(entries, map[string]interface{}{"user": user})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"users": entries})
}

func (m *MockNeynar) handleFollows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	if m.FailUnfollow != 0 {
		http.Error(w, `{"message":"injected failure"}`, m.FailUnfollow)
		return
	}

	var body struct {
		SignerUUID string `json:"signer_uuid"`
		TargetFID  int64  `json:"target_fid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SignerUUID == "" {
		http.Error(w, `{"message":"bad request"}`, http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.unfollows = append(m.unfollows, body.TargetFID)
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
