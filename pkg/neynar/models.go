package neynar

import "fcunfollow/pkg/models"

// BulkUsersResponse is the envelope returned by the user bulk endpoint
type BulkUsersResponse struct {
	Users []User `json:"users"`
}

// FollowingResponse is the envelope returned by the following endpoint.
// Entries arrive either as bare users or wrapped in a {"user": ...}
// object depending on the endpoint revision; Account unwraps both.
type FollowingResponse struct {
	Users []FollowEntry `json:"users"`
	Next  PageCursor    `json:"next"`
}

// FollowEntry is one entry of a following list
type FollowEntry struct {
	User
	Wrapped *User `json:"user,omitempty"`
}

// Account returns the entry's user regardless of wrapping
func (e *FollowEntry) Account() User {
	if e.Wrapped != nil {
		return *e.Wrapped
	}
	return e.User
}

// PageCursor carries pagination state for list endpoints
type PageCursor struct {
	Cursor string `json:"cursor"`
}

// User is a Farcaster user profile as the upstream reports it
type User struct {
	FID            int64   `json:"fid"`
	Username       string  `json:"username"`
	DisplayName    string  `json:"display_name"`
	PfpURL         string  `json:"pfp_url"`
	Profile        Profile `json:"profile"`
	FollowerCount  int     `json:"follower_count"`
	FollowingCount int     `json:"following_count"`
	// LastActive is epoch milliseconds; zero when the upstream omits it
	LastActive int64 `json:"last_active"`
}

// Profile holds the nested profile section of a user
type Profile struct {
	Bio Bio `json:"bio"`
}

// Bio holds the bio text of a profile
type Bio struct {
	Text string `json:"text"`
}

// ToFollowedAccount converts an upstream user into the domain model,
// applying the documented defaults for absent fields.
func (u *User) ToFollowedAccount() models.FollowedAccount {
	account := models.FollowedAccount{
		FID:            u.FID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.PfpURL,
		Bio:            u.Profile.Bio.Text,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		LastActiveAt:   u.LastActive,
	}
	account.Normalize()
	return account
}

// UnfollowResult is the upstream response to a delete-follow request
type UnfollowResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
