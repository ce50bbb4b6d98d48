package models

import "fmt"

// FollowedAccount is a single account from the caller's following list,
// normalized from the upstream wire format. Fields the upstream may omit
// carry zero values until Normalize fills in the documented defaults.
type FollowedAccount struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"pfp_url"`
	Bio            string `json:"bio"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	// LastActiveAt is epoch milliseconds. Zero means the upstream did not
	// report activity; the classifier treats that as 30 days before now.
	LastActiveAt int64 `json:"last_active"`
}

// Normalize applies defaults for fields the upstream may omit.
func (a *FollowedAccount) Normalize() {
	if a.Username == "" {
		a.Username = fmt.Sprintf("fid:%d", a.FID)
	}
	if a.DisplayName == "" {
		a.DisplayName = a.Username
	}
	if a.AvatarURL == "" {
		a.AvatarURL = fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", a.FID)
	}
	if a.Bio == "" {
		a.Bio = "No bio available"
	}
	if a.FollowerCount < 0 {
		a.FollowerCount = 0
	}
	if a.FollowingCount < 0 {
		a.FollowingCount = 0
	}
}

// Recommendation is one account flagged for unfollowing, carrying the
// reason text of the first classification rule that matched it.
type Recommendation struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"pfp_url"`
	Bio            string `json:"bio"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	LastActiveAt   int64  `json:"last_active"`
	// FollowsBack is always false: reciprocity is never computed from
	// upstream data, the field is kept for wire compatibility.
	FollowsBack  bool   `json:"follows_back"`
	Reason       string `json:"reason"`
	DaysInactive int    `json:"days_inactive"`
}

// Analysis is the result of classifying a following list. The counters
// are independent tallies: one account can contribute to several of them
// but appears at most once in Recommendations.
type Analysis struct {
	TotalFollows      int              `json:"totalFollows"`
	InactiveUsers     int              `json:"inactiveUsers"`
	SpamAccounts      int              `json:"spamAccounts"`
	NotFollowingBack  int              `json:"notFollowingBack"`
	VeryInactiveUsers int              `json:"veryInactiveUsers"`
	Recommendations   []Recommendation `json:"recommendations"`
	Message           string           `json:"message,omitempty"`
}
