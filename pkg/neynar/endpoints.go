package neynar

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the base URL for the Neynar API
	DefaultBaseURL = "https://api.neynar.com"

	// UserBulkEndpoint resolves FIDs into full user profiles
	UserBulkEndpoint = "/v2/farcaster/user/bulk"

	// FollowingEndpoint lists the accounts a FID follows
	FollowingEndpoint = "/v2/farcaster/following"

	// FollowsEndpoint manages follow relationships
	FollowsEndpoint = "/v2/farcaster/follows"

	// DefaultFollowingLimit is the page size for the following endpoint
	DefaultFollowingLimit = 100

	// MaxBulkFIDs is the most FIDs one bulk request may carry
	MaxBulkFIDs = 100
)

// JoinFIDs renders a FID list as the comma-separated form the bulk
// endpoint expects
func JoinFIDs(fids []int64) string {
	parts := make([]string, len(fids))
	for i, fid := range fids {
		parts[i] = strconv.FormatInt(fid, 10)
	}
	return strings.Join(parts, ",")
}

// UserBulkURL constructs the URL for resolving one or more FIDs
func UserBulkURL(baseURL string, fids []int64) string {
	params := url.Values{}
	params.Set("fids", JoinFIDs(fids))
	return fmt.Sprintf("%s%s?%s", baseURL, UserBulkEndpoint, params.Encode())
}

// FollowingURL constructs the URL for fetching a user's following list
func FollowingURL(baseURL string, fid int64, limit int) string {
	if limit <= 0 {
		limit = DefaultFollowingLimit
	}
	params := url.Values{}
	params.Set("fid", strconv.FormatInt(fid, 10))
	params.Set("viewer_fid", strconv.FormatInt(fid, 10))
	params.Set("sort_type", "desc_chron")
	params.Set("limit", strconv.Itoa(limit))
	return fmt.Sprintf("%s%s?%s", baseURL, FollowingEndpoint, params.Encode())
}

// FollowsURL constructs the URL for managing follow relationships
func FollowsURL(baseURL string) string {
	return baseURL + FollowsEndpoint
}
