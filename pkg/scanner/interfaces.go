package scanner

import (
	"context"

	"fcunfollow/pkg/models"
	"fcunfollow/pkg/neynar"
)

// Client defines the upstream API operations a scan needs
type Client interface {
	FetchUser(ctx context.Context, fid int64) (*neynar.User, error)
	FetchFollowing(ctx context.Context, fid int64) ([]neynar.User, error)
	HydrateFollowing(ctx context.Context, fid int64, following []neynar.User) []models.FollowedAccount
}
