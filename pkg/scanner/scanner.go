package scanner

import (
	"context"
	"fmt"
	"time"

	"fcunfollow/pkg/follows"
	"fcunfollow/pkg/logger"
	"fcunfollow/pkg/models"
)

const emptyFollowingMessage = "No following data found. You may not be following anyone yet."

// Scanner orchestrates a follow scan: verify the FID, fetch the
// following list, hydrate it into full profiles and classify the result.
type Scanner struct {
	client Client
	logger logger.Logger
	now    func() time.Time
}

// New creates a new Scanner instance
func New(client Client, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scanner{
		client: client,
		logger: log,
		now:    time.Now,
	}
}

// Scan runs a full follow analysis for the given FID. Upstream errors
// from the verification and following fetches propagate typed so the
// HTTP boundary can map them; hydration failures only shrink the result.
func (s *Scanner) Scan(ctx context.Context, fid int64) (*models.Analysis, error) {
	log := s.logger.WithField("fid", fmt.Sprintf("%d", fid))

	log.Info("Starting follow scan")

	user, err := s.client.FetchUser(ctx, fid)
	if err != nil {
		return nil, err
	}

	log.WithField("username", user.Username).Debug("User verified")

	following, err := s.client.FetchFollowing(ctx, fid)
	if err != nil {
		return nil, err
	}

	log.WithField("following", len(following)).Debug("Following list fetched")

	if len(following) == 0 {
		return emptyAnalysis(), nil
	}

	accounts := s.client.HydrateFollowing(ctx, fid, following)
	if len(accounts) == 0 {
		// Every hydration batch failed; treat like an empty list rather
		// than fabricating results
		log.Warn("No profiles hydrated from following list")
		return emptyAnalysis(), nil
	}

	analysis := follows.Classify(accounts, s.now())

	logger.LogScan(fmt.Sprintf("%d", fid), analysis.TotalFollows, len(analysis.Recommendations), nil)

	return &analysis, nil
}

func emptyAnalysis() *models.Analysis {
	return &models.Analysis{
		Recommendations: []models.Recommendation{},
		Message:         emptyFollowingMessage,
	}
}
