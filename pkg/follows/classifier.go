package follows

import (
	"fmt"
	"sort"
	"time"

	"fcunfollow/pkg/models"
)

const (
	dayMillis = 24 * 60 * 60 * 1000

	// defaultInactiveDays is assumed when the upstream reports no
	// activity at all. A deliberate conservative default, not "unknown".
	defaultInactiveDays = 30

	// maxRecommendations caps the ranked output
	maxRecommendations = 10
)

// rule is one classification heuristic. Rules are evaluated in fixed
// order; every matching rule bumps its counter, but only the first
// match supplies the recommendation reason.
type rule struct {
	name    string
	matches func(account models.FollowedAccount, daysInactive int) bool
	reason  func(daysInactive int) string
	tally   func(analysis *models.Analysis)
}

var rules = []rule{
	{
		name: "very_inactive",
		matches: func(_ models.FollowedAccount, daysInactive int) bool {
			return daysInactive > 60
		},
		reason: func(daysInactive int) string {
			return fmt.Sprintf("Haven't casted in %d days", daysInactive)
		},
		tally: func(analysis *models.Analysis) { analysis.VeryInactiveUsers++ },
	},
	{
		name: "suspected_spam",
		matches: func(account models.FollowedAccount, daysInactive int) bool {
			return account.FollowerCount > 1000 && daysInactive > 7
		},
		reason: func(int) string {
			return "Potential spam account (high followers, low activity)"
		},
		tally: func(analysis *models.Analysis) { analysis.SpamAccounts++ },
	},
	{
		name: "inactive",
		matches: func(_ models.FollowedAccount, daysInactive int) bool {
			return daysInactive > 30
		},
		reason: func(daysInactive int) string {
			return fmt.Sprintf("Inactive for %d days", daysInactive)
		},
		tally: func(analysis *models.Analysis) { analysis.InactiveUsers++ },
	},
}

// Classify evaluates every account in input order against the heuristic
// rules and returns aggregate counters plus a ranked recommendation
// list. It is a pure function of its input and the supplied clock:
// calling it twice with the same arguments yields identical output.
//
// NotFollowingBack is always zero and every recommendation carries
// follows_back=false; reciprocity is never computed from upstream data.
func Classify(accounts []models.FollowedAccount, now time.Time) models.Analysis {
	analysis := models.Analysis{
		TotalFollows:    len(accounts),
		Recommendations: []models.Recommendation{},
	}

	nowMillis := now.UnixMilli()
	recommended := make(map[int64]bool)

	for _, account := range accounts {
		account.Normalize()

		lastActive := account.LastActiveAt
		if lastActive == 0 {
			lastActive = nowMillis - defaultInactiveDays*dayMillis
		}
		daysInactive := int((nowMillis - lastActive) / dayMillis)

		for _, r := range rules {
			if !r.matches(account, daysInactive) {
				continue
			}
			r.tally(&analysis)

			// First matching rule wins the reason; one entry per account
			if recommended[account.FID] {
				continue
			}
			recommended[account.FID] = true
			analysis.Recommendations = append(analysis.Recommendations, models.Recommendation{
				FID:            account.FID,
				Username:       account.Username,
				DisplayName:    account.DisplayName,
				AvatarURL:      account.AvatarURL,
				Bio:            account.Bio,
				FollowerCount:  account.FollowerCount,
				FollowingCount: account.FollowingCount,
				LastActiveAt:   lastActive,
				FollowsBack:    false,
				Reason:         r.reason(daysInactive),
				DaysInactive:   daysInactive,
			})
		}
	}

	// Most inactive first
	sort.SliceStable(analysis.Recommendations, func(i, j int) bool {
		return analysis.Recommendations[i].DaysInactive > analysis.Recommendations[j].DaysInactive
	})

	if len(analysis.Recommendations) > maxRecommendations {
		analysis.Recommendations = analysis.Recommendations[:maxRecommendations]
	}

	return analysis
}
