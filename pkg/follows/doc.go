// Package follows classifies a user's following list into unfollow
// recommendations.
//
// Three heuristics run in fixed order over every account: very inactive
// (no cast in over 60 days), suspected spam (over 1000 followers and no
// cast in over a week), and inactive (no cast in over 30 days). Each
// matching heuristic bumps its own counter, so one account can count
// toward several tallies, but contributes at most one recommendation,
// reasoned by the first heuristic that matched it. The recommendation
// list is sorted most-inactive-first and capped at ten entries.
package follows
