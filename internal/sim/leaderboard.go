package sim

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by RecordWin for an unknown username.
var ErrUserNotFound = errors.New("leaderboard: user not found")

// User is the identity record kept by the leaderboard service.
type User struct {
	Username          string   `json:"username"`
	RewardsDiscovered []string `json:"rewardsDiscovered"`
	TotalWins         int      `json:"totalWins"`
}

// Standing is one leaderboard row.
type Standing struct {
	Username      string `json:"username"`
	UniqueRewards int    `json:"uniqueRewards"`
	TotalWins     int    `json:"totalWins"`
}

// Leaderboard is the collaborator the engine reports wins to. Usernames
// match case-insensitively.
type Leaderboard interface {
	// EnsureUser returns the record for username, creating it if needed.
	EnsureUser(ctx context.Context, username string) (User, error)
	// RecordWin adds rewardID to the user's discovered set if absent and
	// always increments the win count.
	RecordWin(ctx context.Context, username, rewardID string) (User, error)
	// Leaderboard returns the top ten, ordered by unique rewards then wins.
	Leaderboard(ctx context.Context) ([]Standing, error)
}
