package leaderboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrInvalidUsername = errors.New("username must be 1-32 characters")
	ErrInvalidReward   = errors.New("reward id must be 1-64 characters")
)

// Record is one stored player.
type Record struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	RewardsDiscovered []string  `json:"rewardsDiscovered"`
	TotalWins         int       `json:"totalWins"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UniqueRewards is the size of the discovered set.
func (r *Record) UniqueRewards() int { return len(r.RewardsDiscovered) }

// HasReward reports whether id is already discovered.
func (r *Record) HasReward(id string) bool {
	return lo.Contains(r.RewardsDiscovered, id)
}

func (r *Record) clone() Record {
	out := *r
	out.RewardsDiscovered = append([]string(nil), r.RewardsDiscovered...)
	if out.RewardsDiscovered == nil {
		out.RewardsDiscovered = []string{}
	}
	return out
}

// Standing is one leaderboard row.
type Standing struct {
	Username      string `json:"username"`
	UniqueRewards int    `json:"uniqueRewards"`
	TotalWins     int    `json:"totalWins"`
}

// Store persists player records. Username lookups are case-insensitive.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*Record, error)
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	// List returns every record in insertion order.
	List(ctx context.Context) ([]Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// usernameKey is the case-folded form usernames are matched on.
func usernameKey(username string) string {
	return strings.ToLower(username)
}
