package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultLimit is how many rows Leaderboard returns.
const DefaultLimit = 10

// Service implements the leaderboard rules over a Store. Mutations are
// serialised so get-or-create cannot produce duplicates.
type Service struct {
	store  Store
	logger *log.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService wraps store. A nil logger discards output.
func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// NormalizeUsername trims whitespace and validates length.
func NormalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if n := utf8.RuneCountInString(name); n == 0 || n > 32 {
		return "", ErrInvalidUsername
	}
	return name, nil
}

func normalizeReward(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 64 {
		return "", ErrInvalidReward
	}
	return id, nil
}

// EnsureUser returns the record for username, creating it on first use.
// The stored spelling is the one first registered.
func (s *Service) EnsureUser(ctx context.Context, username string) (*Record, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.store.FindByUsername(ctx, name)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	now := s.now().UTC()
	r = &Record{
		ID:                uuid.New().String(),
		Username:          name,
		RewardsDiscovered: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	s.logger.Printf("user_created id=%s username=%q", r.ID, r.Username)
	return r, nil
}

// RecordWin adds rewardID to the player's discovered set if it is new and
// always counts the win.
func (s *Service) RecordWin(ctx context.Context, username, rewardID string) (*Record, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	reward, err := normalizeReward(rewardID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.store.FindByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("record win for %q: %w", name, err)
	}
	isNew := !r.HasReward(reward)
	if isNew {
		r.RewardsDiscovered = append(r.RewardsDiscovered, reward)
	}
	r.TotalWins++
	r.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("record win for %q: %w", name, err)
	}
	s.logger.Printf("win_recorded username=%q reward=%s new=%t wins=%d unique=%d",
		r.Username, reward, isNew, r.TotalWins, r.UniqueRewards())
	return r, nil
}

// Leaderboard returns up to limit rows ordered by unique rewards, then
// total wins, both descending. Ties keep registration order. limit <= 0
// means DefaultLimit.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if a.UniqueRewards() != b.UniqueRewards() {
			return a.UniqueRewards() > b.UniqueRewards()
		}
		return a.TotalWins > b.TotalWins
	})
	if len(records) > limit {
		records = records[:limit]
	}
	out := make([]Standing, len(records))
	for i := range records {
		out[i] = Standing{
			Username:      records[i].Username,
			UniqueRewards: records[i].UniqueRewards(),
			TotalWins:     records[i].TotalWins,
		}
	}
	return out, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }
