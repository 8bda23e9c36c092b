package client

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/samber/lo"

	"github.com/Garsondee/clout-chase/internal/leaderboard"
	"github.com/Garsondee/clout-chase/internal/sim"
)

// Local adapts an in-process leaderboard.Service to sim.Leaderboard, for
// offline play and tests.
type Local struct {
	svc *leaderboard.Service
}

// NewLocal wraps svc.
func NewLocal(svc *leaderboard.Service) *Local { return &Local{svc: svc} }

// OpenLocal opens (or creates) a JSON-file leaderboard at path for offline
// play. The returned func closes the store.
func OpenLocal(path string, logger *log.Logger) (*Local, func() error, error) {
	store, err := leaderboard.OpenJSONStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open offline leaderboard: %w", err)
	}
	return NewLocal(leaderboard.NewService(store, logger)), store.Close, nil
}

var _ sim.Leaderboard = (*Local)(nil)

func (l *Local) EnsureUser(ctx context.Context, username string) (sim.User, error) {
	r, err := l.svc.EnsureUser(ctx, username)
	if err != nil {
		return sim.User{}, err
	}
	return toUser(r), nil
}

func (l *Local) RecordWin(ctx context.Context, username, rewardID string) (sim.User, error) {
	r, err := l.svc.RecordWin(ctx, username, rewardID)
	if errors.Is(err, leaderboard.ErrNotFound) {
		return sim.User{}, fmt.Errorf("%w: %w", sim.ErrUserNotFound, err)
	}
	if err != nil {
		return sim.User{}, err
	}
	return toUser(r), nil
}

func (l *Local) Leaderboard(ctx context.Context) ([]sim.Standing, error) {
	rows, err := l.svc.Leaderboard(ctx, leaderboard.DefaultLimit)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(s leaderboard.Standing, _ int) sim.Standing {
		return sim.Standing{Username: s.Username, UniqueRewards: s.UniqueRewards, TotalWins: s.TotalWins}
	}), nil
}

func toUser(r *leaderboard.Record) sim.User {
	return sim.User{
		Username:          r.Username,
		RewardsDiscovered: append([]string{}, r.RewardsDiscovered...),
		TotalWins:         r.TotalWins,
	}
}
