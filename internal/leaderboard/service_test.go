package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// eachStore runs fn against a fresh JSON store and a fresh in-memory SQLite
// store.
func eachStore(t *testing.T, fn func(t *testing.T, svc *Service)) {
	t.Helper()
	t.Run("json", func(t *testing.T) {
		st, err := OpenJSONStore(filepath.Join(t.TempDir(), "db.json"))
		if err != nil {
			t.Fatalf("open json store: %v", err)
		}
		fn(t, NewService(st, nil))
	})
	t.Run("sqlite", func(t *testing.T) {
		st, err := OpenSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		defer st.Close()
		fn(t, NewService(st, nil))
	})
}

func TestEnsureUserIsCaseInsensitive(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		a, err := svc.EnsureUser(ctx, "  Alice ")
		if err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		if a.Username != "Alice" || a.ID == "" || a.TotalWins != 0 || len(a.RewardsDiscovered) != 0 {
			t.Fatalf("unexpected new record: %+v", a)
		}
		b, err := svc.EnsureUser(ctx, "ALICE")
		if err != nil {
			t.Fatalf("EnsureUser again: %v", err)
		}
		if b.ID != a.ID || b.Username != "Alice" {
			t.Fatalf("second call returned %+v, want id %s spelled Alice", b, a.ID)
		}
		rows, err := svc.Leaderboard(ctx, 0)
		if err != nil {
			t.Fatalf("Leaderboard: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(rows))
		}
	})
}

func TestEnsureUserValidates(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		for _, name := range []string{"", "   ", strings.Repeat("x", 33)} {
			if _, err := svc.EnsureUser(context.Background(), name); !errors.Is(err, ErrInvalidUsername) {
				t.Errorf("EnsureUser(%q) err = %v, want ErrInvalidUsername", name, err)
			}
		}
	})
}

func TestRecordWinTwiceSameReward(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		if _, err := svc.EnsureUser(ctx, "Alice"); err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		for i := 0; i < 2; i++ {
			if _, err := svc.RecordWin(ctx, "Alice", "7"); err != nil {
				t.Fatalf("RecordWin #%d: %v", i+1, err)
			}
		}
		r, err := svc.EnsureUser(ctx, "alice")
		if err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		if len(r.RewardsDiscovered) != 1 || r.RewardsDiscovered[0] != "7" {
			t.Fatalf("rewards = %v, want [7]", r.RewardsDiscovered)
		}
		if r.TotalWins != 2 {
			t.Fatalf("wins = %d, want 2", r.TotalWins)
		}
	})
}

func TestRecordWinErrors(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		if _, err := svc.RecordWin(ctx, "ghost", "1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("unknown user err = %v, want ErrNotFound", err)
		}
		if _, err := svc.EnsureUser(ctx, "bob"); err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		if _, err := svc.RecordWin(ctx, "bob", " "); !errors.Is(err, ErrInvalidReward) {
			t.Fatalf("blank reward err = %v, want ErrInvalidReward", err)
		}
	})
}

func TestLeaderboardOrdering(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		// Seeded through the store: C's five rewards with one win cannot be
		// reached through RecordWin.
		seed := []Record{
			{ID: "a", Username: "A", RewardsDiscovered: []string{"1", "2", "3"}, TotalWins: 5},
			{ID: "b", Username: "B", RewardsDiscovered: []string{"1", "2", "3"}, TotalWins: 9},
			{ID: "c", Username: "C", RewardsDiscovered: []string{"1", "2", "3", "4", "5"}, TotalWins: 1},
		}
		for i := range seed {
			if err := svc.store.Create(ctx, &seed[i]); err != nil {
				t.Fatalf("Create(%s): %v", seed[i].Username, err)
			}
		}
		rows, err := svc.Leaderboard(ctx, 0)
		if err != nil {
			t.Fatalf("Leaderboard: %v", err)
		}
		got := make([]string, len(rows))
		for i, r := range rows {
			got[i] = r.Username
		}
		if strings.Join(got, ",") != "C,B,A" {
			t.Fatalf("order = %v, want [C B A]", got)
		}
		want := []Standing{{"C", 5, 1}, {"B", 3, 9}, {"A", 3, 5}}
		for i := range want {
			if rows[i] != want[i] {
				t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
			}
		}
	})
}

func TestLeaderboardLimitAndTies(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		for i := 0; i < 12; i++ {
			if _, err := svc.EnsureUser(ctx, fmt.Sprintf("user%02d", i)); err != nil {
				t.Fatalf("EnsureUser: %v", err)
			}
		}
		if _, err := svc.RecordWin(ctx, "user11", "4"); err != nil {
			t.Fatalf("RecordWin: %v", err)
		}
		rows, err := svc.Leaderboard(ctx, 0)
		if err != nil {
			t.Fatalf("Leaderboard: %v", err)
		}
		if len(rows) != DefaultLimit {
			t.Fatalf("rows = %d, want %d", len(rows), DefaultLimit)
		}
		if rows[0].Username != "user11" || rows[1].Username != "user00" || rows[9].Username != "user08" {
			t.Fatalf("unexpected order: %+v", rows)
		}
		rows, _ = svc.Leaderboard(ctx, 3)
		if len(rows) != 3 {
			t.Fatalf("limit 3 returned %d rows", len(rows))
		}
	})
}

func TestEnsureUserConcurrent(t *testing.T) {
	eachStore(t, func(t *testing.T, svc *Service) {
		ctx := context.Background()
		var wg sync.WaitGroup
		ids := make([]string, 16)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r, err := svc.EnsureUser(ctx, "Racer")
				if err != nil {
					t.Errorf("EnsureUser: %v", err)
					return
				}
				ids[i] = r.ID
			}(i)
		}
		wg.Wait()
		for _, id := range ids[1:] {
			if id != ids[0] {
				t.Fatalf("concurrent EnsureUser created duplicates: %v", ids)
			}
		}
	})
}
