package sim

import (
	"math/rand"
	"strconv"
)

// RewardPool hands out reward asset ids without repeats until every id has
// been used once, then starts a fresh cycle.
type RewardPool struct {
	ids  []string
	used map[string]bool
	rng  *rand.Rand
}

// DefaultRewardIDs returns "1".."n", matching the reward image file names.
func DefaultRewardIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return ids
}

// NewRewardPool builds a pool over ids. Duplicate ids are collapsed.
func NewRewardPool(rng *rand.Rand, ids ...string) *RewardPool {
	seen := make(map[string]bool, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	return &RewardPool{ids: uniq, used: make(map[string]bool, len(uniq)), rng: rng}
}

// Next picks a random unused id. It returns "" for an empty pool.
func (p *RewardPool) Next() string {
	if len(p.ids) == 0 {
		return ""
	}
	if len(p.used) == len(p.ids) {
		p.used = make(map[string]bool, len(p.ids))
	}
	avail := make([]string, 0, len(p.ids)-len(p.used))
	for _, id := range p.ids {
		if !p.used[id] {
			avail = append(avail, id)
		}
	}
	id := avail[p.rng.Intn(len(avail))]
	p.used[id] = true
	return id
}

// Remaining is the number of ids left in the current cycle.
func (p *RewardPool) Remaining() int { return len(p.ids) - len(p.used) }

// Size is the number of distinct ids in the pool.
func (p *RewardPool) Size() int { return len(p.ids) }
