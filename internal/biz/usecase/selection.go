package usecase

import (
	"math/rand/v2"
	"sync"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// SelectionUsecase picks catalog messages for a context.
// It never mutates the catalog and never touches the ledger.
type SelectionUsecase struct {
	catalog *domain.Catalog

	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// NewSelectionUsecase creates a selection usecase. A nil rnd uses a randomly seeded source.
func NewSelectionUsecase(catalog *domain.Catalog, rnd *rand.Rand) *SelectionUsecase {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SelectionUsecase{catalog: catalog, rnd: rnd}
}

// Catalog returns the catalog the usecase selects from
func (uc *SelectionUsecase) Catalog() *domain.Catalog {
	return uc.catalog
}

// Select returns the best message for the buckets:
//  1. candidates whose buckets equal the query or "all"
//  2. highest exact-match score wins, ties broken uniformly at random
//  3. no candidate: uniform over the whole catalog
//  4. empty catalog: the sentinel message
func (uc *SelectionUsecase) Select(t domain.TimeBucket, d domain.DayBucket, s domain.SeasonBucket) domain.Message {
	return uc.SelectExcluding(t, d, s, nil)
}

// SelectExcluding is Select, but drops the excluded ids from the winning tier
// as long as at least one other message of that tier remains.
func (uc *SelectionUsecase) SelectExcluding(t domain.TimeBucket, d domain.DayBucket, s domain.SeasonBucket, exclude []int64) domain.Message {
	return uc.SelectAvoiding(t, d, s, nil, exclude)
}

// SelectAvoiding is SelectExcluding with a second, stronger exclusion: hidden ids
// are removed before ranking, so a lower tier wins over a hidden message. Hidden
// messages come back only when nothing else matches, or when the catalog holds
// nothing else.
func (uc *SelectionUsecase) SelectAvoiding(t domain.TimeBucket, d domain.DayBucket, s domain.SeasonBucket, hidden, recent []int64) domain.Message {
	n := uc.catalog.Len()
	if n == 0 {
		return domain.SentinelMessage()
	}

	var matches []domain.Message
	for i := 0; i < n; i++ {
		if m := uc.catalog.At(i); m.Matches(t, d, s) {
			matches = append(matches, m)
		}
	}
	matches = preferWithout(matches, hidden)

	if len(matches) == 0 {
		all := make([]domain.Message, 0, n)
		for i := 0; i < n; i++ {
			all = append(all, uc.catalog.At(i))
		}
		all = preferWithout(all, hidden)
		return all[uc.intN(len(all))]
	}

	best := -1
	var tier []domain.Message
	for _, m := range matches {
		score := m.Score(t, d, s)
		switch {
		case score > best:
			best = score
			tier = append(tier[:0], m)
		case score == best:
			tier = append(tier, m)
		}
	}

	tier = preferWithout(tier, recent)
	return tier[uc.intN(len(tier))]
}

// SelectForOccasion picks uniformly among messages tagged for the occasion
func (uc *SelectionUsecase) SelectForOccasion(tag string) (domain.Message, bool) {
	candidates := uc.catalog.WithSpecialTag(tag)
	if len(candidates) == 0 {
		return domain.Message{}, false
	}
	return candidates[uc.intN(len(candidates))], true
}

func (uc *SelectionUsecase) intN(n int) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.rnd.IntN(n)
}

// preferWithout drops the excluded ids unless that would leave nothing
func preferWithout(msgs []domain.Message, exclude []int64) []domain.Message {
	if len(exclude) == 0 {
		return msgs
	}
	if kept := withoutIDs(msgs, exclude); len(kept) > 0 {
		return kept
	}
	return msgs
}

func withoutIDs(msgs []domain.Message, exclude []int64) []domain.Message {
	skip := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var kept []domain.Message
	for _, m := range msgs {
		if _, ok := skip[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	return kept
}
