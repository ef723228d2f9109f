// Package selector picks the words of a training session.
package selector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/lasty/internal/progress"
	"github.com/abhisek/lasty/internal/store"
)

// Sizes are the session lengths offered to learners.
var Sizes = []int{1, 3, 5, 10, 20}

// DefaultSize is the session length used when none is given.
const DefaultSize = 5

// Selector chooses session words, preferring words that are due.
type Selector struct {
	words   store.WordRepo
	now     func() time.Time
	newRand func() *rand.Rand
}

// New creates a Selector over the word repository.
func New(words store.WordRepo) *Selector {
	return &Selector{
		words: words,
		now:   time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// SelectForSession returns up to size distinct cards of the user in the
// given languages (all languages when empty).
//
// When at least size words are due, size of them are drawn at random.
// Otherwise every due word is taken and the rest is drawn from the words
// that are not yet due. The result is shuffled. Fewer than size cards come
// back only when the user does not have enough words.
func (s *Selector) SelectForSession(ctx context.Context, userID string, languages []string, size int) ([]store.WordCard, error) {
	if size <= 0 {
		return nil, nil
	}
	cutoff := progress.Day(s.now())

	due, err := s.words.DueWords(ctx, userID, languages, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load due words: %w", err)
	}
	rng := s.newRand()

	seen := make(map[string]bool, size)
	due = dedup(due, seen)
	if len(due) >= size {
		return sample(rng, due, size), nil
	}

	other, err := s.words.OtherWords(ctx, userID, languages, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load other words: %w", err)
	}
	other = dedup(other, seen)

	picked := append(due, sample(rng, other, size-len(due))...)
	rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked, nil
}

// sample draws n cards uniformly without replacement, in random order.
func sample(rng *rand.Rand, cards []store.WordCard, n int) []store.WordCard {
	out := make([]store.WordCard, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:min(n, len(out))]
}

// dedup drops cards whose ID is already in seen and records the rest.
func dedup(cards []store.WordCard, seen map[string]bool) []store.WordCard {
	var out []store.WordCard
	for _, c := range cards {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// ValidSize reports whether n is one of Sizes.
func ValidSize(n int) bool {
	for _, s := range Sizes {
		if s == n {
			return true
		}
	}
	return false
}
