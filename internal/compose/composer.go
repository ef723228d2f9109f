package compose

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/abhisek/lasty/internal/contentgen"
	"github.com/abhisek/lasty/internal/store"
	"github.com/abhisek/lasty/internal/tasktype"
)

// Config controls the behavior of the Composer.
type Config struct {
	// Distractors is the number of wrong options in a multiple-choice task.
	Distractors int

	// GrammarHints is how many of the learner's most frequent mistakes are
	// passed to sentence generation.
	GrammarHints int

	// FallbackOptions pad multiple-choice options when neither generated
	// distractors nor other session words are enough.
	FallbackOptions []string
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		Distractors:     3,
		GrammarHints:    3,
		FallbackOptions: []string{"different", "another", "alternative"},
	}
}

// Learner is what the composer needs to know about the user.
type Learner struct {
	NativeLanguage string
	Topics         []string
}

// LearnerFrom extracts a Learner from a stored profile.
func LearnerFrom(u *store.UserProfile) Learner {
	if u == nil {
		return Learner{}
	}
	return Learner{NativeLanguage: u.NativeLanguage, Topics: u.PreferredTopics}
}

// Composer builds tasks. It is safe for concurrent use: a session's
// foreground path and its prefetch goroutine share one Composer.
type Composer struct {
	weighter *tasktype.Weighter
	content  contentgen.Capability
	cfg      Config

	learner Learner
	pool    map[string][]string // language -> target words of the session
}

// New creates a Composer that is not bound to a learner.
func New(weighter *tasktype.Weighter, content contentgen.Capability, cfg Config) *Composer {
	return &Composer{weighter: weighter, content: content, cfg: cfg}
}

// ForSession returns a copy of c bound to a learner and to the words of one
// session, which pad multiple-choice options.
func (c *Composer) ForSession(learner Learner, words []store.WordCard) *Composer {
	pool := make(map[string][]string)
	for _, w := range words {
		pool[w.Language] = append(pool[w.Language], w.TargetText)
	}
	cp := *c
	cp.learner = learner
	cp.pool = pool
	return &cp
}

// Build composes a task for card. It never fails: when generated content
// is unavailable, or ctx is done, the degraded word-pair task is returned.
func (c *Composer) Build(ctx context.Context, card store.WordCard, history []store.ErrorRecord) *Task {
	typ := c.weighter.Choose(card.Progress)

	sentence, err := c.content.GenerateSentence(ctx, contentgen.SentenceRequest{
		Word:        card.TargetText,
		Language:    card.Language,
		Topics:      c.learner.Topics,
		GrammarHint: c.grammarHint(history),
	})
	if err != nil || strings.TrimSpace(sentence) == "" || ctx.Err() != nil {
		return c.Degraded(card)
	}

	t := &Task{
		ID:       newID(),
		WordID:   card.ID,
		Language: card.Language,
		Type:     typ,
		Native:   card.NativeText,
		Answer:   card.TargetText,
	}

	masked, found := maskWord(sentence, card.TargetText)

	return tasktype.Match(typ,
		func() *Task {
			c.fullTranslation(ctx, t, sentence)
			return t
		},
		func() *Task {
			if found {
				t.Sentence = masked
			}
			t.Prompt = fmt.Sprintf("Choose the %s word for %q:", card.Language, card.NativeText)
			t.Options = c.options(ctx, card)
			return t
		},
		func() *Task {
			if !found {
				t.Type = tasktype.FullTranslation
				c.fullTranslation(ctx, t, sentence)
				return t
			}
			t.Sentence = masked
			t.Prompt = fmt.Sprintf("Fill in the missing %s word (%q):", card.Language, card.NativeText)
			t.Reference = c.reference(ctx, sentence)
			return t
		},
	)
}

// Degraded returns the bare word-pair task: translate the native word.
func (c *Composer) Degraded(card store.WordCard) *Task {
	return &Task{
		ID:       newID(),
		WordID:   card.ID,
		Language: card.Language,
		Type:     tasktype.FullTranslation,
		Prompt:   fmt.Sprintf("Translate %q into %s:", card.NativeText, card.Language),
		Native:   card.NativeText,
		Answer:   card.TargetText,
		Degraded: true,
	}
}

// fullTranslation asks for the word with only the native-language rendering
// of the sentence as context.
func (c *Composer) fullTranslation(ctx context.Context, t *Task, sentence string) {
	t.Prompt = fmt.Sprintf("Translate %q into %s:", t.Native, t.Language)
	t.Reference = c.reference(ctx, sentence)
}

func (c *Composer) reference(ctx context.Context, sentence string) string {
	if c.learner.NativeLanguage == "" {
		return ""
	}
	ref, err := c.content.GenerateTranslation(ctx, sentence, c.learner.NativeLanguage)
	if err != nil {
		return ""
	}
	return ref
}

// options returns the answer plus up to Distractors wrong options in random
// order. The answer appears exactly once and no two options are equal
// ignoring case.
func (c *Composer) options(ctx context.Context, card store.WordCard) []string {
	seen := map[string]bool{contentgen.Normalize(card.TargetText): true}
	var wrong []string
	add := func(opt string) {
		key := contentgen.Normalize(opt)
		if len(wrong) >= c.cfg.Distractors || key == "" || seen[key] {
			return
		}
		seen[key] = true
		wrong = append(wrong, strings.TrimSpace(opt))
	}

	if generated, err := c.content.GenerateDistractors(ctx, card.TargetText, card.Language, c.cfg.Distractors); err == nil {
		for _, opt := range generated {
			add(opt)
		}
	}
	pool := slices.Clone(c.pool[card.Language])
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, opt := range pool {
		add(opt)
	}
	for _, opt := range c.cfg.FallbackOptions {
		add(opt)
	}

	options := append(wrong, card.TargetText)
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}

// grammarHint joins the most frequent mistake descriptions.
func (c *Composer) grammarHint(history []store.ErrorRecord) string {
	if len(history) == 0 || c.cfg.GrammarHints <= 0 {
		return ""
	}
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b store.ErrorRecord) int {
		return b.Count - a.Count
	})
	var hints []string
	for _, r := range sorted[:min(len(sorted), c.cfg.GrammarHints)] {
		hints = append(hints, r.Description)
	}
	return strings.Join(hints, "; ")
}

func newID() string {
	return ulid.Make().String()
}
