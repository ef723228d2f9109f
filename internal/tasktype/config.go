package tasktype

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Weights is a relative weight per task type. Weights need not sum to 1.
type Weights struct {
	FullTranslation float64
	MultipleChoice  float64
	FillBlank       float64
}

// Of returns the weight for t.
func (w Weights) Of(t Type) float64 {
	return Match(t,
		func() float64 { return w.FullTranslation },
		func() float64 { return w.MultipleChoice },
		func() float64 { return w.FillBlank },
	)
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.FullTranslation + w.MultipleChoice + w.FillBlank
}

// share returns the normalized weight of t.
func (w Weights) share(t Type) float64 {
	return w.Of(t) / w.Total()
}

// favored returns the type with the largest weight.
func (w Weights) favored() Type {
	best := All[0]
	for _, t := range All[1:] {
		if w.Of(t) > w.Of(best) {
			best = t
		}
	}
	return best
}

// Config holds the weight vector for each progress band.
type Config struct {
	// Low applies to progress 0-40 and must favor multiple choice.
	Low Weights
	// Mid applies to progress 41-70 and must favor fill-in-the-blank.
	Mid Weights
	// High applies to progress 71-100 and must favor full translation.
	High Weights
}

// Band upper bounds (inclusive).
const (
	LowMax = 40
	MidMax = 70
)

// DefaultConfig returns the default weight table.
func DefaultConfig() Config {
	return Config{
		Low:  Weights{FullTranslation: 0.15, MultipleChoice: 0.55, FillBlank: 0.30},
		Mid:  Weights{FullTranslation: 0.25, MultipleChoice: 0.20, FillBlank: 0.55},
		High: Weights{FullTranslation: 0.60, MultipleChoice: 0.10, FillBlank: 0.30},
	}
}

// ForProgress returns the weight vector of the band containing p.
func (c Config) ForProgress(p int) Weights {
	switch {
	case p <= LowMax:
		return c.Low
	case p <= MidMax:
		return c.Mid
	default:
		return c.High
	}
}

// Validate checks that weights are usable and that each band keeps its bias:
// multiple choice dominates the low band, fill-in-the-blank the middle band
// and full translation the high band, with full translation gaining share
// and multiple choice losing share as progress rises.
func (c Config) Validate() error {
	bands := []struct {
		name  string
		w     Weights
		favor Type
	}{
		{"low", c.Low, MultipleChoice},
		{"mid", c.Mid, FillBlank},
		{"high", c.High, FullTranslation},
	}
	for _, b := range bands {
		for _, t := range All {
			if b.w.Of(t) < 0 {
				return fmt.Errorf("%s band: negative weight for %s", b.name, t)
			}
		}
		if b.w.Total() <= 0 {
			return fmt.Errorf("%s band: weights sum to zero", b.name)
		}
		if got := b.w.favored(); got != b.favor {
			return fmt.Errorf("%s band must favor %s, favors %s", b.name, b.favor, got)
		}
	}
	if !(c.Low.share(FullTranslation) < c.High.share(FullTranslation)) {
		return errors.New("full translation share must grow from low to high band")
	}
	if !(c.Low.share(MultipleChoice) > c.High.share(MultipleChoice)) {
		return errors.New("multiple choice share must shrink from low to high band")
	}
	return nil
}

// ConfigFromEnv returns DefaultConfig overridden by LASTY_TASK_WEIGHTS when
// set. The variable holds three bands separated by ';', each with three
// comma-separated weights in the order full_translation, multiple_choice,
// fill_blank, e.g. "0.15,0.55,0.3;0.25,0.2,0.55;0.6,0.1,0.3".
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	raw := os.Getenv("LASTY_TASK_WEIGHTS")
	if raw == "" {
		return cfg, nil
	}
	parsed, err := ParseWeights(raw)
	if err != nil {
		return cfg, fmt.Errorf("LASTY_TASK_WEIGHTS: %w", err)
	}
	return parsed, nil
}

// ParseWeights parses the LASTY_TASK_WEIGHTS format and validates it.
func ParseWeights(raw string) (Config, error) {
	parts := strings.Split(raw, ";")
	if len(parts) != 3 {
		return Config{}, fmt.Errorf("expected 3 bands, got %d", len(parts))
	}
	var bands [3]Weights
	for i, part := range parts {
		fields := strings.Split(part, ",")
		if len(fields) != 3 {
			return Config{}, fmt.Errorf("band %d: expected 3 weights, got %d", i+1, len(fields))
		}
		var vals [3]float64
		for j, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return Config{}, fmt.Errorf("band %d: %w", i+1, err)
			}
			vals[j] = v
		}
		bands[i] = Weights{FullTranslation: vals[0], MultipleChoice: vals[1], FillBlank: vals[2]}
	}
	cfg := Config{Low: bands[0], Mid: bands[1], High: bands[2]}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
