package progression

import (
	"errors"
	"fmt"
	"sort"

	"github.com/meltforce/liftplan/internal/catalog"
)

// Validation errors. They are always wrapped with the offending field, so
// compare with errors.Is.
var (
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidWeight = errors.New("invalid weight")
	ErrInvalidUnit   = errors.New("invalid unit")
	ErrNoExercises   = errors.New("no exercises")
	ErrWrongCategory = errors.New("exercise not trainable in category")
)

// Bounds accepted by the generators.
const (
	MinWeeks              = 1
	MaxWeeks              = 52
	MinCycles             = 1
	MaxCycles             = 12
	MinSets               = 1
	MaxSets               = 10
	MinTrainingMaxPercent = 50
	MaxTrainingMaxPercent = 100
)

// IsValidationError reports whether err is one of the input validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidWeight) ||
		errors.Is(err, ErrInvalidUnit) ||
		errors.Is(err, ErrNoExercises) ||
		errors.Is(err, ErrWrongCategory)
}

func checkIntRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidRange, field, lo, hi, v)
	}
	return nil
}

func checkRepRange(repsMin, repsMax int) error {
	if repsMin < 1 || repsMin > repsMax {
		return fmt.Errorf("%w: reps_min must be at least 1 and not above reps_max, got %d-%d", ErrInvalidRange, repsMin, repsMax)
	}
	return nil
}

func checkIncrement(field string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0, got %g", ErrInvalidRange, field, v)
	}
	return nil
}

func checkUnit(u Unit) error {
	if u != UnitKg && u != UnitLbs {
		return fmt.Errorf("%w: %q (want kg or lbs)", ErrInvalidUnit, u)
	}
	return nil
}

// checkWeights rejects non-positive loads. Catalog bodyweight exercises may
// start at 0, meaning no added weight.
func checkWeights(field string, weights map[string]float64) error {
	for _, name := range sortedKeys(weights) {
		w := weights[name]
		if w < 0 || (w == 0 && !catalog.IsBodyweight(name)) {
			return fmt.Errorf("%w: %s[%s] must be greater than 0, got %g", ErrInvalidWeight, field, name, w)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
