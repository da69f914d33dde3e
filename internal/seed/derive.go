package seed

import (
	"math"
	"sort"

	"github.com/meltforce/liftplan/internal/catalog"
	"github.com/meltforce/liftplan/internal/progression"
)

// Result holds the starting points derived from a training log. All weights
// are in kg.
type Result struct {
	Sessions int `json:"sessions"`
	Sets     int `json:"sets"`
	// WorkingWeights is the heaviest working-set weight per catalog exercise.
	WorkingWeights map[string]float64 `json:"working_weights"`
	// OneRepMaxes is the best Epley estimate per catalog exercise.
	OneRepMaxes map[string]float64 `json:"one_rep_maxes"`
	// Matched maps catalog keys to the logged exercise names they came from.
	Matched map[string][]string `json:"matched"`
	// Unknown lists logged exercise names with no catalog match.
	Unknown []string `json:"unknown"`
}

// Derive maps logged exercises onto the catalog and reduces their working
// sets to a starting weight and a 1RM estimate. Warm-up sets and sets
// without reps are ignored.
func Derive(sessions []Session) *Result {
	res := &Result{
		Sessions:       len(sessions),
		WorkingWeights: make(map[string]float64),
		OneRepMaxes:    make(map[string]float64),
		Matched:        make(map[string][]string),
		Unknown:        []string{},
	}
	unknown := make(map[string]bool)
	seen := make(map[string]map[string]bool)

	for _, s := range sessions {
		for _, ex := range s.Exercises {
			key, ok := catalog.Lookup(ex.Name)
			if !ok {
				unknown[ex.Name] = true
				continue
			}
			if seen[key] == nil {
				seen[key] = make(map[string]bool)
			}
			if !seen[key][ex.Name] {
				seen[key][ex.Name] = true
				res.Matched[key] = append(res.Matched[key], ex.Name)
			}

			for _, set := range ex.Sets {
				if set.IsWarmup || set.Reps < 1 {
					continue
				}
				res.Sets++
				if cur, ok := res.WorkingWeights[key]; !ok || set.WeightKg > cur {
					res.WorkingWeights[key] = set.WeightKg
				}
				if set.WeightKg <= 0 {
					continue
				}
				est, err := progression.EstimateOneRepMax(set.WeightKg, set.Reps, progression.Epley)
				if err == nil && est > res.OneRepMaxes[key] {
					res.OneRepMaxes[key] = round2(est)
				}
			}
		}
	}

	for name := range unknown {
		res.Unknown = append(res.Unknown, name)
	}
	sort.Strings(res.Unknown)
	for key := range res.Matched {
		sort.Strings(res.Matched[key])
	}
	return res
}

// Apply overwrites the starting weights (or one-rep maxes for 5/3/1) of cfg
// with derived values for exercises cfg already lists, converting from kg to
// the config's unit. It returns the names it updated, sorted.
func (r *Result) Apply(cfg progression.Config) []string {
	var updated []string
	set := func(weights map[string]float64, derived map[string]float64, unit progression.Unit) {
		for name := range weights {
			key, ok := catalog.Lookup(name)
			if !ok {
				continue
			}
			w, ok := lookupDerived(derived, key)
			if !ok || (w == 0 && !catalog.IsBodyweight(key)) {
				continue
			}
			weights[name] = round2(progression.ConvertWeight(w, progression.UnitKg, unit))
			updated = append(updated, name)
		}
	}

	switch c := cfg.(type) {
	case *progression.FiveByFiveConfig:
		set(c.Exercises, r.WorkingWeights, c.Unit)
	case *progression.WendlerConfig:
		set(c.MaxLifts, r.OneRepMaxes, c.Unit)
	case *progression.PPLConfig:
		set(c.PushExercises, r.WorkingWeights, c.Unit)
		set(c.PullExercises, r.WorkingWeights, c.Unit)
		set(c.LegExercises, r.WorkingWeights, c.Unit)
	case *progression.UpperLowerConfig:
		set(c.UpperExercises, r.WorkingWeights, c.Unit)
		set(c.LowerExercises, r.WorkingWeights, c.Unit)
	}
	sort.Strings(updated)
	return updated
}

// lookupDerived finds a derived value for key or an equivalent catalog key.
func lookupDerived(derived map[string]float64, key string) (float64, bool) {
	for _, k := range catalog.Equivalents(key) {
		if w, ok := derived[k]; ok {
			return w, true
		}
	}
	return 0, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
