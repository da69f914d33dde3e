package progression

import (
	"fmt"
	"strings"
)

const lbsPerKg = 2.20462

// FormatWeight renders a weight with one decimal and its unit, e.g. "62.5 kg".
func FormatWeight(w float64, unit Unit) string {
	return fmt.Sprintf("%.1f %s", w, unit)
}

// ConvertWeight converts between kg and lbs. Unknown unit pairs return w.
func ConvertWeight(w float64, from, to Unit) float64 {
	switch {
	case from == UnitKg && to == UnitLbs:
		return w * lbsPerKg
	case from == UnitLbs && to == UnitKg:
		return w / lbsPerKg
	}
	return w
}

// Formula selects a one-rep-max estimation formula.
type Formula string

const (
	Epley   Formula = "epley"
	Brzycki Formula = "brzycki"
)

// ParseFormula maps a name to a Formula; the empty string selects Epley.
func ParseFormula(s string) (Formula, error) {
	switch Formula(strings.ToLower(s)) {
	case "", Epley:
		return Epley, nil
	case Brzycki:
		return Brzycki, nil
	}
	return "", fmt.Errorf("%w: unknown formula %q", ErrInvalidRange, s)
}

// EstimateOneRepMax estimates a 1RM from a set of reps at weight. A single
// rep returns the weight unchanged.
func EstimateOneRepMax(weight float64, reps int, f Formula) (float64, error) {
	if weight <= 0 {
		return 0, fmt.Errorf("%w: weight must be greater than 0, got %g", ErrInvalidWeight, weight)
	}
	if reps < 1 {
		return 0, fmt.Errorf("%w: reps must be at least 1, got %d", ErrInvalidRange, reps)
	}
	if reps == 1 {
		return weight, nil
	}
	switch f {
	case Brzycki:
		if reps >= 37 {
			return 0, fmt.Errorf("%w: brzycki is undefined for %d reps", ErrInvalidRange, reps)
		}
		return weight * 36 / float64(37-reps), nil
	case Epley, "":
		return weight * (1 + float64(reps)/30), nil
	}
	return 0, fmt.Errorf("%w: unknown formula %q", ErrInvalidRange, f)
}

// PercentageRow is one line of a 1RM percentage table.
type PercentageRow struct {
	Percent float64 `json:"percent"`
	Weight  float64 `json:"weight"`
	// Reps is the typical number of reps achievable at this intensity.
	Reps int `json:"reps"`
}

var repEstimates = []struct {
	percent float64
	reps    int
}{
	{100, 1}, {95, 2}, {90, 4}, {85, 6}, {80, 8}, {75, 10},
	{70, 12}, {65, 15}, {60, 20}, {55, 24}, {50, 30},
}

// PercentageTable lists working weights from 100% down to 50% of oneRepMax.
func PercentageTable(oneRepMax float64) []PercentageRow {
	rows := make([]PercentageRow, 0, len(repEstimates))
	for _, e := range repEstimates {
		rows = append(rows, PercentageRow{
			Percent: e.percent,
			Weight:  round2(oneRepMax * e.percent / 100),
			Reps:    e.reps,
		})
	}
	return rows
}

// OneRepMaxEstimate is a 1RM estimate with its percentage table.
type OneRepMaxEstimate struct {
	Weight    float64         `json:"weight"`
	Reps      int             `json:"reps"`
	Formula   Formula         `json:"formula"`
	OneRepMax float64         `json:"one_rep_max"`
	Table     []PercentageRow `json:"table"`
}

// Estimate estimates a 1RM, rounded to two decimals, and builds its table.
func Estimate(weight float64, reps int, f Formula) (*OneRepMaxEstimate, error) {
	if f == "" {
		f = Epley
	}
	est, err := EstimateOneRepMax(weight, reps, f)
	if err != nil {
		return nil, err
	}
	est = round2(est)
	return &OneRepMaxEstimate{
		Weight:    weight,
		Reps:      reps,
		Formula:   f,
		OneRepMax: est,
		Table:     PercentageTable(est),
	}, nil
}
