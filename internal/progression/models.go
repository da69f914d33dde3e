package progression

import (
	"fmt"

	"github.com/meltforce/liftplan/internal/catalog"
)

// Unit is the display unit of every weight in a program. The engine never
// converts; it carries the unit through unchanged.
type Unit string

const (
	UnitKg  Unit = "kg"
	UnitLbs Unit = "lbs"
)

// Program identifies one of the supported program generators.
type Program string

const (
	FiveByFive   Program = "5x5"
	Wendler531   Program = "531"
	PushPullLegs Program = "ppl"
	UpperLower   Program = "upper_lower"
)

// Programs lists every supported program in display order.
var Programs = []Program{FiveByFive, Wendler531, PushPullLegs, UpperLower}

// ParseProgram maps an identifier such as "5x5" or "upper-lower" to a Program.
func ParseProgram(s string) (Program, error) {
	switch s {
	case "5x5", "fivebyfive":
		return FiveByFive, nil
	case "531", "5-3-1", "wendler":
		return Wendler531, nil
	case "ppl", "push-pull-legs":
		return PushPullLegs, nil
	case "upper_lower", "upper-lower", "upperlower":
		return UpperLower, nil
	}
	return "", fmt.Errorf("unknown program %q", s)
}

// HistoryPoint is an immutable snapshot of one trained unit, used verbatim as chart input.
type HistoryPoint struct {
	Week     int     `json:"week"`
	Session  int     `json:"session,omitempty"`
	Cycle    int     `json:"cycle,omitempty"`
	WeekName string  `json:"week_name,omitempty"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps,omitempty"`
	Volume   float64 `json:"volume,omitempty"`
	Percent  float64 `json:"percent,omitempty"`
}

// ExerciseState is the mutable per-exercise record of one program run.
// CurrentWeight and CurrentReps only change through the progression rules;
// History grows by one point per emitted session (or 5/3/1 week).
type ExerciseState struct {
	Name          string
	Category      catalog.Category
	CurrentWeight float64
	CurrentReps   int
	Cadence       int
	History       []HistoryPoint
}

// Prescription is what one exercise calls for in one session.
type Prescription struct {
	Weight      float64 `json:"weight"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	RepRange    string  `json:"rep_range,omitempty"`
	TotalVolume float64 `json:"total_volume"`
}

// Session is one training day of a linear program.
type Session struct {
	Session   int                     `json:"session"`
	Type      catalog.Category        `json:"type"`
	Exercises map[string]Prescription `json:"exercises"`
}

// Week groups the sessions of one week.
type Week struct {
	Week     int       `json:"week"`
	Sessions []Session `json:"sessions"`
}

// Summary is the short description of a program configuration kept in history.
type Summary struct {
	Weeks           int                `json:"weeks,omitempty"`
	Cycles          int                `json:"cycles,omitempty"`
	Exercises       []string           `json:"exercises"`
	StartingWeights map[string]float64 `json:"starting_weights"`
	Unit            Unit               `json:"unit"`
}

// Config is implemented by every program configuration.
type Config interface {
	Program() Program
	Summary() Summary
	Validate() error
	// ApplyDefaults fills zero-valued fields from the program defaults.
	ApplyDefaults()
}

// NewConfig returns an empty configuration for the program, ready to be
// decoded into and then completed with ApplyDefaults.
func NewConfig(p Program) (Config, error) {
	switch p {
	case FiveByFive:
		return &FiveByFiveConfig{}, nil
	case Wendler531:
		return &WendlerConfig{}, nil
	case PushPullLegs:
		return &PPLConfig{}, nil
	case UpperLower:
		return &UpperLowerConfig{}, nil
	}
	return nil, fmt.Errorf("unknown program %q", p)
}

// DefaultConfig returns the default configuration for the program.
func DefaultConfig(p Program) (Config, error) {
	switch p {
	case FiveByFive:
		cfg := DefaultFiveByFiveConfig()
		return &cfg, nil
	case Wendler531:
		cfg := DefaultWendlerConfig()
		return &cfg, nil
	case PushPullLegs:
		cfg := DefaultPPLConfig()
		return &cfg, nil
	case UpperLower:
		cfg := DefaultUpperLowerConfig()
		return &cfg, nil
	}
	return nil, fmt.Errorf("unknown program %q", p)
}

// NewResult returns an empty result of the program's generator, ready to be
// decoded into.
func NewResult(p Program) (any, error) {
	switch p {
	case FiveByFive:
		return &FiveByFiveResult{}, nil
	case Wendler531:
		return &WendlerResult{}, nil
	case PushPullLegs, UpperLower:
		return &SplitResult{}, nil
	}
	return nil, fmt.Errorf("unknown program %q", p)
}

// Generate validates cfg and runs the matching program driver.
func Generate(cfg Config) (any, error) {
	switch c := cfg.(type) {
	case *FiveByFiveConfig:
		return GenerateFiveByFive(*c)
	case *WendlerConfig:
		return GenerateWendler(*c)
	case *PPLConfig:
		return GeneratePPL(*c)
	case *UpperLowerConfig:
		return GenerateUpperLower(*c)
	}
	return nil, fmt.Errorf("unsupported config type %T", cfg)
}
