package progression

import (
	"fmt"

	"github.com/meltforce/liftplan/internal/catalog"
)

const (
	fiveByFiveSessions = 3
	fiveByFiveSets     = 5
	fiveByFiveReps     = 5
)

// FiveByFiveConfig configures the 5x5 generator: three full-body sessions a
// week, every lift at 5 sets of 5.
type FiveByFiveConfig struct {
	Weeks     int                `json:"weeks"`
	Exercises map[string]float64 `json:"exercises"`
	Increment float64            `json:"increment"`
	// Cadence overrides the catalog advancement cadence per exercise; the
	// catalog advances deadlift every other session. Values run from 1 to the
	// three sessions of a week.
	Cadence map[string]int `json:"cadence,omitempty"`
	Unit    Unit           `json:"unit"`
}

// FiveByFiveResult is the generated 5x5 schedule.
type FiveByFiveResult struct {
	WeeklyData   []Week                    `json:"weekly_data"`
	ChartData    map[string][]HistoryPoint `json:"chart_data"`
	FinalWeights map[string]float64        `json:"final_weights"`
	Unit         Unit                      `json:"unit"`
}

// DefaultFiveByFiveConfig returns the stock 5x5 starting point.
func DefaultFiveByFiveConfig() FiveByFiveConfig {
	return FiveByFiveConfig{
		Weeks: 12,
		Exercises: map[string]float64{
			"squat":         60,
			"bench":         40,
			"deadlift":      80,
			"overheadPress": 30,
			"row":           50,
		},
		Increment: 2.5,
		Unit:      UnitKg,
	}
}

func (c *FiveByFiveConfig) Program() Program { return FiveByFive }

func (c *FiveByFiveConfig) ApplyDefaults() {
	d := DefaultFiveByFiveConfig()
	if c.Weeks == 0 {
		c.Weeks = d.Weeks
	}
	if c.Exercises == nil {
		c.Exercises = d.Exercises
	}
	if c.Increment == 0 {
		c.Increment = d.Increment
	}
	if c.Unit == "" {
		c.Unit = d.Unit
	}
}

func (c *FiveByFiveConfig) Validate() error {
	if err := checkIntRange("weeks", c.Weeks, MinWeeks, MaxWeeks); err != nil {
		return err
	}
	if len(c.Exercises) == 0 {
		return ErrNoExercises
	}
	if err := checkWeights("exercises", c.Exercises); err != nil {
		return err
	}
	if err := checkIncrement("increment", c.Increment); err != nil {
		return err
	}
	for _, name := range sortedKeys(c.Cadence) {
		if _, ok := c.Exercises[name]; !ok {
			return fmt.Errorf("%w: cadence[%s] names no configured exercise", ErrInvalidRange, name)
		}
		if err := checkIntRange("cadence["+name+"]", c.Cadence[name], 1, fiveByFiveSessions); err != nil {
			return err
		}
	}
	return checkUnit(c.Unit)
}

func (c *FiveByFiveConfig) Summary() Summary {
	return Summary{
		Weeks:           c.Weeks,
		Exercises:       sortedKeys(c.Exercises),
		StartingWeights: c.Exercises,
		Unit:            c.Unit,
	}
}

func (c *FiveByFiveConfig) cadence(name string) int {
	if n, ok := c.Cadence[name]; ok {
		return n
	}
	return catalog.Cadence(name)
}

// GenerateFiveByFive validates cfg and builds the 5x5 schedule.
func GenerateFiveByFive(cfg FiveByFiveConfig) (*FiveByFiveResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run := RunLinear(LinearPlan{
		Weeks:     cfg.Weeks,
		Pattern:   repeatPattern(fiveByFiveSessions, catalog.Full),
		Lifts:     liftsFor(catalog.Full, cfg.Exercises, cfg.cadence),
		Sets:      fiveByFiveSets,
		RepsMin:   fiveByFiveReps,
		RepsMax:   fiveByFiveReps,
		Increment: cfg.Increment,
	})

	res := &FiveByFiveResult{
		WeeklyData:   run.Weeks,
		ChartData:    make(map[string][]HistoryPoint, len(run.States)),
		FinalWeights: make(map[string]float64, len(run.States)),
		Unit:         cfg.Unit,
	}
	for _, st := range run.States {
		res.ChartData[st.Name] = st.History
		res.FinalWeights[st.Name] = round2(st.CurrentWeight)
	}
	return res, nil
}
