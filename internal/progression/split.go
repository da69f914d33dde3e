package progression

import (
	"fmt"

	"github.com/meltforce/liftplan/internal/catalog"
)

// SplitParams holds the settings shared by the split-routine generators.
type SplitParams struct {
	Weeks int `json:"weeks"`
	// Frequency is the number of sessions per week; it selects the session pattern.
	Frequency int     `json:"frequency"`
	Sets      int     `json:"sets"`
	RepsMin   int     `json:"reps_min"`
	RepsMax   int     `json:"reps_max"`
	Increment float64 `json:"increment"`
	Unit      Unit    `json:"unit"`
}

// SplitResult is the generated schedule of a split routine. Chart data and
// final weights are nested under the session category.
type SplitResult struct {
	WeeklyData   []Week                                         `json:"weekly_data"`
	ChartData    map[catalog.Category]map[string][]HistoryPoint `json:"chart_data"`
	FinalWeights map[catalog.Category]map[string]float64        `json:"final_weights"`
	Unit         Unit                                           `json:"unit"`
	Sets         int                                            `json:"sets"`
	RepsMin      int                                            `json:"reps_min"`
	RepsMax      int                                            `json:"reps_max"`
	Frequency    int                                            `json:"frequency"`
}

var (
	pplPatterns = map[int][]catalog.Category{
		3: repeatPattern(1, catalog.Push, catalog.Pull, catalog.Legs),
		6: repeatPattern(2, catalog.Push, catalog.Pull, catalog.Legs),
	}
	upperLowerPatterns = map[int][]catalog.Category{
		2: repeatPattern(1, catalog.Upper, catalog.Lower),
		4: repeatPattern(2, catalog.Upper, catalog.Lower),
	}
)

func defaultSplitParams(frequency int) SplitParams {
	return SplitParams{
		Weeks:     12,
		Frequency: frequency,
		Sets:      3,
		RepsMin:   8,
		RepsMax:   12,
		Increment: 2.5,
		Unit:      UnitKg,
	}
}

func (p *SplitParams) applyDefaults(d SplitParams) {
	if p.Weeks == 0 {
		p.Weeks = d.Weeks
	}
	if p.Frequency == 0 {
		p.Frequency = d.Frequency
	}
	if p.Sets == 0 {
		p.Sets = d.Sets
	}
	if p.RepsMin == 0 {
		p.RepsMin = d.RepsMin
	}
	if p.RepsMax == 0 {
		p.RepsMax = d.RepsMax
	}
	if p.Increment == 0 {
		p.Increment = d.Increment
	}
	if p.Unit == "" {
		p.Unit = d.Unit
	}
}

func (p SplitParams) validate(patterns map[int][]catalog.Category) error {
	if err := checkIntRange("weeks", p.Weeks, MinWeeks, MaxWeeks); err != nil {
		return err
	}
	if _, ok := patterns[p.Frequency]; !ok {
		return fmt.Errorf("%w: unsupported frequency %d", ErrInvalidRange, p.Frequency)
	}
	if err := checkIntRange("sets", p.Sets, MinSets, MaxSets); err != nil {
		return err
	}
	if err := checkRepRange(p.RepsMin, p.RepsMax); err != nil {
		return err
	}
	if err := checkIncrement("increment", p.Increment); err != nil {
		return err
	}
	return checkUnit(p.Unit)
}

// categoryWeights pairs a session category with its starting weights and
// the config field they were read from.
type categoryWeights struct {
	field    string
	category catalog.Category
	weights  map[string]float64
}

func validateGroups(groups []categoryWeights) error {
	total := 0
	for _, g := range groups {
		if err := checkWeights(g.field, g.weights); err != nil {
			return err
		}
		total += len(g.weights)
	}
	if total == 0 {
		return ErrNoExercises
	}
	return nil
}

func runSplit(p SplitParams, pattern []catalog.Category, groups []categoryWeights) *SplitResult {
	var lifts []Lift
	for _, g := range groups {
		lifts = append(lifts, liftsFor(g.category, g.weights, nil)...)
	}

	run := RunLinear(LinearPlan{
		Weeks:     p.Weeks,
		Pattern:   pattern,
		Lifts:     lifts,
		Sets:      p.Sets,
		RepsMin:   p.RepsMin,
		RepsMax:   p.RepsMax,
		Increment: p.Increment,
	})

	res := &SplitResult{
		WeeklyData:   run.Weeks,
		ChartData:    make(map[catalog.Category]map[string][]HistoryPoint, len(groups)),
		FinalWeights: make(map[catalog.Category]map[string]float64, len(groups)),
		Unit:         p.Unit,
		Sets:         p.Sets,
		RepsMin:      p.RepsMin,
		RepsMax:      p.RepsMax,
		Frequency:    p.Frequency,
	}
	for _, g := range groups {
		res.ChartData[g.category] = make(map[string][]HistoryPoint, len(g.weights))
		res.FinalWeights[g.category] = make(map[string]float64, len(g.weights))
	}
	for _, st := range run.States {
		res.ChartData[st.Category][st.Name] = st.History
		res.FinalWeights[st.Category][st.Name] = round2(st.CurrentWeight)
	}
	return res
}

func splitSummary(p SplitParams, groups []categoryWeights) Summary {
	s := Summary{Weeks: p.Weeks, StartingWeights: make(map[string]float64), Unit: p.Unit}
	for _, g := range groups {
		for _, name := range sortedKeys(g.weights) {
			s.Exercises = append(s.Exercises, name)
			s.StartingWeights[name] = g.weights[name]
		}
	}
	return s
}

// PPLConfig configures the Push/Pull/Legs generator.
type PPLConfig struct {
	SplitParams
	PushExercises map[string]float64 `json:"push_exercises"`
	PullExercises map[string]float64 `json:"pull_exercises"`
	LegExercises  map[string]float64 `json:"leg_exercises"`
}

// DefaultPPLConfig returns the stock six-day Push/Pull/Legs starting point.
func DefaultPPLConfig() PPLConfig {
	return PPLConfig{
		SplitParams: defaultSplitParams(6),
		PushExercises: map[string]float64{
			"benchPress":      60,
			"overheadPress":   40,
			"inclinePress":    50,
			"lateralRaise":    10,
			"tricepExtension": 25,
		},
		PullExercises: map[string]float64{
			"deadlift":    80,
			"barbellRow":  60,
			"pullUp":      0,
			"latPulldown": 40,
			"bicepCurl":   20,
		},
		LegExercises: map[string]float64{
			"squat":        80,
			"legPress":     100,
			"legCurl":      40,
			"legExtension": 50,
			"calfRaise":    60,
		},
	}
}

func (c *PPLConfig) groups() []categoryWeights {
	return []categoryWeights{
		{"push_exercises", catalog.Push, c.PushExercises},
		{"pull_exercises", catalog.Pull, c.PullExercises},
		{"leg_exercises", catalog.Legs, c.LegExercises},
	}
}

func (c *PPLConfig) Program() Program { return PushPullLegs }

func (c *PPLConfig) ApplyDefaults() {
	d := DefaultPPLConfig()
	c.SplitParams.applyDefaults(d.SplitParams)
	if c.PushExercises == nil && c.PullExercises == nil && c.LegExercises == nil {
		c.PushExercises, c.PullExercises, c.LegExercises = d.PushExercises, d.PullExercises, d.LegExercises
	}
}

func (c *PPLConfig) Validate() error {
	if err := c.SplitParams.validate(pplPatterns); err != nil {
		return err
	}
	return validateGroups(c.groups())
}

func (c *PPLConfig) Summary() Summary { return splitSummary(c.SplitParams, c.groups()) }

// GeneratePPL validates cfg and builds the Push/Pull/Legs schedule.
func GeneratePPL(cfg PPLConfig) (*SplitResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return runSplit(cfg.SplitParams, pplPatterns[cfg.Frequency], cfg.groups()), nil
}

// UpperLowerConfig configures the Upper/Lower split generator.
type UpperLowerConfig struct {
	SplitParams
	UpperExercises map[string]float64 `json:"upper_exercises"`
	LowerExercises map[string]float64 `json:"lower_exercises"`
}

// DefaultUpperLowerConfig returns the stock four-day Upper/Lower starting point.
func DefaultUpperLowerConfig() UpperLowerConfig {
	return UpperLowerConfig{
		SplitParams: defaultSplitParams(4),
		UpperExercises: map[string]float64{
			"benchPress":      60,
			"barbellRow":      60,
			"overheadPress":   40,
			"pullUp":          0,
			"inclinePress":    50,
			"cableRow":        50,
			"lateralRaise":    10,
			"bicepCurl":       20,
			"tricepExtension": 25,
		},
		LowerExercises: map[string]float64{
			"squat":            80,
			"romanianDeadlift": 70,
			"legPress":         100,
			"legCurl":          40,
			"legExtension":     50,
			"lunges":           40,
			"calfRaise":        60,
			"hipThrust":        60,
		},
	}
}

func (c *UpperLowerConfig) groups() []categoryWeights {
	return []categoryWeights{
		{"upper_exercises", catalog.Upper, c.UpperExercises},
		{"lower_exercises", catalog.Lower, c.LowerExercises},
	}
}

func (c *UpperLowerConfig) Program() Program { return UpperLower }

func (c *UpperLowerConfig) ApplyDefaults() {
	d := DefaultUpperLowerConfig()
	c.SplitParams.applyDefaults(d.SplitParams)
	if c.UpperExercises == nil && c.LowerExercises == nil {
		c.UpperExercises, c.LowerExercises = d.UpperExercises, d.LowerExercises
	}
}

func (c *UpperLowerConfig) Validate() error {
	if err := c.SplitParams.validate(upperLowerPatterns); err != nil {
		return err
	}
	return validateGroups(c.groups())
}

func (c *UpperLowerConfig) Summary() Summary { return splitSummary(c.SplitParams, c.groups()) }

// GenerateUpperLower validates cfg and builds the Upper/Lower schedule.
func GenerateUpperLower(cfg UpperLowerConfig) (*SplitResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return runSplit(cfg.SplitParams, upperLowerPatterns[cfg.Frequency], cfg.groups()), nil
}
