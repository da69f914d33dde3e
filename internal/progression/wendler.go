package progression

import (
	"strconv"

	"github.com/meltforce/liftplan/internal/catalog"
)

const wendlerWeeksPerCycle = 4

// SchemeSet is one set of the fixed 5/3/1 table.
type SchemeSet struct {
	Reps    int     `json:"reps"`
	Percent float64 `json:"percent"`
	AMRAP   bool    `json:"amrap"`
}

// SchemeWeek is one week of the fixed 5/3/1 table.
type SchemeWeek struct {
	Week int         `json:"week"`
	Name string      `json:"name"`
	Sets []SchemeSet `json:"sets"`
}

var wendlerScheme = [wendlerWeeksPerCycle]SchemeWeek{
	{Week: 1, Name: "Week 1 (5/5/5+)", Sets: []SchemeSet{{5, 65, false}, {5, 75, false}, {5, 85, true}}},
	{Week: 2, Name: "Week 2 (3/3/3+)", Sets: []SchemeSet{{3, 70, false}, {3, 80, false}, {3, 90, true}}},
	{Week: 3, Name: "Week 3 (5/3/1+)", Sets: []SchemeSet{{5, 75, false}, {3, 85, false}, {1, 95, true}}},
	{Week: 4, Name: "Deload", Sets: []SchemeSet{{5, 40, false}, {5, 50, false}, {5, 60, false}}},
}

// WendlerScheme returns a copy of the 5/3/1 percentage table.
func WendlerScheme() []SchemeWeek {
	out := make([]SchemeWeek, len(wendlerScheme))
	for i, w := range wendlerScheme {
		w.Sets = append([]SchemeSet(nil), w.Sets...)
		out[i] = w
	}
	return out
}

// Increments is the per-cycle training-max increase by lift class.
type Increments struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// WendlerConfig configures the 5/3/1 generator.
type WendlerConfig struct {
	Cycles int `json:"cycles"`
	// MaxLifts maps each lift to the lifter's one-rep max.
	MaxLifts           map[string]float64 `json:"max_lifts"`
	TrainingMaxPercent int                `json:"training_max_percent"`
	Increments         Increments         `json:"increments"`
	Unit               Unit               `json:"unit"`
}

// PrescribedSet is one set of a 5/3/1 week. For AMRAP sets Reps reads "5+"
// and MinReps holds the planned minimum; actual performance is not modeled.
type PrescribedSet struct {
	Reps    string  `json:"reps"`
	MinReps int     `json:"min_reps"`
	Percent float64 `json:"percent"`
	Weight  float64 `json:"weight"`
	AMRAP   bool    `json:"amrap,omitempty"`
}

// LiftWeek is one lift's work for one 5/3/1 week.
type LiftWeek struct {
	TrainingMax float64         `json:"training_max"`
	Sets        []PrescribedSet `json:"sets"`
}

type CycleWeek struct {
	Week      int                 `json:"week"`
	Name      string              `json:"name"`
	Exercises map[string]LiftWeek `json:"exercises"`
}

type Cycle struct {
	Cycle int         `json:"cycle"`
	Weeks []CycleWeek `json:"weeks"`
}

// WendlerResult is the generated 5/3/1 schedule.
//
// ProjectedMaxes inverts the training-max formula on the final training max.
// It is a modeling estimate of the lifter's new 1RM, not a measured value.
type WendlerResult struct {
	CycleData      []Cycle                   `json:"cycle_data"`
	ChartData      map[string][]HistoryPoint `json:"chart_data"`
	StartingMaxes  map[string]float64        `json:"starting_maxes"`
	ProjectedMaxes map[string]float64        `json:"projected_maxes"`
	Unit           Unit                      `json:"unit"`
}

// DefaultWendlerConfig returns the stock 5/3/1 starting point.
func DefaultWendlerConfig() WendlerConfig {
	return WendlerConfig{
		Cycles: 4,
		MaxLifts: map[string]float64{
			"squat":    100,
			"bench":    80,
			"deadlift": 120,
			"press":    50,
		},
		TrainingMaxPercent: 90,
		Increments:         Increments{Upper: 2.5, Lower: 5},
		Unit:               UnitKg,
	}
}

func (c *WendlerConfig) Program() Program { return Wendler531 }

func (c *WendlerConfig) ApplyDefaults() {
	d := DefaultWendlerConfig()
	if c.Cycles == 0 {
		c.Cycles = d.Cycles
	}
	if c.MaxLifts == nil {
		c.MaxLifts = d.MaxLifts
	}
	if c.TrainingMaxPercent == 0 {
		c.TrainingMaxPercent = d.TrainingMaxPercent
	}
	if c.Increments.Upper == 0 {
		c.Increments.Upper = d.Increments.Upper
	}
	if c.Increments.Lower == 0 {
		c.Increments.Lower = d.Increments.Lower
	}
	if c.Unit == "" {
		c.Unit = d.Unit
	}
}

func (c *WendlerConfig) Validate() error {
	if err := checkIntRange("cycles", c.Cycles, MinCycles, MaxCycles); err != nil {
		return err
	}
	if len(c.MaxLifts) == 0 {
		return ErrNoExercises
	}
	if err := checkWeights("max_lifts", c.MaxLifts); err != nil {
		return err
	}
	if err := checkIntRange("training_max_percent", c.TrainingMaxPercent, MinTrainingMaxPercent, MaxTrainingMaxPercent); err != nil {
		return err
	}
	if err := checkIncrement("increments.upper", c.Increments.Upper); err != nil {
		return err
	}
	if err := checkIncrement("increments.lower", c.Increments.Lower); err != nil {
		return err
	}
	return checkUnit(c.Unit)
}

func (c *WendlerConfig) Summary() Summary {
	return Summary{
		Cycles:          c.Cycles,
		Exercises:       sortedKeys(c.MaxLifts),
		StartingWeights: c.MaxLifts,
		Unit:            c.Unit,
	}
}

func (c *WendlerConfig) increment(name string) float64 {
	if catalog.IsLowerBody(name) {
		return c.Increments.Lower
	}
	return c.Increments.Upper
}

// GenerateWendler validates cfg and builds the 5/3/1 cycles. The training max
// of every lift is bumped after each cycle, the last one included, so the
// projected maxes reflect the progress of all completed cycles.
func GenerateWendler(cfg WendlerConfig) (*WendlerResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ratio := float64(cfg.TrainingMaxPercent) / 100
	names := sortedKeys(cfg.MaxLifts)
	states := make([]*ExerciseState, 0, len(names))
	for _, name := range names {
		states = append(states, newState(Lift{
			Name:     name,
			Category: catalog.Full,
			Start:    cfg.MaxLifts[name] * ratio,
		}, 0))
	}

	cycles := make([]Cycle, 0, cfg.Cycles)
	for cycle := 1; cycle <= cfg.Cycles; cycle++ {
		cy := Cycle{Cycle: cycle, Weeks: make([]CycleWeek, 0, wendlerWeeksPerCycle)}
		for _, scheme := range wendlerScheme {
			cw := CycleWeek{
				Week:      scheme.Week,
				Name:      scheme.Name,
				Exercises: make(map[string]LiftWeek, len(states)),
			}
			for _, st := range states {
				cw.Exercises[st.Name] = st.prescribeScheme(cycle, scheme)
			}
			cy.Weeks = append(cy.Weeks, cw)
		}
		cycles = append(cycles, cy)

		for _, st := range states {
			st.CurrentWeight += cfg.increment(st.Name)
		}
	}

	res := &WendlerResult{
		CycleData:      cycles,
		ChartData:      make(map[string][]HistoryPoint, len(states)),
		StartingMaxes:  cfg.MaxLifts,
		ProjectedMaxes: make(map[string]float64, len(states)),
		Unit:           cfg.Unit,
	}
	for _, st := range states {
		res.ChartData[st.Name] = st.History
		res.ProjectedMaxes[st.Name] = round2(st.CurrentWeight / ratio)
	}
	return res, nil
}

// prescribeScheme emits one scheme week off the current training max and
// records the heaviest (last) set as the week's history point.
func (s *ExerciseState) prescribeScheme(cycle int, scheme SchemeWeek) LiftWeek {
	lw := LiftWeek{
		TrainingMax: round2(s.CurrentWeight),
		Sets:        make([]PrescribedSet, 0, len(scheme.Sets)),
	}
	for _, set := range scheme.Sets {
		reps := strconv.Itoa(set.Reps)
		if set.AMRAP {
			reps += "+"
		}
		lw.Sets = append(lw.Sets, PrescribedSet{
			Reps:    reps,
			MinReps: set.Reps,
			Percent: set.Percent,
			Weight:  round2(s.CurrentWeight * set.Percent / 100),
			AMRAP:   set.AMRAP,
		})
	}
	top := lw.Sets[len(lw.Sets)-1]
	s.History = append(s.History, HistoryPoint{
		Week:     scheme.Week,
		Cycle:    cycle,
		WeekName: scheme.Name,
		Weight:   top.Weight,
		Reps:     top.MinReps,
		Percent:  top.Percent,
	})
	return lw
}
