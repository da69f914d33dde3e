package progression

import (
	"math"
	"strconv"

	"github.com/meltforce/liftplan/internal/catalog"
)

// Lift is one exercise entering a program run.
type Lift struct {
	Name     string
	Category catalog.Category
	// Start is the starting working weight, or the training max for 5/3/1.
	Start float64
	// Cadence gates weight/rep advancement to sessions whose number within the
	// week is a multiple of it, so it must not exceed the sessions per week.
	// Values below 1 mean every session.
	Cadence int
}

func newState(l Lift, repsMin int) *ExerciseState {
	cadence := l.Cadence
	if cadence < 1 {
		cadence = 1
	}
	return &ExerciseState{
		Name:          l.Name,
		Category:      l.Category,
		CurrentWeight: l.Start,
		CurrentReps:   repsMin,
		Cadence:       cadence,
	}
}

// prescribe emits the exercise's prescription for one session from its
// current, not yet advanced, state and records the matching history point.
func (s *ExerciseState) prescribe(week, session, sets, repsMin, repsMax int) Prescription {
	p := Prescription{
		Weight:      round2(s.CurrentWeight),
		Sets:        sets,
		Reps:        s.CurrentReps,
		RepRange:    repRange(repsMin, repsMax),
		TotalVolume: round2(s.CurrentWeight * float64(sets) * float64(s.CurrentReps)),
	}
	s.History = append(s.History, HistoryPoint{
		Week:    week,
		Session: session,
		Weight:  p.Weight,
		Reps:    p.Reps,
		Volume:  p.TotalVolume,
	})
	return p
}

// advance applies the linear rep-then-weight rule after the exercise was
// trained in the given session of the week: reps climb by one until repsMax,
// then the weight goes up by increment and reps drop back to repsMin.
// It reports whether the weight increased.
func (s *ExerciseState) advance(session, repsMin, repsMax int, increment float64) bool {
	if session%s.Cadence != 0 {
		return false
	}
	if s.CurrentReps < repsMax {
		s.CurrentReps++
		return false
	}
	s.CurrentReps = repsMin
	s.CurrentWeight += increment
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func repRange(repsMin, repsMax int) string {
	if repsMin == repsMax {
		return strconv.Itoa(repsMin)
	}
	return strconv.Itoa(repsMin) + "-" + strconv.Itoa(repsMax)
}
