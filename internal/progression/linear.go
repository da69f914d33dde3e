package progression

import (
	"fmt"

	"github.com/meltforce/liftplan/internal/catalog"
)

// LinearPlan parameterizes the shared linear overload driver. 5x5, PPL and
// Upper/Lower are all expressed as a session pattern plus the categories of
// their lifts.
type LinearPlan struct {
	Weeks int
	// Pattern lists the session category of each training day of a week.
	Pattern   []catalog.Category
	Lifts     []Lift
	Sets      int
	RepsMin   int
	RepsMax   int
	Increment float64
}

// LinearRun is the raw output of RunLinear.
type LinearRun struct {
	Weeks []Week
	// States holds the final state of every lift, in Lifts order.
	States []*ExerciseState
}

// Validate checks the plan bounds.
func (p LinearPlan) Validate() error {
	if err := checkIntRange("weeks", p.Weeks, MinWeeks, MaxWeeks); err != nil {
		return err
	}
	if len(p.Pattern) == 0 {
		return fmt.Errorf("%w: session pattern is empty", ErrInvalidRange)
	}
	if len(p.Lifts) == 0 {
		return ErrNoExercises
	}
	for _, l := range p.Lifts {
		if l.Cadence > len(p.Pattern) {
			return fmt.Errorf("%w: cadence of %s is %d but a week has %d sessions", ErrInvalidRange, l.Name, l.Cadence, len(p.Pattern))
		}
	}
	if err := checkIntRange("sets", p.Sets, MinSets, MaxSets); err != nil {
		return err
	}
	if err := checkRepRange(p.RepsMin, p.RepsMax); err != nil {
		return err
	}
	return checkIncrement("increment", p.Increment)
}

// RunLinear simulates the plan week by week. Every session prescribes all
// lifts of its category, then advances them unless it is the final week,
// whose prescriptions are the terminal state. RunLinear assumes a validated
// plan.
func RunLinear(p LinearPlan) LinearRun {
	states := make([]*ExerciseState, 0, len(p.Lifts))
	byCategory := make(map[catalog.Category][]*ExerciseState)
	for _, l := range p.Lifts {
		st := newState(l, p.RepsMin)
		states = append(states, st)
		byCategory[l.Category] = append(byCategory[l.Category], st)
	}

	weeks := make([]Week, 0, p.Weeks)
	for week := 1; week <= p.Weeks; week++ {
		w := Week{Week: week, Sessions: make([]Session, 0, len(p.Pattern))}
		for i, category := range p.Pattern {
			number := i + 1
			session := Session{
				Session:   number,
				Type:      category,
				Exercises: make(map[string]Prescription, len(byCategory[category])),
			}
			for _, st := range byCategory[category] {
				session.Exercises[st.Name] = st.prescribe(week, number, p.Sets, p.RepsMin, p.RepsMax)
				if week < p.Weeks {
					st.advance(number, p.RepsMin, p.RepsMax, p.Increment)
				}
			}
			w.Sessions = append(w.Sessions, session)
		}
		weeks = append(weeks, w)
	}

	return LinearRun{Weeks: weeks, States: states}
}

// liftsFor turns a name->weight mapping into lifts of one category in
// sorted name order, so identical inputs always produce identical runs.
func liftsFor(category catalog.Category, weights map[string]float64, cadence func(string) int) []Lift {
	lifts := make([]Lift, 0, len(weights))
	for _, name := range sortedKeys(weights) {
		l := Lift{Name: name, Category: category, Start: weights[name], Cadence: 1}
		if cadence != nil {
			l.Cadence = cadence(name)
		}
		lifts = append(lifts, l)
	}
	return lifts
}

// repeatPattern concatenates the category sequence n times.
func repeatPattern(n int, categories ...catalog.Category) []catalog.Category {
	out := make([]catalog.Category, 0, n*len(categories))
	for range n {
		out = append(out, categories...)
	}
	return out
}
