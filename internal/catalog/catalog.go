package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrUnknownExercise is returned when an exercise name is not in the catalog.
var ErrUnknownExercise = errors.New("unknown exercise")

// Category tags the session type an exercise is trained in.
type Category string

const (
	Full  Category = "full"
	Push  Category = "push"
	Pull  Category = "pull"
	Legs  Category = "legs"
	Upper Category = "upper"
	Lower Category = "lower"
)

// Exercise describes one known lift.
type Exercise struct {
	Key         string     `json:"key"`
	DisplayName string     `json:"display_name"`
	Categories  []Category `json:"categories"`
	// LowerBody selects the lower increment in 5/3/1.
	LowerBody bool `json:"lower_body"`
	// Bodyweight exercises accept a starting load of 0 (no added weight).
	Bodyweight bool `json:"bodyweight"`
	// Cadence is the 5x5 advancement cadence in sessions. 0 means every session.
	Cadence int      `json:"cadence,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

var exercises = []Exercise{
	{Key: "squat", DisplayName: "Squat", Categories: []Category{Full, Legs, Lower}, LowerBody: true, Aliases: []string{"back squat", "barbell squat", "squats"}},
	{Key: "frontSquat", DisplayName: "Front Squat", Categories: []Category{Full, Legs, Lower}, LowerBody: true},
	{Key: "deadlift", DisplayName: "Deadlift", Categories: []Category{Full, Pull, Lower}, LowerBody: true, Cadence: 2, Aliases: []string{"conventional deadlift", "deadlifts"}},
	{Key: "sumoDeadlift", DisplayName: "Sumo Deadlift", Categories: []Category{Full, Pull, Lower}, LowerBody: true},
	{Key: "romanianDeadlift", DisplayName: "Romanian Deadlift", Categories: []Category{Legs, Lower}, LowerBody: true, Aliases: []string{"rdl"}},
	{Key: "bench", DisplayName: "Bench Press", Categories: []Category{Full}, Aliases: []string{"barbell bench press"}},
	{Key: "benchPress", DisplayName: "Bench Press", Categories: []Category{Push, Upper}},
	{Key: "overheadPress", DisplayName: "Overhead Press", Categories: []Category{Full, Push, Upper}, Aliases: []string{"ohp", "military press", "shoulder press"}},
	{Key: "press", DisplayName: "Overhead Press", Categories: []Category{Full}},
	{Key: "row", DisplayName: "Barbell Row", Categories: []Category{Full}, Aliases: []string{"pendlay row"}},
	{Key: "barbellRow", DisplayName: "Barbell Row", Categories: []Category{Pull, Upper}, Aliases: []string{"bent over row"}},
	{Key: "inclinePress", DisplayName: "Incline Press", Categories: []Category{Push, Upper}, Aliases: []string{"incline bench press"}},
	{Key: "lateralRaise", DisplayName: "Lateral Raise", Categories: []Category{Push, Upper}, Aliases: []string{"lateral raises"}},
	{Key: "tricepExtension", DisplayName: "Tricep Extension", Categories: []Category{Push, Upper}, Aliases: []string{"triceps extension"}},
	{Key: "dip", DisplayName: "Dip", Categories: []Category{Push, Upper}, Bodyweight: true, Aliases: []string{"dips"}},
	{Key: "pullUp", DisplayName: "Pull-up", Categories: []Category{Pull, Upper}, Bodyweight: true, Aliases: []string{"pull ups", "pullups"}},
	{Key: "chinUp", DisplayName: "Chin-up", Categories: []Category{Pull, Upper}, Bodyweight: true, Aliases: []string{"chin ups", "chinups"}},
	{Key: "latPulldown", DisplayName: "Lat Pulldown", Categories: []Category{Pull, Upper}, Aliases: []string{"lat pulldowns"}},
	{Key: "cableRow", DisplayName: "Cable Row", Categories: []Category{Pull, Upper}, Aliases: []string{"seated cable row"}},
	{Key: "bicepCurl", DisplayName: "Bicep Curl", Categories: []Category{Pull, Upper}, Aliases: []string{"biceps curl", "curls"}},
	{Key: "legPress", DisplayName: "Leg Press", Categories: []Category{Legs, Lower}},
	{Key: "legCurl", DisplayName: "Leg Curl", Categories: []Category{Legs, Lower}, Aliases: []string{"leg curls"}},
	{Key: "legExtension", DisplayName: "Leg Extension", Categories: []Category{Legs, Lower}, Aliases: []string{"leg extensions"}},
	{Key: "lunges", DisplayName: "Lunges", Categories: []Category{Legs, Lower}, Aliases: []string{"reverse lunges", "walking lunges"}},
	{Key: "calfRaise", DisplayName: "Calf Raise", Categories: []Category{Legs, Lower}, Aliases: []string{"standing calf raises", "calf raises"}},
	{Key: "hipThrust", DisplayName: "Hip Thrust", Categories: []Category{Legs, Lower}, Aliases: []string{"hip thrusts"}},
}

var (
	byKey   = make(map[string]*Exercise, len(exercises))
	byAlias = make(map[string]string)
)

func init() {
	for i := range exercises {
		ex := &exercises[i]
		byKey[ex.Key] = ex
		byAlias[normalize(ex.Key)] = ex.Key
		for _, a := range ex.Aliases {
			byAlias[normalize(a)] = ex.Key
		}
	}
	// Display names are ambiguous for a few keys (bench vs benchPress); the
	// split-program key wins since imported logs come from split routines.
	for i := range exercises {
		ex := &exercises[i]
		if _, ok := byAlias[normalize(ex.DisplayName)]; !ok {
			byAlias[normalize(ex.DisplayName)] = ex.Key
		}
	}
	byAlias[normalize("Bench Press")] = "benchPress"
	byAlias[normalize("Barbell Row")] = "barbellRow"
}

// normalize folds case and drops everything that is not a letter or digit,
// so "Bench-Press", "bench press" and "benchPress" compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// All returns every catalog exercise sorted by key.
func All() []Exercise {
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Get returns the exercise with the given key.
func Get(key string) (Exercise, bool) {
	ex, ok := byKey[key]
	if !ok {
		return Exercise{}, false
	}
	return *ex, true
}

// Lookup resolves a free-text exercise name to its catalog key.
func Lookup(name string) (string, bool) {
	key, ok := byAlias[normalize(name)]
	return key, ok
}

// Check returns ErrUnknownExercise for the first name that is not a catalog key.
func Check(names ...string) error {
	for _, n := range names {
		if _, ok := byKey[n]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownExercise, n)
		}
	}
	return nil
}

// Equivalents returns the keys naming the same movement as key (same display
// name), key first. Program defaults use different keys for one lift, e.g.
// "bench" in 5x5 and "benchPress" in the split routines.
func Equivalents(key string) []string {
	ex, ok := byKey[key]
	if !ok {
		return nil
	}
	out := []string{key}
	for _, other := range All() {
		if other.Key != key && other.DisplayName == ex.DisplayName {
			out = append(out, other.Key)
		}
	}
	return out
}

// InCategory reports whether the exercise may be trained in a session of category c.
func InCategory(key string, c Category) bool {
	ex, ok := byKey[key]
	if !ok {
		return false
	}
	for _, ec := range ex.Categories {
		if ec == c {
			return true
		}
	}
	return false
}

// IsLowerBody reports whether the lift takes the lower-body 5/3/1 increment.
func IsLowerBody(key string) bool {
	ex, ok := byKey[key]
	return ok && ex.LowerBody
}

// IsBodyweight reports whether a starting load of 0 is valid for the exercise.
func IsBodyweight(key string) bool {
	ex, ok := byKey[key]
	return ok && ex.Bodyweight
}

// Cadence returns the default 5x5 advancement cadence for the exercise (at least 1).
func Cadence(key string) int {
	ex, ok := byKey[key]
	if !ok || ex.Cadence < 1 {
		return 1
	}
	return ex.Cadence
}
