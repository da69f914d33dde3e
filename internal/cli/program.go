package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftplan/internal/catalog"
	lpmcp "github.com/meltforce/liftplan/internal/mcp"
	"github.com/meltforce/liftplan/internal/progression"
)

type fieldKind int

const (
	intField fieldKind = iota
	floatField
	stringField
)

// field binds a flag to a config field. Key is the JSON path, dotted for
// nested objects.
type field struct {
	flag  string
	key   string
	kind  fieldKind
	usage string
}

// group binds a repeated name=value flag to an exercise map of the config.
type group struct {
	flag     string
	key      string
	category catalog.Category
	ints     bool
	usage    string
}

type programSpec struct {
	program progression.Program
	use     string
	aliases []string
	short   string
	fields  []field
	groups  []group
}

var splitFields = []field{
	{"weeks", "weeks", intField, "number of weeks (1-52)"},
	{"frequency", "frequency", intField, "sessions per week"},
	{"sets", "sets", intField, "sets per exercise"},
	{"reps-min", "reps_min", intField, "bottom of the rep range"},
	{"reps-max", "reps_max", intField, "top of the rep range"},
	{"increment", "increment", floatField, "weight added when the rep range is topped"},
	{"unit", "unit", stringField, "weight unit: kg or lbs"},
}

var programCommands = []programSpec{
	{
		program: progression.FiveByFive,
		use:     "5x5",
		short:   "Generate a 5x5 linear progression",
		fields: []field{
			{"weeks", "weeks", intField, "number of weeks (1-52)"},
			{"increment", "increment", floatField, "weight added per advancement"},
			{"unit", "unit", stringField, "weight unit: kg or lbs"},
		},
		groups: []group{
			{flag: "exercise", key: "exercises", category: catalog.Full, usage: "starting weight as name=weight (repeatable)"},
			{flag: "cadence", key: "cadence", category: catalog.Full, ints: true, usage: "advance every N sessions (1-3) as name=N (repeatable)"},
		},
	},
	{
		program: progression.Wendler531,
		use:     "531",
		aliases: []string{"wendler"},
		short:   "Generate Wendler 5/3/1 cycles",
		fields: []field{
			{"cycles", "cycles", intField, "number of 4-week cycles (1-12)"},
			{"training-max-percent", "training_max_percent", intField, "training max as a percentage of the 1RM"},
			{"upper-increment", "increments.upper", floatField, "training max increase per cycle for upper-body lifts"},
			{"lower-increment", "increments.lower", floatField, "training max increase per cycle for lower-body lifts"},
			{"unit", "unit", stringField, "weight unit: kg or lbs"},
		},
		groups: []group{
			{flag: "max", key: "max_lifts", category: catalog.Full, usage: "one-rep max as name=weight (repeatable)"},
		},
	},
	{
		program: progression.PushPullLegs,
		use:     "ppl",
		short:   "Generate a Push/Pull/Legs split",
		fields:  splitFields,
		groups: []group{
			{flag: "push", key: "push_exercises", category: catalog.Push, usage: "push exercise as name=weight (repeatable)"},
			{flag: "pull", key: "pull_exercises", category: catalog.Pull, usage: "pull exercise as name=weight (repeatable)"},
			{flag: "legs", key: "leg_exercises", category: catalog.Legs, usage: "leg exercise as name=weight (repeatable)"},
		},
	},
	{
		program: progression.UpperLower,
		use:     "upper-lower",
		aliases: []string{"ul"},
		short:   "Generate an Upper/Lower split",
		fields:  splitFields,
		groups: []group{
			{flag: "upper", key: "upper_exercises", category: catalog.Upper, usage: "upper exercise as name=weight (repeatable)"},
			{flag: "lower", key: "lower_exercises", category: catalog.Lower, usage: "lower exercise as name=weight (repeatable)"},
		},
	},
}

func newProgramCmd(a *app, spec programSpec) *cobra.Command {
	cmd := &cobra.Command{
		Use:     spec.use,
		Aliases: spec.aliases,
		Short:   spec.short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, a, spec)
		},
	}
	f := cmd.Flags()
	for _, fl := range spec.fields {
		switch fl.kind {
		case intField:
			f.Int(fl.flag, 0, fl.usage)
		case floatField:
			f.Float64(fl.flag, 0, fl.usage)
		case stringField:
			f.String(fl.flag, "", fl.usage)
		}
	}
	for _, g := range spec.groups {
		f.StringArray(g.flag, nil, g.usage)
	}
	f.String("config", "", "JSON config file used as the base for flags")
	f.StringP("format", "o", "table", "output format: table, json, markdown or html")
	f.Bool("save", false, "save the program to history")
	return cmd
}

func runProgram(cmd *cobra.Command, a *app, spec programSpec) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	cfg, err := buildConfig(cmd, spec)
	if err != nil {
		return err
	}
	res, err := progression.Generate(cfg)
	if err != nil {
		return err
	}

	out := &lpmcp.Generated{Program: spec.program, Config: cfg, Result: res}
	if save, _ := cmd.Flags().GetBool("save"); save {
		rec, err := a.recorder()
		if err != nil {
			return err
		}
		entry, err := rec.Save(cmd.Context(), cfg, res)
		if err != nil {
			return err
		}
		out.Entry = &entry
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s program (%s)\n", spec.program, entry.ID)
	}
	return render(cmd.OutOrStdout(), format, out)
}

// buildConfig layers the flags that were set over the --config file and
// decodes the result, so flags and files go through the same validation.
func buildConfig(cmd *cobra.Command, spec programSpec) (progression.Config, error) {
	f := cmd.Flags()
	doc := map[string]any{}
	if path, _ := f.GetString("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", progression.ErrBadConfig, path, err)
		}
	}

	for _, fl := range spec.fields {
		if !f.Changed(fl.flag) {
			continue
		}
		var v any
		switch fl.kind {
		case intField:
			v, _ = f.GetInt(fl.flag)
		case floatField:
			v, _ = f.GetFloat64(fl.flag)
		case stringField:
			v, _ = f.GetString(fl.flag)
		}
		setPath(doc, fl.key, v)
	}

	for _, g := range spec.groups {
		values, _ := f.GetStringArray(g.flag)
		if len(values) == 0 {
			continue
		}
		m, _ := doc[g.key].(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		for _, raw := range values {
			key, v, err := parseAssignment(raw, g)
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		doc[g.key] = m
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return progression.DecodeConfig(spec.program, data)
}

// setPath sets a dotted key, creating intermediate objects.
func setPath(doc map[string]any, key string, v any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[p] = next
		}
		doc = next
	}
	doc[parts[len(parts)-1]] = v
}

// parseAssignment splits name=value and resolves name to a catalog key of
// the group's category.
func parseAssignment(raw string, g group) (string, any, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return "", nil, fmt.Errorf("--%s %q: want name=value", g.flag, raw)
	}
	key, err := resolveExercise(strings.TrimSpace(name), g.category)
	if err != nil {
		return "", nil, err
	}
	value = strings.TrimSpace(value)
	if g.ints {
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", nil, fmt.Errorf("--%s %s: %q is not a whole number", g.flag, name, value)
		}
		return key, n, nil
	}
	w, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "", nil, fmt.Errorf("--%s %s: %q is not a number", g.flag, name, value)
	}
	return key, w, nil
}

// resolveExercise maps a free-text name to a catalog key, preferring the
// equivalent key trained in category c ("bench" in 5x5, "benchPress" in a split).
func resolveExercise(name string, c catalog.Category) (string, error) {
	key, ok := catalog.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", catalog.ErrUnknownExercise, name)
	}
	for _, k := range catalog.Equivalents(key) {
		if catalog.InCategory(k, c) {
			return k, nil
		}
	}
	return key, nil
}
