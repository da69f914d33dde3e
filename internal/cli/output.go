package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	lpmcp "github.com/meltforce/liftplan/internal/mcp"
	"github.com/meltforce/liftplan/internal/progression"
	"github.com/meltforce/liftplan/internal/report"
)

var formats = []string{"table", "json", "markdown", "html"}

func checkFormat(format string) error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(formats, ", "))
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render writes a generated program in the requested format.
func render(w io.Writer, format string, g *lpmcp.Generated) error {
	switch format {
	case "json":
		return writeJSON(w, g)
	case "markdown":
		md, err := report.Markdown(g.Config, g.Result)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case "html":
		page, err := report.HTML(g.Config, g.Result)
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	}
	return writeTable(w, g.Result)
}

func writeTable(w io.Writer, result any) error {
	tw := newTabWriter(w)
	switch r := result.(type) {
	case *progression.FiveByFiveResult:
		writeWeeksTable(tw, r.WeeklyData, r.Unit)
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "FINAL WEIGHTS")
		writeWeightRows(tw, r.FinalWeights, r.Unit)
	case *progression.SplitResult:
		writeWeeksTable(tw, r.WeeklyData, r.Unit)
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "FINAL WEIGHTS")
		for _, c := range sortedKeys(r.FinalWeights) {
			fmt.Fprintf(tw, "%s\n", strings.ToUpper(string(c)))
			writeWeightRows(tw, r.FinalWeights[c], r.Unit)
		}
	case *progression.WendlerResult:
		writeCyclesTable(tw, r)
	default:
		return fmt.Errorf("unsupported result type %T", result)
	}
	return tw.Flush()
}

func writeWeeksTable(tw *tabwriter.Writer, weeks []progression.Week, unit progression.Unit) {
	fmt.Fprintln(tw, "WEEK\tSESSION\tTYPE\tEXERCISE\tSETS x REPS\tWEIGHT\tVOLUME")
	for _, wk := range weeks {
		for _, s := range wk.Sessions {
			for _, name := range sortedKeys(s.Exercises) {
				p := s.Exercises[name]
				reps := fmt.Sprint(p.Reps)
				if strings.Contains(p.RepRange, "-") {
					reps += " (" + p.RepRange + ")"
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d x %s\t%s\t%.1f\n",
					wk.Week, s.Session, s.Type, report.DisplayName(name), p.Sets, reps,
					progression.FormatWeight(p.Weight, unit), p.TotalVolume)
			}
		}
	}
}

func writeWeightRows(tw *tabwriter.Writer, weights map[string]float64, unit progression.Unit) {
	for _, name := range sortedKeys(weights) {
		fmt.Fprintf(tw, "  %s\t%s\n", report.DisplayName(name), progression.FormatWeight(weights[name], unit))
	}
}

func writeCyclesTable(tw *tabwriter.Writer, r *progression.WendlerResult) {
	fmt.Fprintln(tw, "CYCLE\tWEEK\tEXERCISE\tTRAINING MAX\tSETS")
	for _, c := range r.CycleData {
		for _, wk := range c.Weeks {
			for _, name := range sortedKeys(wk.Exercises) {
				lw := wk.Exercises[name]
				sets := make([]string, 0, len(lw.Sets))
				for _, s := range lw.Sets {
					sets = append(sets, fmt.Sprintf("%s x %s", s.Reps, progression.FormatWeight(s.Weight, r.Unit)))
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					c.Cycle, wk.Name, report.DisplayName(name),
					progression.FormatWeight(lw.TrainingMax, r.Unit), strings.Join(sets, ", "))
			}
		}
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "EXERCISE\tSTARTING 1RM\tPROJECTED 1RM")
	for _, name := range sortedKeys(r.ProjectedMaxes) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", report.DisplayName(name),
			progression.FormatWeight(r.StartingMaxes[name], r.Unit),
			progression.FormatWeight(r.ProjectedMaxes[name], r.Unit))
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
