// Package report renders generated programs as printable training sheets.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/meltforce/liftplan/internal/catalog"
	"github.com/meltforce/liftplan/internal/progression"
)

var titles = map[progression.Program]string{
	progression.FiveByFive:   "5x5",
	progression.Wendler531:   "5/3/1",
	progression.PushPullLegs: "Push/Pull/Legs",
	progression.UpperLower:   "Upper/Lower",
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders cfg and its generated result as a Markdown sheet.
func Markdown(cfg progression.Config, result any) (string, error) {
	var b strings.Builder
	sum := cfg.Summary()

	fmt.Fprintf(&b, "# %s program\n\n", titles[cfg.Program()])
	switch {
	case sum.Cycles > 0:
		fmt.Fprintf(&b, "%d cycles, weights in %s\n\n", sum.Cycles, sum.Unit)
	default:
		fmt.Fprintf(&b, "%d weeks, weights in %s\n\n", sum.Weeks, sum.Unit)
	}

	switch r := result.(type) {
	case *progression.FiveByFiveResult:
		writeWeeks(&b, r.WeeklyData, r.Unit)
		b.WriteString("## Final weights\n\n")
		writeWeights(&b, r.FinalWeights, r.Unit)
	case *progression.SplitResult:
		fmt.Fprintf(&b, "%d sessions a week, %d sets of %d-%d reps\n\n", r.Frequency, r.Sets, r.RepsMin, r.RepsMax)
		writeWeeks(&b, r.WeeklyData, r.Unit)
		b.WriteString("## Final weights\n\n")
		for _, c := range sortedKeys(r.FinalWeights) {
			fmt.Fprintf(&b, "### %s\n\n", titleCase(string(c)))
			writeWeights(&b, r.FinalWeights[c], r.Unit)
		}
	case *progression.WendlerResult:
		writeCycles(&b, r)
	default:
		return "", fmt.Errorf("unsupported result type %T", result)
	}
	return b.String(), nil
}

// HTML renders cfg and its result as a standalone HTML page.
func HTML(cfg progression.Config, result any) ([]byte, error) {
	src, err := Markdown(cfg, result)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := md.Convert([]byte(src), &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s program</title>\n", html.EscapeString(titles[cfg.Program()]))
	page.WriteString("<style>body{font-family:sans-serif;max-width:60em;margin:auto}table{border-collapse:collapse;margin-bottom:1em}th,td{border:1px solid #999;padding:.2em .6em;text-align:left}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Decode rebuilds a configuration and result from their saved JSON.
func Decode(p progression.Program, config, result json.RawMessage) (progression.Config, any, error) {
	cfg, err := progression.DecodeConfig(p, config)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding config: %w", err)
	}
	res, err := progression.NewResult(p)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(result, res); err != nil {
		return nil, nil, fmt.Errorf("decoding result: %w", err)
	}
	return cfg, res, nil
}

func writeWeeks(b *strings.Builder, weeks []progression.Week, unit progression.Unit) {
	for _, w := range weeks {
		fmt.Fprintf(b, "## Week %d\n\n", w.Week)
		for _, s := range w.Sessions {
			fmt.Fprintf(b, "### Session %d: %s\n\n", s.Session, titleCase(string(s.Type)))
			b.WriteString("| Exercise | Sets x Reps | Weight | Volume |\n|---|---|---|---|\n")
			for _, name := range sortedKeys(s.Exercises) {
				p := s.Exercises[name]
				reps := fmt.Sprint(p.Reps)
				if strings.Contains(p.RepRange, "-") {
					reps += " (" + p.RepRange + ")"
				}
				fmt.Fprintf(b, "| %s | %d x %s | %s | %.1f |\n",
					DisplayName(name), p.Sets, reps, progression.FormatWeight(p.Weight, unit), p.TotalVolume)
			}
			b.WriteString("\n")
		}
	}
}

func writeWeights(b *strings.Builder, weights map[string]float64, unit progression.Unit) {
	b.WriteString("| Exercise | Weight |\n|---|---|\n")
	for _, name := range sortedKeys(weights) {
		fmt.Fprintf(b, "| %s | %s |\n", DisplayName(name), progression.FormatWeight(weights[name], unit))
	}
	b.WriteString("\n")
}

func writeCycles(b *strings.Builder, r *progression.WendlerResult) {
	for _, c := range r.CycleData {
		fmt.Fprintf(b, "## Cycle %d\n\n", c.Cycle)
		for _, w := range c.Weeks {
			fmt.Fprintf(b, "### %s\n\n", w.Name)
			b.WriteString("| Exercise | Training max | Set 1 | Set 2 | Set 3 |\n|---|---|---|---|---|\n")
			for _, name := range sortedKeys(w.Exercises) {
				lw := w.Exercises[name]
				fmt.Fprintf(b, "| %s | %s |", DisplayName(name), progression.FormatWeight(lw.TrainingMax, r.Unit))
				for _, s := range lw.Sets {
					fmt.Fprintf(b, " %s x %s (%g%%) |", s.Reps, progression.FormatWeight(s.Weight, r.Unit), s.Percent)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Projected maxes\n\n")
	b.WriteString("| Exercise | Starting 1RM | Projected 1RM |\n|---|---|---|\n")
	for _, name := range sortedKeys(r.ProjectedMaxes) {
		fmt.Fprintf(b, "| %s | %s | %s |\n", DisplayName(name),
			progression.FormatWeight(r.StartingMaxes[name], r.Unit),
			progression.FormatWeight(r.ProjectedMaxes[name], r.Unit))
	}
	b.WriteString("\nProjected maxes are estimates derived from the final training max.\n")
}

// DisplayName returns the catalog display name of key, or key itself.
func DisplayName(key string) string {
	if ex, ok := catalog.Get(key); ok {
		return ex.DisplayName
	}
	return key
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
