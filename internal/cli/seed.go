package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	lpmcp "github.com/meltforce/liftplan/internal/mcp"
	"github.com/meltforce/liftplan/internal/progression"
	"github.com/meltforce/liftplan/internal/report"
	"github.com/meltforce/liftplan/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.csv>",
		Short: "Derive starting weights from an Alpha Progression CSV export",
		Long: `Reads an Alpha Progression CSV export and derives, per catalog exercise,
the heaviest working-set weight and the best estimated one-rep max.

With --program the derived values replace the matching exercises of that
program's defaults and the program is generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, a, args[0])
		},
	}
	cmd.Flags().String("program", "", "program to seed: 5x5, 531, ppl or upper-lower")
	cmd.Flags().StringP("format", "o", "table", "output format: table, json, markdown or html")
	cmd.Flags().Bool("save", false, "save the seeded program to history (requires --program)")
	return cmd
}

func runSeed(cmd *cobra.Command, a *app, path string) error {
	f := cmd.Flags()
	format, _ := f.GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	name, _ := f.GetString("program")
	save, _ := f.GetBool("save")
	if save && name == "" {
		return fmt.Errorf("--save requires --program")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening training log: %w", err)
	}
	defer file.Close()
	sessions, err := seed.ParseAlpha(file)
	if err != nil {
		return err
	}
	res := seed.Derive(sessions)

	out := cmd.OutOrStdout()
	if name == "" {
		if format == "json" {
			return writeJSON(out, res)
		}
		return writeSeedTable(cmd, res)
	}

	p, err := progression.ParseProgram(name)
	if err != nil {
		return err
	}
	cfg, err := progression.DefaultConfig(p)
	if err != nil {
		return err
	}
	applied := res.Apply(cfg)
	fmt.Fprintf(cmd.ErrOrStderr(), "Seeded %d exercises from %d sessions: %s\n",
		len(applied), res.Sessions, strings.Join(applied, ", "))

	result, err := progression.Generate(cfg)
	if err != nil {
		return err
	}
	g := &lpmcp.Generated{Program: p, Config: cfg, Result: result}
	if save {
		rec, err := a.recorder()
		if err != nil {
			return err
		}
		entry, err := rec.Save(cmd.Context(), cfg, result)
		if err != nil {
			return err
		}
		g.Entry = &entry
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s program (%s)\n", p, entry.ID)
	}
	return render(out, format, g)
}

func writeSeedTable(cmd *cobra.Command, res *seed.Result) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d sessions, %d working sets\n\n", res.Sessions, res.Sets)
	tw := newTabWriter(out)
	fmt.Fprintln(tw, "EXERCISE\tWORKING WEIGHT\tEST. 1RM\tLOGGED AS")
	for _, key := range sortedKeys(res.WorkingWeights) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", report.DisplayName(key),
			progression.FormatWeight(res.WorkingWeights[key], progression.UnitKg),
			progression.FormatWeight(res.OneRepMaxes[key], progression.UnitKg),
			strings.Join(res.Matched[key], ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(res.Unknown) > 0 {
		fmt.Fprintf(out, "\nNot in catalog: %s\n", strings.Join(res.Unknown, ", "))
	}
	return nil
}
