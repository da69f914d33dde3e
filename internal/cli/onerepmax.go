package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftplan/internal/progression"
)

func newOneRepMaxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "onerepmax",
		Aliases: []string{"1rm"},
		Short:   "Estimate a one-rep max and print a percentage table",
		Args:    cobra.NoArgs,
		RunE:    runOneRepMax,
	}
	cmd.Flags().Float64("weight", 0, "weight lifted")
	cmd.Flags().Int("reps", 0, "reps completed")
	cmd.Flags().String("formula", "epley", "estimation formula: epley or brzycki")
	cmd.Flags().String("unit", string(progression.UnitKg), "weight unit for display: kg or lbs")
	cmd.Flags().Bool("json", false, "print the estimate as JSON")
	cmd.MarkFlagRequired("weight")
	cmd.MarkFlagRequired("reps")
	return cmd
}

func runOneRepMax(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	weight, _ := f.GetFloat64("weight")
	reps, _ := f.GetInt("reps")
	name, _ := f.GetString("formula")
	unit, _ := f.GetString("unit")

	formula, err := progression.ParseFormula(name)
	if err != nil {
		return err
	}
	est, err := progression.Estimate(weight, reps, formula)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON, _ := f.GetBool("json"); asJSON {
		return writeJSON(out, est)
	}

	u := progression.Unit(unit)
	fmt.Fprintf(out, "Estimated 1RM (%s): %s\n\n", est.Formula, progression.FormatWeight(est.OneRepMax, u))
	tw := newTabWriter(out)
	fmt.Fprintln(tw, "PERCENT\tWEIGHT\tREPS")
	for _, row := range est.Table {
		fmt.Fprintf(tw, "%g%%\t%s\t%d\n", row.Percent, progression.FormatWeight(row.Weight, u), row.Reps)
	}
	return tw.Flush()
}
