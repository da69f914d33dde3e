package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftplan/internal/progression"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved programs",
		Long:  `Commands for listing, clearing, exporting and importing saved programs.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved program summaries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, a)
		},
	}
	list.Flags().Bool("json", false, "print entries as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear [program]",
		Short: "Clear one saved program, or every program and the history list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, a, args)
		},
	}

	export := &cobra.Command{
		Use:   "export [file]",
		Short: "Export saved programs and history as JSON (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryExport(cmd, a, args)
		},
	}

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an export file, replacing the programs it contains ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryImport(cmd, a, args[0])
		},
	}

	cmd.AddCommand(list, clearCmd, export, imp)
	return cmd
}

func runHistoryList(cmd *cobra.Command, a *app) error {
	rec, err := a.recorder()
	if err != nil {
		return err
	}
	entries, err := rec.History(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved programs.")
		return nil
	}

	tw := newTabWriter(out)
	fmt.Fprintln(tw, "ID\tPROGRAM\tSAVED\tLENGTH\tEXERCISES")
	for _, e := range entries {
		length := fmt.Sprintf("%d weeks", e.Summary.Weeks)
		if e.Summary.Cycles > 0 {
			length = fmt.Sprintf("%d cycles", e.Summary.Cycles)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(e.ID), e.Program, e.SavedAt.Local().Format("2006-01-02 15:04"),
			length, strings.Join(e.Summary.Exercises, ", "))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runHistoryClear(cmd *cobra.Command, a *app, args []string) error {
	rec, err := a.recorder()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		if err := rec.ClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared all saved programs and history.")
		return nil
	}
	p, err := progression.ParseProgram(args[0])
	if err != nil {
		return err
	}
	if err := rec.Clear(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared saved %s program.\n", p)
	return nil
}

func runHistoryExport(cmd *cobra.Command, a *app, args []string) error {
	rec, err := a.recorder()
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		return rec.Export(cmd.Context(), cmd.OutOrStdout())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := rec.Export(cmd.Context(), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", args[0])
	return nil
}

func runHistoryImport(cmd *cobra.Command, a *app, path string) error {
	rec, err := a.recorder()
	if err != nil {
		return err
	}
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()
		r = f
	}
	doc, err := rec.Import(cmd.Context(), r)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d programs and %d history entries.\n", len(doc.Programs), len(doc.History))
	return nil
}
