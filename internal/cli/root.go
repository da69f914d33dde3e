// Package cli implements the liftplan-cli command tree.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftplan/internal/history"
)

// app carries the persistent flags and the lazily opened history store.
type app struct {
	stateDir     string
	ephemeral    bool
	historyLimit int

	store history.Store
	close func() error
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".liftplan"
	}
	return filepath.Join(home, ".liftplan")
}

// recorder opens the history store on first use.
func (a *app) recorder() (*history.Recorder, error) {
	if a.store == nil {
		if a.ephemeral {
			a.store = history.NewMemoryStore()
		} else {
			s, err := history.OpenSQLiteStore(a.stateDir)
			if err != nil {
				return nil, err
			}
			a.store, a.close = s, s.Close
		}
	}
	return history.NewRecorder(a.store, a.historyLimit), nil
}

func (a *app) shutdown() error {
	if a.close == nil {
		return nil
	}
	err := a.close()
	a.store, a.close = nil, nil
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "liftplan-cli",
		Short: "Progressive-overload training programs",
		Long: `liftplan-cli generates week-by-week strength training programs.

Four generators are available:
  • 5x5 linear progression
  • Wendler 5/3/1 cycles
  • Push/Pull/Legs split
  • Upper/Lower split

Saved programs and their history live in a local SQLite file.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.stateDir, "state-dir", defaultStateDir(), "directory holding state.db")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep history in memory for this run only")
	root.PersistentFlags().IntVar(&a.historyLimit, "history-limit", history.DefaultLimit, "number of history entries kept")

	for _, spec := range programCommands {
		root.AddCommand(newProgramCmd(a, spec))
	}
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newOneRepMaxCmd())
	root.AddCommand(newSeedCmd(a))
	root.AddCommand(newMCPCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	return execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) (err error) {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	defer func() {
		if cerr := a.shutdown(); err == nil {
			err = cerr
		}
	}()
	return root.ExecuteContext(ctx)
}
