package cli

import (
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/meltforce/liftplan/internal/history"
	lpmcp "github.com/meltforce/liftplan/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the liftplan MCP tools over stdio",
		Long: `Serves the program generators and saved history as MCP tools on stdin/stdout.

By default tools read and write the local state database. With --remote they
go through a liftplan server's HTTP API instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd, a)
		},
	}
	cmd.Flags().String("remote", "", "base URL of a liftplan server, e.g. http://liftplan:8080")
	return cmd
}

func runMCP(cmd *cobra.Command, a *app) error {
	// stdout carries the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	var ds lpmcp.DataSource
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		ds = lpmcp.NewHTTPClient(remote)
		log.Info("using remote data source", "url", remote)
	} else {
		rec, err := a.recorder()
		if err != nil {
			return err
		}
		ds = lpmcp.RecorderSource{Recorder: func(int) *history.Recorder { return rec }}
		log.Info("using local state", "dir", a.stateDir, "ephemeral", a.ephemeral)
	}

	return mcpserver.ServeStdio(lpmcp.New(ds, Version, log))
}
