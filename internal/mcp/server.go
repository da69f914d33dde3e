// Package mcp exposes the program generators and saved history as Model
// Context Protocol tools.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/liftplan/internal/progression"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftplan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("liftplan generates progressive-overload training programs (5x5, 5/3/1, Push/Pull/Legs, Upper/Lower). Omitted parameters take the program defaults. Weights use the requested unit and exercise names must come from the exercise catalog resource. Saved programs and history are scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGenerate5x5, Handler: h.generate(progression.FiveByFive)},
		server.ServerTool{Tool: toolGenerate531, Handler: h.generate(progression.Wendler531)},
		server.ServerTool{Tool: toolGeneratePPL, Handler: h.generate(progression.PushPullLegs)},
		server.ServerTool{Tool: toolGenerateUpperLower, Handler: h.generate(progression.UpperLower)},
		server.ServerTool{Tool: toolEstimateOneRepMax, Handler: h.estimateOneRepMax},
		server.ServerTool{Tool: toolListHistory, Handler: h.listHistory},
		server.ServerTool{Tool: toolGetSavedProgram, Handler: h.getSavedProgram},
	)

	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resWendlerScheme, Handler: h.wendlerScheme},
		server.ServerResource{Resource: resProgramDefaults, Handler: h.programDefaults},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"liftplan://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Known exercises with their session categories, 5/3/1 increment class, bodyweight flag and aliases"),
	mcp.WithMIMEType("application/json"),
)

var resWendlerScheme = mcp.NewResource(
	"liftplan://wendler_scheme",
	"5/3/1 Scheme",
	mcp.WithResourceDescription("The fixed 5/3/1 percentage and rep table for the four weeks of a cycle"),
	mcp.WithMIMEType("application/json"),
)

var resProgramDefaults = mcp.NewResource(
	"liftplan://program_defaults",
	"Program Defaults",
	mcp.WithResourceDescription("Default parameters of every program generator"),
	mcp.WithMIMEType("application/json"),
)
