package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftplan/internal/catalog"
	"github.com/meltforce/liftplan/internal/progression"
)

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, catalog.All())
}

func (h *handlers) wendlerScheme(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, progression.WendlerScheme())
}

func (h *handlers) programDefaults(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	defaults, err := ProgramDefaults()
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, defaults)
}

// ProgramDefaults returns the default configuration of every program.
func ProgramDefaults() (map[progression.Program]progression.Config, error) {
	out := make(map[progression.Program]progression.Config, len(progression.Programs))
	for _, p := range progression.Programs {
		cfg, err := progression.DefaultConfig(p)
		if err != nil {
			return nil, err
		}
		out[p] = cfg
	}
	return out, nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
