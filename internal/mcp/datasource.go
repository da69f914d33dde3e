package mcp

import (
	"context"

	"github.com/meltforce/liftplan/internal/history"
	"github.com/meltforce/liftplan/internal/progression"
)

// DataSource abstracts saved-program storage for MCP tools. RecorderSource
// (local store) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	Save(ctx context.Context, userID int, cfg progression.Config) (*Generated, error)
	History(ctx context.Context, userID int) ([]history.Entry, error)
	Latest(ctx context.Context, userID int, p progression.Program) (*history.SavedProgram, error)
}

// Generated is a program generated and recorded by a DataSource.
type Generated struct {
	Program progression.Program `json:"program"`
	Config  progression.Config  `json:"config"`
	Result  any                 `json:"result"`
	Entry   *history.Entry      `json:"entry,omitempty"`
}

// RecorderSource serves MCP tools from local history recorders.
type RecorderSource struct {
	// Recorder returns the recorder of a user.
	Recorder func(userID int) *history.Recorder
}

var _ DataSource = RecorderSource{}

func (s RecorderSource) Save(ctx context.Context, userID int, cfg progression.Config) (*Generated, error) {
	res, err := progression.Generate(cfg)
	if err != nil {
		return nil, err
	}
	entry, err := s.Recorder(userID).Save(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	return &Generated{Program: cfg.Program(), Config: cfg, Result: res, Entry: &entry}, nil
}

func (s RecorderSource) History(ctx context.Context, userID int) ([]history.Entry, error) {
	return s.Recorder(userID).History(ctx)
}

func (s RecorderSource) Latest(ctx context.Context, userID int, p progression.Program) (*history.SavedProgram, error) {
	return s.Recorder(userID).Latest(ctx, p)
}
