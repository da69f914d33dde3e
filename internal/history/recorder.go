package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftplan/internal/progression"
)

// DefaultLimit is the number of summaries kept when no limit is configured.
const DefaultLimit = 20

const (
	historyKey    = "history"
	programPrefix = "program:"
	exportVersion = 1
)

// ErrInvalidExport is returned by Import for payloads that are not a liftplan export.
var ErrInvalidExport = errors.New("invalid export")

// Entry is one line of the saved-program history, newest first.
type Entry struct {
	ID      string              `json:"id"`
	Program progression.Program `json:"program"`
	SavedAt time.Time           `json:"saved_at"`
	Summary progression.Summary `json:"summary"`
}

// SavedProgram is the last generated program of one type.
type SavedProgram struct {
	Program progression.Program `json:"program"`
	Config  json.RawMessage     `json:"config"`
	Result  json.RawMessage     `json:"result"`
	SavedAt time.Time           `json:"saved_at"`
}

// Export is the document written by Recorder.Export.
type Export struct {
	Version    int                                  `json:"version"`
	ExportedAt time.Time                            `json:"exported_at"`
	Programs   map[progression.Program]SavedProgram `json:"programs"`
	History    []Entry                              `json:"history"`
}

// Recorder saves generated programs to a Store and keeps a capped summary list.
type Recorder struct {
	store Store
	limit int
	now   func() time.Time
}

// NewRecorder returns a Recorder over store. A limit below 1 uses DefaultLimit.
func NewRecorder(store Store, limit int) *Recorder {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Recorder{store: store, limit: limit, now: time.Now}
}

func programKey(p progression.Program) string {
	return programPrefix + string(p)
}

// Save stores cfg and its result as the latest program of its type and
// prepends a summary to the history list.
//
// The history list is read, modified and written back without a lock, so
// concurrent saves for the same store can drop an entry.
func (r *Recorder) Save(ctx context.Context, cfg progression.Config, result any) (Entry, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding config: %w", err)
	}
	resJSON, err := json.Marshal(result)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding result: %w", err)
	}

	now := r.now().UTC()
	saved := SavedProgram{Program: cfg.Program(), Config: cfgJSON, Result: resJSON, SavedAt: now}
	if err := r.put(ctx, programKey(cfg.Program()), saved); err != nil {
		return Entry{}, err
	}

	entries, err := r.History(ctx)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		ID:      uuid.NewString(),
		Program: cfg.Program(),
		SavedAt: now,
		Summary: cfg.Summary(),
	}
	entries = append([]Entry{entry}, entries...)
	if len(entries) > r.limit {
		entries = entries[:r.limit]
	}
	if err := r.put(ctx, historyKey, entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Latest returns the last saved program of type p, or ErrNotFound.
func (r *Recorder) Latest(ctx context.Context, p progression.Program) (*SavedProgram, error) {
	var saved SavedProgram
	if err := r.get(ctx, programKey(p), &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// History returns the saved summaries, newest first.
func (r *Recorder) History(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := r.get(ctx, historyKey, &entries)
	if errors.Is(err, ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear removes the saved program of type p. History entries are kept.
func (r *Recorder) Clear(ctx context.Context, p progression.Program) error {
	if err := r.store.Delete(ctx, programKey(p)); err != nil {
		return fmt.Errorf("clearing %s: %w", p, err)
	}
	return nil
}

// ClearAll removes every saved program and the history list.
func (r *Recorder) ClearAll(ctx context.Context) error {
	for _, p := range progression.Programs {
		if err := r.Clear(ctx, p); err != nil {
			return err
		}
	}
	if err := r.store.Delete(ctx, historyKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Export writes every saved program and the history list as indented JSON.
func (r *Recorder) Export(ctx context.Context, w io.Writer) error {
	doc := Export{
		Version:    exportVersion,
		ExportedAt: r.now().UTC(),
		Programs:   make(map[progression.Program]SavedProgram),
	}
	for _, p := range progression.Programs {
		saved, err := r.Latest(ctx, p)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		doc.Programs[p] = *saved
	}
	entries, err := r.History(ctx)
	if err != nil {
		return err
	}
	doc.History = entries

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// Import restores an export, replacing the saved programs it contains and
// the history list. Nothing is written if the document is invalid.
func (r *Recorder) Import(ctx context.Context, rd io.Reader) (*Export, error) {
	var doc Export
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if doc.Version != exportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidExport, doc.Version)
	}
	for p, saved := range doc.Programs {
		if q, err := progression.ParseProgram(string(p)); err != nil || q != p {
			return nil, fmt.Errorf("%w: unknown program %q", ErrInvalidExport, p)
		}
		if !json.Valid(saved.Config) || !json.Valid(saved.Result) {
			return nil, fmt.Errorf("%w: program %s is malformed", ErrInvalidExport, p)
		}
	}

	for _, p := range progression.Programs {
		saved, ok := doc.Programs[p]
		if !ok {
			continue
		}
		saved.Program = p
		if err := r.put(ctx, programKey(p), saved); err != nil {
			return nil, err
		}
	}
	if doc.History == nil {
		doc.History = []Entry{}
	}
	if len(doc.History) > r.limit {
		doc.History = doc.History[:r.limit]
	}
	if err := r.put(ctx, historyKey, doc.History); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Recorder) get(ctx context.Context, key string, v any) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (r *Recorder) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
