package server

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/meltforce/liftplan/internal/gencache"
	"github.com/meltforce/liftplan/internal/history"
	"github.com/meltforce/liftplan/internal/storage"
)

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu     sync.Mutex
	stores map[int]*history.MemoryStore
	users  map[string]int
	logs   []storage.ImportLog

	// pingErr is returned by Ping.
	pingErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		stores: map[int]*history.MemoryStore{},
		users:  map[string]int{},
	}
}

func (f *fakeBackend) KV(userID int) history.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stores[userID]
	if !ok {
		st = history.NewMemoryStore()
		f.stores[userID] = st
	}
	return st
}

func (f *fakeBackend) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 2
	f.users[login] = id
	return id, nil
}

func (f *fakeBackend) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, log)
	return log.ID, nil
}

func (f *fakeBackend) QueryImportLogs(_ context.Context, userID, limit int) ([]storage.ImportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ImportLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.logs[i].UserID == userID {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

func (f *fakeBackend) GetDataStats(_ context.Context, userID int) (*storage.DataStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &storage.DataStats{}
	for _, l := range f.logs {
		if l.UserID != userID {
			continue
		}
		stats.Imports++
		if l.Status == "error" {
			stats.FailedImports++
		}
	}
	return stats, nil
}

func (f *fakeBackend) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func newTestServer(t *testing.T, db Backend) *Server {
	t.Helper()
	cache, err := gencache.New(16<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	return New(db, Options{APIKey: "secret", Cache: cache}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
