package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meltforce/liftplan/internal/progression"
	"github.com/meltforce/liftplan/internal/seed"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	entries, err := s.Recorder(uid).History(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := s.Recorder(uid).ClearAll(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cleared": "all"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.Recorder(uid).Export(r.Context(), &buf); err != nil {
		s.writeError(w, err)
		return
	}
	name := fmt.Sprintf("liftplan-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start := time.Now()
	doc, err := s.Recorder(uid).Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))

	counts := importCounts{}
	if doc != nil {
		counts.Received = len(doc.Programs) + len(doc.History)
		counts.Applied = counts.Received
	}
	s.logImport(uid, "history", counts, err, time.Since(start))

	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"programs": len(doc.Programs),
		"history":  len(doc.History),
	})
}

// seedResponse is the derived starting point of an Alpha CSV upload. Config
// and Applied are set when a program is requested.
type seedResponse struct {
	*seed.Result
	Program progression.Program `json:"program,omitempty"`
	Config  progression.Config  `json:"config,omitempty"`
	Applied []string            `json:"applied,omitempty"`
}

func (s *Server) handleSeedAlpha(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var resp seedResponse
	if name := r.URL.Query().Get("program"); name != "" {
		p, err := progression.ParseProgram(name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		resp.Program = p
	}

	start := time.Now()
	sessions, err := seed.ParseAlpha(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.logImport(uid, "alpha", importCounts{}, err, time.Since(start))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	resp.Result = seed.Derive(sessions)

	if resp.Program != "" {
		cfg, err := progression.DefaultConfig(resp.Program)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Applied = resp.Result.Apply(cfg)
		resp.Config = cfg
	}

	meta, _ := json.Marshal(map[string]any{"unknown": resp.Result.Unknown, "program": resp.Program})
	s.logImport(uid, "alpha", importCounts{
		Received: resp.Result.Sets,
		Applied:  len(resp.Result.WorkingWeights),
		Metadata: meta,
	}, nil, time.Since(start))

	writeJSON(w, http.StatusOK, resp)
}
