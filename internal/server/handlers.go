package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/liftplan/internal/catalog"
	"github.com/meltforce/liftplan/internal/history"
	lpmcp "github.com/meltforce/liftplan/internal/mcp"
	"github.com/meltforce/liftplan/internal/progression"
	"github.com/meltforce/liftplan/internal/report"
)

// maxBodyBytes caps request bodies: configs, exports and CSV uploads.
const maxBodyBytes = 10 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

// programParam parses the {program} URL parameter, writing a 404 for
// unknown programs.
func programParam(w http.ResponseWriter, r *http.Request) (progression.Program, bool) {
	p, err := progression.ParseProgram(chi.URLParam(r, "program"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return "", false
	}
	return p, true
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	p, ok := programParam(w, r)
	if !ok {
		return
	}
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	save := false
	if v := r.URL.Query().Get("save"); v != "" {
		var err error
		if save, err = strconv.ParseBool(v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid save parameter"})
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	cfg, err := progression.DecodeConfig(p, body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var out *lpmcp.Generated
	if save {
		out, err = s.Programs().Save(r.Context(), uid, cfg)
	} else {
		var res any
		res, err = s.generate(cfg)
		out = &lpmcp.Generated{Program: p, Config: cfg, Result: res}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.CounterGenerated.WithLabelValues(string(p), strconv.FormatBool(save)).Inc()
	if save {
		s.log.Info("program saved", "user_id", uid, "program", p, "entry", out.Entry.ID)
	}
	writeJSON(w, http.StatusOK, out)
}

// generate runs cfg through the cache when one is configured.
func (s *Server) generate(cfg progression.Config) (any, error) {
	if s.cache == nil {
		return progression.Generate(cfg)
	}
	raw, hit, err := s.cache.Generate(cfg)
	if err != nil {
		return nil, err
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.metrics.CounterCache.WithLabelValues(result).Inc()
	return raw, nil
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	p, ok := programParam(w, r)
	if !ok {
		return
	}
	cfg, err := progression.DefaultConfig(p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	p, ok := programParam(w, r)
	if !ok {
		return
	}
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	saved, err := s.Recorder(uid).Latest(r.Context(), p)
	if errors.Is(err, history.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no saved %s program", p)})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleSheet renders the latest saved program as a printable HTML page.
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	p, ok := programParam(w, r)
	if !ok {
		return
	}
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	saved, err := s.Recorder(uid).Latest(r.Context(), p)
	if errors.Is(err, history.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no saved %s program", p)})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	cfg, res, err := report.Decode(p, saved.Config, saved.Result)
	if err != nil {
		s.writeError(w, fmt.Errorf("loading saved %s program: %w", p, err))
		return
	}
	page, err := report.HTML(cfg, res)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleClearProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := programParam(w, r)
	if !ok {
		return
	}
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := s.Recorder(uid).Clear(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cleared": string(p)})
}

type oneRepMaxRequest struct {
	Weight  float64 `json:"weight"`
	Reps    int     `json:"reps"`
	Formula string  `json:"formula"`
}

func (s *Server) handleOneRepMax(w http.ResponseWriter, r *http.Request) {
	var req oneRepMaxRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	f, err := progression.ParseFormula(req.Formula)
	if err != nil {
		s.writeError(w, err)
		return
	}
	est, err := progression.Estimate(req.Weight, req.Reps, f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// writeError maps input errors to 400, missing records to 404 and anything
// else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case progression.IsInputError(err), errors.Is(err, history.ErrInvalidExport):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, history.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
