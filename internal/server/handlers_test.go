package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

func do(t *testing.T, s *Server, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

// TestGenerateProgram verifies generation with defaults and that nothing is
// saved without ?save=true.
func TestGenerateProgram(t *testing.T) {
	s := newTestServer(t, newFakeBackend())

	rec := do(t, s, http.MethodPost, "/api/v1/programs/5x5", `{"weeks": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var out struct {
		Program string `json:"program"`
		Result  struct {
			WeeklyData []json.RawMessage `json:"weekly_data"`
		} `json:"result"`
		Entry *json.RawMessage `json:"entry"`
	}
	decodeBody(t, rec, &out)
	if out.Program != "5x5" || len(out.Result.WeeklyData) != 2 {
		t.Errorf("program = %q, weeks = %d, want 5x5 with 2 weeks", out.Program, len(out.Result.WeeklyData))
	}
	if out.Entry != nil {
		t.Error("entry returned without save")
	}

	rec = do(t, s, http.MethodGet, "/api/v1/programs/5x5/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("latest status = %d, want 404", rec.Code)
	}
}

// TestGenerateProgramErrors verifies the status codes of rejected requests.
func TestGenerateProgramErrors(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"unknown program", "/api/v1/programs/gvt", `{}`, http.StatusNotFound},
		{"malformed JSON", "/api/v1/programs/531", `{"cycles":`, http.StatusBadRequest},
		{"unknown field", "/api/v1/programs/531", `{"sets": 3}`, http.StatusBadRequest},
		{"out of range", "/api/v1/programs/531", `{"cycles": 13}`, http.StatusBadRequest},
		{"explicit zero", "/api/v1/programs/5x5", `{"weeks": 0, "increment": 0}`, http.StatusBadRequest},
		{"wrong category", "/api/v1/programs/ppl", `{"push_exercises": {"squat": 80}}`, http.StatusBadRequest},
		{"negative weight", "/api/v1/programs/ppl", `{"push_exercises": {"benchPress": -5}}`, http.StatusBadRequest},
		{"unknown exercise", "/api/v1/programs/upper_lower", `{"upper_exercises": {"zercherCarry": 40}}`, http.StatusBadRequest},
		{"bad save flag", "/api/v1/programs/5x5?save=maybe", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			var e map[string]string
			decodeBody(t, rec, &e)
			if e["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

// TestSaveLatestClear verifies the save, latest, history and clear flow is
// scoped per user.
func TestSaveLatestClear(t *testing.T) {
	db := newFakeBackend()
	s := newTestServer(t, db)

	rec := do(t, s, http.MethodPost, "/api/v1/programs/531?save=true", `{"cycles": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/programs/531/latest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("latest status = %d", rec.Code)
	}
	var saved struct {
		Program string `json:"program"`
		Config  struct {
			Cycles int `json:"cycles"`
		} `json:"config"`
	}
	decodeBody(t, rec, &saved)
	if saved.Program != "531" || saved.Config.Cycles != 1 {
		t.Errorf("saved = %+v", saved)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history", "")
	var hist struct {
		Entries []struct {
			Program string `json:"program"`
		} `json:"entries"`
	}
	decodeBody(t, rec, &hist)
	if len(hist.Entries) != 1 || hist.Entries[0].Program != "531" {
		t.Errorf("history = %+v", hist.Entries)
	}

	if _, ok := db.stores[1]; !ok || len(db.stores) != 1 {
		t.Errorf("stores = %v, want only the dev user", db.stores)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/programs/531", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/programs/531/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("latest after clear = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear history status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/history", "")
	decodeBody(t, rec, &hist)
	if len(hist.Entries) != 0 {
		t.Errorf("history after clear = %d entries", len(hist.Entries))
	}
}

// TestExportImport verifies an export round-trips through the import endpoint
// and that import requires the API key.
func TestExportImport(t *testing.T) {
	db := newFakeBackend()
	s := newTestServer(t, db)

	do(t, s, http.MethodPost, "/api/v1/programs/ppl?save=true", `{"weeks": 1}`)
	rec := do(t, s, http.MethodGet, "/api/v1/history/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "liftplan-export-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	export := rec.Body.String()

	do(t, s, http.MethodDelete, "/api/v1/history", "")

	rec = do(t, s, http.MethodPost, "/api/v1/history/import", export)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("import without key = %d, want 401", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/history/import", export, "X-API-Key", "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body)
	}
	var counts map[string]int
	decodeBody(t, rec, &counts)
	if counts["programs"] != 1 || counts["history"] != 1 {
		t.Errorf("counts = %v, want 1 program and 1 history entry", counts)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/programs/ppl/latest", "")
	if rec.Code != http.StatusOK {
		t.Errorf("latest after import = %d, want 200", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/history/import", `{"version": 9}`, "X-API-Key", "secret")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad version import = %d, want 400", rec.Code)
	}

	if len(db.logs) != 2 || db.logs[0].Status != "success" || db.logs[1].Status != "error" {
		t.Errorf("import logs = %+v", db.logs)
	}
}

// TestOneRepMax verifies the estimate endpoint and its validation.
func TestOneRepMax(t *testing.T) {
	s := newTestServer(t, newFakeBackend())

	rec := do(t, s, http.MethodPost, "/api/v1/onerepmax", `{"weight": 100, "reps": 5, "formula": "brzycki"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var est struct {
		OneRepMax float64 `json:"one_rep_max"`
		Table     []any   `json:"table"`
	}
	decodeBody(t, rec, &est)
	if est.OneRepMax != 112.5 || len(est.Table) != 11 {
		t.Errorf("estimate = %v with %d rows", est.OneRepMax, len(est.Table))
	}

	rec = do(t, s, http.MethodPost, "/api/v1/onerepmax", `{"weight": 100, "reps": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero reps status = %d, want 400", rec.Code)
	}
}

// TestDefaultsAndCatalog verifies the read-only reference endpoints.
func TestDefaultsAndCatalog(t *testing.T) {
	s := newTestServer(t, newFakeBackend())

	rec := do(t, s, http.MethodGet, "/api/v1/programs/upper_lower/defaults", "")
	var cfg struct {
		Frequency int                `json:"frequency"`
		Upper     map[string]float64 `json:"upper_exercises"`
	}
	decodeBody(t, rec, &cfg)
	if cfg.Frequency != 4 || len(cfg.Upper) != 9 {
		t.Errorf("defaults = %+v", cfg)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/catalog", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"squat"`) {
		t.Errorf("catalog status = %d", rec.Code)
	}
}

const alphaCSV = `"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 16:54 h";"1:02 hr"
"1. Squats · Barbell · 5 reps"
#;KG;REPS;RIR
1;120;5;2
2;125;3;1
"2. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
`

// TestSeedAlpha verifies derived weights are applied to the requested
// program's defaults and the upload is logged.
func TestSeedAlpha(t *testing.T) {
	db := newFakeBackend()
	s := newTestServer(t, db)

	rec := do(t, s, http.MethodPost, "/api/v1/seed/alpha?program=5x5", alphaCSV, "X-API-Key", "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var out struct {
		Sessions int `json:"sessions"`
		Config   struct {
			Exercises map[string]float64 `json:"exercises"`
		} `json:"config"`
		Applied []string `json:"applied"`
	}
	decodeBody(t, rec, &out)
	if out.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", out.Sessions)
	}
	if out.Config.Exercises["squat"] != 125 || out.Config.Exercises["bench"] != 102.5 {
		t.Errorf("exercises = %v, want squat 125 and bench 102.5", out.Config.Exercises)
	}
	if len(out.Applied) != 2 {
		t.Errorf("applied = %v, want bench and squat", out.Applied)
	}
	if len(db.logs) != 1 || db.logs[0].Source != "alpha" {
		t.Errorf("import logs = %+v", db.logs)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/seed/alpha?program=hiit", alphaCSV, "X-API-Key", "secret")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown program status = %d, want 400", rec.Code)
	}
}

// TestSettingsEndpoints verifies stats and import logs are served per user.
func TestSettingsEndpoints(t *testing.T) {
	db := newFakeBackend()
	s := newTestServer(t, db)
	do(t, s, http.MethodPost, "/api/v1/seed/alpha", alphaCSV, "X-API-Key", "secret")

	rec := do(t, s, http.MethodGet, "/api/v1/settings/stats", "")
	var stats struct {
		Imports int `json:"imports"`
	}
	decodeBody(t, rec, &stats)
	if stats.Imports != 1 {
		t.Errorf("imports = %d, want 1", stats.Imports)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/settings/imports?limit=5", "")
	var logs []map[string]any
	decodeBody(t, rec, &logs)
	if len(logs) != 1 {
		t.Errorf("logs = %d, want 1", len(logs))
	}
}
