package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftplan/internal/history"
	"github.com/meltforce/liftplan/internal/progression"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// newTestHandlers returns handlers over per-user in-memory recorders.
func newTestHandlers() (*handlers, map[int]*history.Recorder) {
	recs := map[int]*history.Recorder{}
	src := RecorderSource{Recorder: func(userID int) *history.Recorder {
		if r, ok := recs[userID]; ok {
			return r
		}
		r := history.NewRecorder(history.NewMemoryStore(), 0)
		recs[userID] = r
		return r
	}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &handlers{ds: src, log: log}, recs
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// TestGenerateTool verifies a generate tool decodes its arguments, applies
// defaults and does not record anything without save.
func TestGenerateTool(t *testing.T) {
	h, recs := newTestHandlers()
	handler := h.generate(progression.FiveByFive)

	res, err := handler(context.Background(), callRequest(map[string]any{
		"weeks":     float64(1),
		"exercises": map[string]any{"squat": float64(60)},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var out struct {
		Program progression.Program `json:"program"`
		Config  struct {
			Weeks     int     `json:"weeks"`
			Increment float64 `json:"increment"`
		} `json:"config"`
		Result struct {
			FinalWeights map[string]float64 `json:"final_weights"`
		} `json:"result"`
		Entry *history.Entry `json:"entry"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Program != progression.FiveByFive {
		t.Errorf("program = %q, want 5x5", out.Program)
	}
	if out.Config.Weeks != 1 || out.Config.Increment != 2.5 {
		t.Errorf("config = %+v, want weeks 1 and default increment", out.Config)
	}
	if _, ok := out.Result.FinalWeights["squat"]; !ok {
		t.Errorf("final weights = %v, want squat", out.Result.FinalWeights)
	}
	if out.Entry != nil {
		t.Error("entry set without save")
	}
	if len(recs) != 0 {
		t.Error("recorder used without save")
	}
}

// TestGenerateToolSave verifies save records the program for the context user.
func TestGenerateToolSave(t *testing.T) {
	h, recs := newTestHandlers()
	ctx := WithUserID(context.Background(), 7)

	res, err := h.generate(progression.Wendler531)(ctx, callRequest(map[string]any{
		"cycles":    float64(1),
		"max_lifts": map[string]any{"squat": float64(100)},
		"save":      true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	rec, ok := recs[7]
	if !ok {
		t.Fatal("no recorder for user 7")
	}
	entries, err := rec.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Program != progression.Wendler531 {
		t.Fatalf("history = %+v, want one 531 entry", entries)
	}

	res, err = h.getSavedProgram(ctx, callRequest(map[string]any{"program": "531"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Errorf("get_saved_program error: %s", resultText(t, res))
	}

	res, err = h.listHistory(ctx, callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), `"program":"531"`) {
		t.Errorf("list_history = %s, want the 531 entry", resultText(t, res))
	}
}

// TestGenerateToolErrors verifies invalid arguments become tool errors
// rather than protocol errors.
func TestGenerateToolErrors(t *testing.T) {
	h, _ := newTestHandlers()
	tests := []struct {
		name string
		p    progression.Program
		args map[string]any
		want string
	}{
		{"out of range", progression.FiveByFive, map[string]any{"weeks": float64(60), "exercises": map[string]any{"squat": float64(60)}}, "weeks"},
		{"unknown exercise", progression.FiveByFive, map[string]any{"exercises": map[string]any{"curlz": float64(20)}}, "curlz"},
		{"unknown field", progression.PushPullLegs, map[string]any{"volume": "high"}, "volume"},
		{"bad frequency", progression.UpperLower, map[string]any{"frequency": float64(3)}, "frequency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.generate(tt.p)(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected tool error")
			}
			if got := resultText(t, res); !strings.Contains(got, tt.want) {
				t.Errorf("error = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}

// TestGetSavedProgramMissing verifies a program never saved is reported as a
// tool error.
func TestGetSavedProgramMissing(t *testing.T) {
	h, _ := newTestHandlers()
	res, err := h.getSavedProgram(context.Background(), callRequest(map[string]any{"program": "ppl"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if got := resultText(t, res); !strings.Contains(got, "no saved ppl") {
		t.Errorf("error = %q", got)
	}
}

// TestEstimateOneRepMaxTool verifies the estimate and its table.
func TestEstimateOneRepMaxTool(t *testing.T) {
	h, _ := newTestHandlers()
	res, err := h.estimateOneRepMax(context.Background(), callRequest(map[string]any{
		"weight": float64(100),
		"reps":   float64(5),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var est progression.OneRepMaxEstimate
	if err := json.Unmarshal([]byte(resultText(t, res)), &est); err != nil {
		t.Fatal(err)
	}
	if est.OneRepMax != 116.67 || est.Formula != progression.Epley {
		t.Errorf("estimate = %v (%s), want 116.67 (epley)", est.OneRepMax, est.Formula)
	}
	if len(est.Table) != 11 {
		t.Errorf("table rows = %d, want 11", len(est.Table))
	}

	res, _ = h.estimateOneRepMax(context.Background(), callRequest(map[string]any{
		"weight": float64(100),
		"reps":   float64(0),
	}))
	if !res.IsError {
		t.Error("expected tool error for zero reps")
	}
}

// TestResources verifies each resource returns JSON content at its URI.
func TestResources(t *testing.T) {
	h, _ := newTestHandlers()
	tests := []struct {
		uri     string
		handler func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)
		want    string
	}{
		{"liftplan://exercise_catalog", h.exerciseCatalog, `"overheadPress"`},
		{"liftplan://wendler_scheme", h.wendlerScheme, `"Deload"`},
		{"liftplan://program_defaults", h.programDefaults, `"upper_lower"`},
	}
	for _, tt := range tests {
		var req mcp.ReadResourceRequest
		req.Params.URI = tt.uri
		contents, err := tt.handler(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: %v", tt.uri, err)
		}
		text, ok := contents[0].(mcp.TextResourceContents)
		if !ok {
			t.Fatalf("%s: content type = %T", tt.uri, contents[0])
		}
		if text.URI != tt.uri || text.MIMEType != "application/json" {
			t.Errorf("%s: uri = %q, mime = %q", tt.uri, text.URI, text.MIMEType)
		}
		if !strings.Contains(text.Text, tt.want) {
			t.Errorf("%s: body does not contain %s", tt.uri, tt.want)
		}
	}
}
