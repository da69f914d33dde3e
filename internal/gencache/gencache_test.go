package gencache

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/meltforce/liftplan/internal/progression"
)

func decode(t *testing.T, p progression.Program, body string) progression.Config {
	t.Helper()
	cfg, err := progression.DecodeConfig(p, []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

// testSize keeps a four-week program well under the per-entry limit.
const testSize = 16 << 20

// TestGenerateCaches verifies the second call for an equal configuration is
// served from the cache with an identical result.
func TestGenerateCaches(t *testing.T) {
	c, err := New(testSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := decode(t, progression.FiveByFive, `{"weeks": 4}`)

	first, hit, err := c.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first call reported a cache hit")
	}
	second, hit, err := c.Generate(decode(t, progression.FiveByFive, `{"weeks": 4}`))
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second call missed the cache")
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

// TestGenerateKeyedByConfig verifies different programs and parameters do not
// share entries.
func TestGenerateKeyedByConfig(t *testing.T) {
	c, err := New(testSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	c.Generate(decode(t, progression.FiveByFive, `{"weeks": 4}`))
	_, hit, _ := c.Generate(decode(t, progression.FiveByFive, `{"weeks": 5}`))
	if hit {
		t.Error("weeks 5 hit the weeks 4 entry")
	}
	_, hit, _ = c.Generate(decode(t, progression.PushPullLegs, `{"weeks": 4}`))
	if hit {
		t.Error("ppl hit a 5x5 entry")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

// TestGenerateResultMatchesEngine verifies a cached result decodes to what
// the engine produces directly.
func TestGenerateResultMatchesEngine(t *testing.T) {
	c, err := New(testSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := decode(t, progression.Wendler531, `{"cycles": 2}`)
	c.Generate(cfg)
	raw, hit, err := c.Generate(cfg)
	if err != nil || !hit {
		t.Fatalf("hit = %v, err = %v", hit, err)
	}

	var got progression.WendlerResult
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	want, err := progression.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("result mismatch (-engine +cached):\n%s", diff)
	}
}

// TestGenerateInvalid verifies validation errors pass through and nothing is cached.
func TestGenerateInvalid(t *testing.T) {
	c, err := New(testSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := decode(t, progression.UpperLower, `{"frequency": 3}`)
	if _, _, err := c.Generate(cfg); !errors.Is(err, progression.ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
