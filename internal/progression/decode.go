package progression

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/meltforce/liftplan/internal/catalog"
)

// ErrBadConfig is returned by DecodeConfig for malformed JSON or unknown fields.
var ErrBadConfig = errors.New("bad config")

// DecodeConfig decodes a JSON program configuration. Omitted fields take the
// program defaults while explicit values, zeros included, are kept and left
// to Validate. Every exercise name must be a catalog key trainable in the
// session category it is listed under. An empty body yields the default
// configuration.
func DecodeConfig(p Program, data []byte) (Config, error) {
	cfg, err := NewConfig(p)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := decodeStrict(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyDefaults()
	if len(bytes.TrimSpace(data)) > 0 {
		// Decoding again restores the explicit zeros ApplyDefaults replaced.
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
		}
	}
	if err := checkNames(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeStrict(data []byte, cfg Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after config", ErrBadConfig)
	}
	return nil
}

// checkNames rejects exercise names outside the catalog and names listed
// under a session category they cannot be trained in.
func checkNames(cfg Config) error {
	var groups []categoryWeights
	switch c := cfg.(type) {
	case *FiveByFiveConfig:
		if err := catalog.Check(sortedKeys(c.Cadence)...); err != nil {
			return err
		}
		groups = []categoryWeights{{"exercises", catalog.Full, c.Exercises}}
	case *WendlerConfig:
		groups = []categoryWeights{{"max_lifts", catalog.Full, c.MaxLifts}}
	case *PPLConfig:
		groups = c.groups()
	case *UpperLowerConfig:
		groups = c.groups()
	}
	for _, g := range groups {
		names := sortedKeys(g.weights)
		if err := catalog.Check(names...); err != nil {
			return err
		}
		for _, name := range names {
			if !catalog.InCategory(name, g.category) {
				return fmt.Errorf("%w: %s[%s] is not a %s exercise", ErrWrongCategory, g.field, name, g.category)
			}
		}
	}
	return nil
}

// IsInputError reports whether err was caused by caller input rather than
// by the system: validation, decoding or an unknown exercise.
func IsInputError(err error) bool {
	return IsValidationError(err) ||
		errors.Is(err, ErrBadConfig) ||
		errors.Is(err, catalog.ErrUnknownExercise)
}
