// Package loudness implements the EBU R128 loudnorm protocol pieces:
// parsing pass-1 measurement output and building filter strings for both
// passes. Parsing is a pure function over captured stderr so it can be
// tested against recorded engine output.
package loudness

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMeasurementParse is returned when pass-1 output lacks a required
// measurement field. This fails the job: applying without valid measured
// values would silently mis-normalize.
var ErrMeasurementParse = errors.New("loudness measurement parse failed")

// Measurement holds the pass-1 loudnorm results consumed by pass 2.
// Ephemeral: produced per job, never persisted.
type Measurement struct {
	InputI       float64 // Integrated loudness, LUFS.
	InputTP      float64 // True peak, dBTP.
	InputLRA     float64 // Loudness range, LU.
	InputThresh  float64 // Gating threshold, LUFS.
	TargetOffset float64 // Offset applied in linear mode.
}

// requiredFields are the loudnorm JSON keys pass 2 depends on, in the
// order they appear in engine output.
var requiredFields = []string{"input_i", "input_tp", "input_lra", "input_thresh", "target_offset"}

// ParseMeasurement extracts the loudnorm JSON block from pass-1 stderr and
// returns the measured values. The engine prints the block after its normal
// diagnostics, so everything from the first '{' to the last '}' is treated
// as the candidate document. Any missing required field yields
// ErrMeasurementParse; there is no silent defaulting.
func ParseMeasurement(stderr string) (*Measurement, error) {
	start := strings.Index(stderr, "{")
	end := strings.LastIndex(stderr, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON block in engine output", ErrMeasurementParse)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(stderr[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMeasurementParse, err)
	}

	values := make(map[string]float64, len(requiredFields))
	for _, field := range requiredFields {
		v, ok := raw[field]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrMeasurementParse, field)
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrMeasurementParse, field, err)
		}
		values[field] = f
	}

	return &Measurement{
		InputI:       values["input_i"],
		InputTP:      values["input_tp"],
		InputLRA:     values["input_lra"],
		InputThresh:  values["input_thresh"],
		TargetOffset: values["target_offset"],
	}, nil
}

// toFloat coerces loudnorm JSON values, which the engine emits as quoted
// strings (e.g. "-23.05"), to float64.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
