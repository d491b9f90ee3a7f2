package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Weights is the fusion weight table. All values are configuration, loaded
// once at startup and validated before the first request; an invalid table
// is fatal then, never mid-request.
type Weights struct {
	MLPoints        float64 `json:"ml_points"`
	MLUnknownPoints float64 `json:"ml_unknown_points"`

	FlagPoints float64 `json:"flag_points"`
	FlagCap    float64 `json:"flag_cap"`

	AgeUnder30Points   float64 `json:"age_under_30_points"`
	AgeUnder90Points   float64 `json:"age_under_90_points"`
	AgeUnder365Points  float64 `json:"age_under_365_points"`
	AgeUnknownPoints   float64 `json:"age_unknown_points"`
	UnregisteredPoints float64 `json:"unregistered_points"`

	SSLInvalidPoints float64 `json:"ssl_invalid_points"`
	SSLUnknownPoints float64 `json:"ssl_unknown_points"`

	CVWeight float64 `json:"cv_weight"`

	SafeMax       int `json:"safe_max"`
	SuspiciousMax int `json:"suspicious_max"`
}

// DefaultWeights returns the standard table.
func DefaultWeights() Weights {
	return Weights{
		MLPoints:           50,
		MLUnknownPoints:    35,
		FlagPoints:         6,
		FlagCap:            30,
		AgeUnder30Points:   10,
		AgeUnder90Points:   7,
		AgeUnder365Points:  3,
		AgeUnknownPoints:   4,
		UnregisteredPoints: 15,
		SSLInvalidPoints:   10,
		SSLUnknownPoints:   5,
		CVWeight:           0.35,
		SafeMax:            39,
		SuspiciousMax:      69,
	}
}

// LoadWeights overlays a JSON weight file onto the defaults. An empty path
// returns the defaults unchanged.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return w, fmt.Errorf("read weights: %w", err)
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("unmarshal weights: %w", err)
	}
	return w, nil
}

// Validate rejects tables that would break the fusion invariants.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"ml_points":            w.MLPoints,
		"ml_unknown_points":    w.MLUnknownPoints,
		"flag_points":          w.FlagPoints,
		"flag_cap":             w.FlagCap,
		"age_under_30_points":  w.AgeUnder30Points,
		"age_under_90_points":  w.AgeUnder90Points,
		"age_under_365_points": w.AgeUnder365Points,
		"age_unknown_points":   w.AgeUnknownPoints,
		"unregistered_points":  w.UnregisteredPoints,
		"ssl_invalid_points":   w.SSLInvalidPoints,
		"ssl_unknown_points":   w.SSLUnknownPoints,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if w.MLPoints == 0 {
		return errors.New("ml_points must be positive")
	}
	if w.MLUnknownPoints > w.MLPoints {
		return errors.New("ml_unknown_points must not exceed ml_points")
	}
	if w.FlagCap < w.FlagPoints {
		return errors.New("flag_cap must cover at least one flag")
	}
	if w.AgeUnknownPoints >= w.AgeUnder30Points && w.AgeUnder30Points > 0 {
		return errors.New("age_unknown_points must stay below age_under_30_points")
	}
	if w.SSLUnknownPoints >= w.SSLInvalidPoints && w.SSLInvalidPoints > 0 {
		return errors.New("ssl_unknown_points must stay below ssl_invalid_points")
	}
	if w.CVWeight < 0 || w.CVWeight >= 1 {
		return errors.New("cv_weight must be in [0, 1)")
	}
	if w.SafeMax < 0 || w.SafeMax >= w.SuspiciousMax || w.SuspiciousMax >= 100 {
		return errors.New("level thresholds must satisfy 0 <= safe_max < suspicious_max < 100")
	}
	return nil
}
