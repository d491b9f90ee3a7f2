package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default table must validate: %v", err)
	}
}

func TestWeightsValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Weights)
	}{
		{"negative points", func(w *Weights) { w.FlagPoints = -1 }},
		{"ml unknown above ml", func(w *Weights) { w.MLUnknownPoints = w.MLPoints + 1 }},
		{"flag cap below one flag", func(w *Weights) { w.FlagCap = w.FlagPoints - 1 }},
		{"unknown age outranks new domain", func(w *Weights) { w.AgeUnknownPoints = w.AgeUnder30Points }},
		{"unknown ssl outranks invalid", func(w *Weights) { w.SSLUnknownPoints = w.SSLInvalidPoints }},
		{"cv weight out of range", func(w *Weights) { w.CVWeight = 1.0 }},
		{"inverted thresholds", func(w *Weights) { w.SafeMax = 80 }},
		{"suspicious max too high", func(w *Weights) { w.SuspiciousMax = 100 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := DefaultWeights()
			tc.mutate(&w)
			if err := w.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadWeightsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(`{"cv_weight": 0.5, "safe_max": 30}`), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if w.CVWeight != 0.5 {
		t.Fatalf("expected overridden cv weight, got %v", w.CVWeight)
	}
	if w.SafeMax != 30 {
		t.Fatalf("expected overridden safe max, got %d", w.SafeMax)
	}
	if w.MLPoints != DefaultWeights().MLPoints {
		t.Fatal("unset fields must keep their defaults")
	}
}

func TestLoadWeightsEmptyPath(t *testing.T) {
	w, err := LoadWeights("")
	if err != nil {
		t.Fatalf("empty path must not error: %v", err)
	}
	if w != DefaultWeights() {
		t.Fatal("empty path must return defaults")
	}
}

func TestLoadWeightsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
