package ml

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qr-phishing-detector/backend/internal/features"
)

func TestHeuristicBounds(t *testing.T) {
	h := Heuristic{}

	clean := features.FeatureSet{URLLength: 18, NumDots: 1, IsHTTPS: 1}
	if p := h.Probability(clean); p >= 0.3 {
		t.Fatalf("clean https url must score low, got %v", p)
	}

	loaded := features.FeatureSet{
		URLLength:              140,
		NumDots:                6,
		NumHyphens:             5,
		HasAtSymbol:            1,
		HasIP:                  1,
		SubdomainCount:         5,
		KeywordHits:            6,
		HasShortener:           1,
		HasPunycode:            1,
		PercentEncodingDensity: 0.2,
		BrandSimilarity:        1,
	}
	if p := h.Probability(loaded); p <= 0.9 {
		t.Fatalf("flag-saturated url must score high, got %v", p)
	}
}

func TestHeuristicMonotonicity(t *testing.T) {
	h := Heuristic{}
	base := features.FeatureSet{URLLength: 40, NumDots: 2, IsHTTPS: 1}
	baseline := h.Probability(base)

	bump := func(name string, mutate func(*features.FeatureSet)) {
		fs := base
		mutate(&fs)
		if p := h.Probability(fs); p < baseline {
			t.Fatalf("increasing %s decreased probability: %v -> %v", name, baseline, p)
		}
	}

	bump("keyword_hits", func(fs *features.FeatureSet) { fs.KeywordHits = 3 })
	bump("has_ip", func(fs *features.FeatureSet) { fs.HasIP = 1 })
	bump("has_at_symbol", func(fs *features.FeatureSet) { fs.HasAtSymbol = 1 })
	bump("subdomain_count", func(fs *features.FeatureSet) { fs.SubdomainCount = 4 })
	bump("brand_similarity", func(fs *features.FeatureSet) { fs.BrandSimilarity = 1 })
	bump("has_shortener", func(fs *features.FeatureSet) { fs.HasShortener = 1 })
}

func writeArtifact(t *testing.T, a artifact) string {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "phishing_model.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func validArtifact() artifact {
	coeffs := make([]float64, len(features.FeatureNames))
	coeffs[0] = 0.05 // url_length
	return artifact{
		SchemaVersion: artifactSchemaVersion,
		FeatureNames:  features.FeatureNames,
		Coefficients:  coeffs,
		Intercept:     -2.0,
	}
}

func TestLoadTrained(t *testing.T) {
	path := writeArtifact(t, validArtifact())
	trained, err := LoadTrained(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	short := trained.Probability(features.FeatureSet{URLLength: 10})
	long := trained.Probability(features.FeatureSet{URLLength: 200})
	if short >= long {
		t.Fatalf("positive coefficient must be monotonic: %v vs %v", short, long)
	}
	if short < 0 || long > 1 {
		t.Fatalf("probabilities out of range: %v, %v", short, long)
	}
}

func TestLoadTrainedSchemaGuards(t *testing.T) {
	t.Run("wrong version", func(t *testing.T) {
		a := validArtifact()
		a.SchemaVersion = 2
		if _, err := LoadTrained(writeArtifact(t, a)); !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("expected schema mismatch, got %v", err)
		}
	})
	t.Run("reordered features", func(t *testing.T) {
		a := validArtifact()
		names := append([]string(nil), features.FeatureNames...)
		names[0], names[1] = names[1], names[0]
		a.FeatureNames = names
		if _, err := LoadTrained(writeArtifact(t, a)); !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("expected schema mismatch, got %v", err)
		}
	})
	t.Run("coefficient count", func(t *testing.T) {
		a := validArtifact()
		a.Coefficients = a.Coefficients[:3]
		if _, err := LoadTrained(writeArtifact(t, a)); !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("expected schema mismatch, got %v", err)
		}
	})
}

func TestSelectFallsBackToHeuristic(t *testing.T) {
	if src := Select("").Source(); src != "heuristic" {
		t.Fatalf("expected heuristic without artifact, got %q", src)
	}
	if src := Select(filepath.Join(t.TempDir(), "missing.json")).Source(); src != "heuristic" {
		t.Fatalf("expected heuristic for missing artifact, got %q", src)
	}
	path := writeArtifact(t, validArtifact())
	if src := Select(path).Source(); src != "trained" {
		t.Fatalf("expected trained provider, got %q", src)
	}
}
