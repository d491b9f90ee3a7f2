package ml

import (
	"github.com/sirupsen/logrus"

	"qr-phishing-detector/backend/internal/features"
)

// Provider estimates the phishing probability for an extracted feature set.
// Implementations are immutable after construction and safe for concurrent
// use without synchronization.
type Provider interface {
	Probability(fs features.FeatureSet) float64
	Source() string
}

// Select resolves the provider once at process startup. A missing or corrupt
// artifact degrades permanently to the heuristic provider for the process
// lifetime; there are no per-request retries.
func Select(artifactPath string) Provider {
	if artifactPath == "" {
		logrus.Info("no phishing model artifact configured, using heuristic provider")
		return Heuristic{}
	}
	trained, err := LoadTrained(artifactPath)
	if err != nil {
		logrus.WithError(err).WithField("path", artifactPath).
			Warn("phishing model unavailable, falling back to heuristic provider")
		return Heuristic{}
	}
	logrus.WithField("path", artifactPath).Info("loaded trained phishing model")
	return trained
}

func clampProbability(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
