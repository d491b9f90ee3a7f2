package cv

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Prediction is the tagged outcome of one visual inference. Known=false
// degrades only the CV signal for that request; analysis continues.
type Prediction struct {
	Probability float64
	Known       bool
	Label       string // BENIGN or MALICIOUS
	Source      string
	Note        string
}

// Provider scores the visual maliciousness of a QR image. Implementations
// are immutable after startup selection and safe for concurrent use.
type Provider interface {
	Predict(ctx context.Context, image []byte) Prediction
	Source() string
	Available() bool
}

// Config locates the optional visual model variants.
type Config struct {
	AdapterPath string // pluggable adapter executable (or .py script)
	ModelPath   string // serialized native runtime artifact
	Timeout     time.Duration
}

// Select resolves the provider once at startup by fixed file-presence
// precedence: pluggable adapter, then native runtime, else unavailable.
// Availability is never re-probed per request.
func Select(cfg Config) Provider {
	if cfg.AdapterPath != "" {
		if _, err := os.Stat(cfg.AdapterPath); err == nil {
			logrus.WithField("path", cfg.AdapterPath).Info("using pluggable cv adapter")
			return NewExecAdapter(cfg.AdapterPath, cfg.Timeout)
		}
	}
	if cfg.ModelPath != "" {
		runtime, err := LoadNativeRuntime(cfg.ModelPath)
		if err == nil {
			logrus.WithField("path", cfg.ModelPath).Info("using native cv runtime")
			return runtime
		}
		if !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", cfg.ModelPath).Warn("cv model artifact unusable")
		}
	}
	logrus.Info("no cv model available, visual signal disabled")
	return Unavailable{}
}

// Unavailable is the no-model variant: every prediction is unknown and the
// fusion formula excludes the visual term entirely.
type Unavailable struct{}

// Predict reports an unknown prediction.
func (Unavailable) Predict(context.Context, []byte) Prediction {
	return Prediction{}
}

// Source is empty when no model is loaded.
func (Unavailable) Source() string { return "" }

// Available reports false.
func (Unavailable) Available() bool { return false }

func labelFor(probability float64) string {
	if probability >= 0.5 {
		return "MALICIOUS"
	}
	return "BENIGN"
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
