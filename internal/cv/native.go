package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
)

const nativeSource = "native_runtime"

// nativeSchemaVersion is the artifact layout this runtime understands.
const nativeSchemaVersion = 1

// nativeFeatureNames fixes the image-statistic order the artifact's
// coefficients refer to. The same guard as the phishing model: a layout
// mismatch refuses to load.
var nativeFeatureNames = []string{
	"aspect_ratio",
	"mean_luma",
	"dark_ratio",
	"transition_density",
}

var errNativeSchema = errors.New("cv model artifact schema mismatch")

type nativeArtifact struct {
	SchemaVersion int       `json:"schema_version"`
	FeatureNames  []string  `json:"feature_names"`
	Coefficients  []float64 `json:"coefficients"`
	Intercept     float64   `json:"intercept"`
}

// NativeRuntime evaluates a serialized logistic model over grayscale image
// statistics. It is the portable fallback when no pluggable adapter is
// installed.
type NativeRuntime struct {
	coefficients []float64
	intercept    float64
}

// LoadNativeRuntime deserializes and validates the artifact at path.
func LoadNativeRuntime(path string) (*NativeRuntime, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var a nativeArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal cv artifact: %w", err)
	}
	if a.SchemaVersion != nativeSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", errNativeSchema, a.SchemaVersion, nativeSchemaVersion)
	}
	if len(a.FeatureNames) != len(nativeFeatureNames) || len(a.Coefficients) != len(nativeFeatureNames) {
		return nil, fmt.Errorf("%w: %d features, want %d", errNativeSchema, len(a.FeatureNames), len(nativeFeatureNames))
	}
	for i, name := range a.FeatureNames {
		if name != nativeFeatureNames[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", errNativeSchema, i, name, nativeFeatureNames[i])
		}
	}
	return &NativeRuntime{coefficients: a.Coefficients, intercept: a.Intercept}, nil
}

// Predict decodes the image and evaluates the model. Undecodable images
// degrade this request's visual signal to unknown.
func (n *NativeRuntime) Predict(_ context.Context, imageBytes []byte) Prediction {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return Prediction{Source: nativeSource, Note: "image could not be decoded"}
	}

	stats := imageStats(img)
	score := n.intercept
	for i, value := range stats {
		score += n.coefficients[i] * value
	}
	prob := clampProbability(1.0 / (1.0 + math.Exp(-score)))

	return Prediction{
		Probability: prob,
		Known:       true,
		Label:       labelFor(prob),
		Source:      nativeSource,
	}
}

// Source identifies the variant.
func (n *NativeRuntime) Source() string { return nativeSource }

// Available reports true; the artifact loaded at startup.
func (n *NativeRuntime) Available() bool { return true }

// imageStats computes the statistics in nativeFeatureNames order.
func imageStats(img image.Image) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return make([]float64, len(nativeFeatureNames))
	}

	var lumaSum float64
	var dark, transitions, comparisons int
	prevLuma := make([]float64, width)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := (0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)) / 255.0
			lumaSum += luma
			if luma < 0.5 {
				dark++
			}
			col := x - bounds.Min.X
			if col > 0 {
				comparisons++
				if math.Abs(luma-prevLuma[col-1]) > 0.3 {
					transitions++
				}
			}
			prevLuma[col] = luma
		}
	}

	pixels := float64(width * height)
	aspect := float64(width) / float64(height)
	if aspect > 1 {
		aspect = 1 / aspect
	}
	transitionDensity := 0.0
	if comparisons > 0 {
		transitionDensity = float64(transitions) / float64(comparisons)
	}

	return []float64{
		aspect,
		lumaSum / pixels,
		float64(dark) / pixels,
		transitionDensity,
	}
}
