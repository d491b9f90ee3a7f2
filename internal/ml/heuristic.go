package ml

import (
	"math"

	"qr-phishing-detector/backend/internal/features"
)

// Heuristic is the rule-based fallback provider: a fixed-weight logistic
// over the feature vector. Probabilities grow monotonically with every
// risk-increasing feature and stay continuous, so a clean short HTTPS URL
// lands near zero and a flag-saturated one near one.
type Heuristic struct{}

// Heuristic logistic weights. Calibrated against labelled URL corpora
// offline; the intercept keeps unremarkable URLs well below 0.5.
const (
	hIntercept       = -3.0
	hURLLength       = 0.020
	hNumDots         = 0.280
	hNumHyphens      = 0.180
	hHasAtSymbol     = 0.550
	hHasIP           = 1.100
	hSubdomainCount  = 0.120
	hKeywordHits     = 0.065
	hHasShortener    = 0.500
	hHasPunycode     = 0.300
	hIsHTTPS         = -0.200
	hPercentEncoding = 0.400
	hBrandSimilarity = 0.600
)

// Probability computes the calibrated heuristic probability in [0,1].
func (Heuristic) Probability(fs features.FeatureSet) float64 {
	score := hIntercept
	score += hURLLength * fs.URLLength
	score += hNumDots * fs.NumDots
	score += hNumHyphens * fs.NumHyphens
	score += hHasAtSymbol * fs.HasAtSymbol
	score += hHasIP * fs.HasIP
	score += hSubdomainCount * fs.SubdomainCount
	score += hKeywordHits * fs.KeywordHits
	score += hHasShortener * fs.HasShortener
	score += hHasPunycode * fs.HasPunycode
	score += hIsHTTPS * fs.IsHTTPS
	score += hPercentEncoding * fs.PercentEncodingDensity
	score += hBrandSimilarity * fs.BrandSimilarity
	return clampProbability(sigmoid(score))
}

// Source identifies the provider variant.
func (Heuristic) Source() string {
	return "heuristic"
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
