package analyzer

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"qr-phishing-detector/backend/internal/cv"
	"qr-phishing-detector/backend/internal/features"
	"qr-phishing-detector/backend/internal/ml"
	"qr-phishing-detector/backend/internal/qr"
	"qr-phishing-detector/backend/internal/scoring"
	"qr-phishing-detector/backend/internal/tlscheck"
	"qr-phishing-detector/backend/internal/urlnorm"
	"qr-phishing-detector/backend/internal/whois"
)

// AgeResolver resolves a domain registration age.
type AgeResolver interface {
	Resolve(ctx context.Context, host string) whois.AgeResult
}

// CertValidator checks the TLS certificate presented by a host.
type CertValidator interface {
	Validate(ctx context.Context, host string) tlscheck.CertResult
}

// Analyzer orchestrates one scan: normalize, extract, collect the network
// signals concurrently, then fuse. It is safe for concurrent use.
type Analyzer struct {
	extractor *features.Extractor
	model     ml.Provider
	visual    cv.Provider
	ages      AgeResolver
	certs     CertValidator
	weights   scoring.Weights
}

// New wires an analyzer from its collaborators.
func New(extractor *features.Extractor, model ml.Provider, visual cv.Provider, ages AgeResolver, certs CertValidator, weights scoring.Weights) *Analyzer {
	return &Analyzer{
		extractor: extractor,
		model:     model,
		visual:    visual,
		ages:      ages,
		certs:     certs,
		weights:   weights,
	}
}

// Result is the complete outcome of one scan.
type Result struct {
	ScanID          string
	InputURL        string
	NormalizedURL   string
	Domain          string
	ExtractedFromQR bool
	QRText          string

	Score    int
	URLScore int
	Level    string
	Color    string
	Reasons  []string

	Keywords []string
	Flags    []string
	Features features.FeatureSet

	MLProbability float64
	MLSource      string

	DomainAgeDays *int
	Unregistered  bool
	AgeNote       string

	SSLValid *bool
	SSLNote  string

	CVProbability *float64
	CVLabel       string
	CVSource      string
	CVNote        string
}

// CVEnabled reports whether a visual model was loaded at startup.
func (a *Analyzer) CVEnabled() bool {
	return a.visual.Available()
}

// CVSource names the loaded visual model variant, or "" when none is loaded.
func (a *Analyzer) CVSource() string {
	return a.visual.Source()
}

// MLSource names the active phishing probability provider.
func (a *Analyzer) MLSource() string {
	return a.model.Source()
}

// AnalyzeURL scores a raw URL string. The only error it returns is
// urlnorm.ErrInvalidURL; every degraded signal is folded into the result.
func (a *Analyzer) AnalyzeURL(ctx context.Context, raw string) (Result, error) {
	parts, err := urlnorm.Normalize(raw)
	if err != nil {
		return Result{}, err
	}
	return a.analyze(ctx, parts, nil, ""), nil
}

// AnalyzeImage decodes a QR code from raw image bytes and scores the URL it
// carries. Decode failures return qr.ErrBadImage or qr.ErrNoQR; a payload
// that is not an acceptable URL returns urlnorm.ErrInvalidURL.
func (a *Analyzer) AnalyzeImage(ctx context.Context, imageBytes []byte) (Result, error) {
	text, err := qr.Decode(imageBytes)
	if err != nil {
		return Result{}, err
	}
	parts, err := urlnorm.Normalize(text)
	if err != nil {
		return Result{}, err
	}
	return a.analyze(ctx, parts, imageBytes, text), nil
}

// AnalyzeFrame scores a camera frame. A non-empty decodedURL means the
// client already decoded the QR payload; server-side decoding is skipped
// and the image feeds only the visual model. Without it the frame goes
// through AnalyzeImage.
func (a *Analyzer) AnalyzeFrame(ctx context.Context, imageBytes []byte, decodedURL string) (Result, error) {
	if decodedURL == "" {
		return a.AnalyzeImage(ctx, imageBytes)
	}
	parts, err := urlnorm.Normalize(decodedURL)
	if err != nil {
		return Result{}, err
	}
	return a.analyze(ctx, parts, imageBytes, decodedURL), nil
}

func (a *Analyzer) analyze(ctx context.Context, parts urlnorm.Parts, imageBytes []byte, qrText string) Result {
	fs, keywords, flags := a.extractor.Extract(parts)
	prob := round4(clamp01(a.model.Probability(fs)))

	var (
		age  whois.AgeResult
		cert tlscheck.CertResult
		pred cv.Prediction
	)

	// WHOIS, TLS and the visual model are independent network signals, so
	// they run concurrently. Each collaborator owns its timeout and maps
	// failure to a degraded result rather than an error.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		age = a.ages.Resolve(gctx, parts.ASCIIHost)
		return nil
	})
	g.Go(func() error {
		if parts.Scheme != "https" {
			cert = tlscheck.CertResult{State: tlscheck.Unknown, Note: "certificate not checked for non-https url"}
			return nil
		}
		cert = a.certs.Validate(gctx, parts.ASCIIHost)
		return nil
	})
	if imageBytes != nil {
		g.Go(func() error {
			pred = a.visual.Predict(gctx, imageBytes)
			return nil
		})
	}
	_ = g.Wait()

	in := scoring.Inputs{
		AgeDays:       age.Days,
		AgeKnown:      age.Known,
		Unregistered:  age.Unregistered,
		SSL:           sslState(cert.State),
		Keywords:      keywords,
		Flags:         flags,
		MLProbability: prob,
		MLKnown:       true,
		CVAttempted:   imageBytes != nil,
		CVKnown:       pred.Known,
		CVProbability: pred.Probability,
		CVNote:        pred.Note,
	}
	fused := scoring.Fuse(in, a.weights)

	result := Result{
		ScanID:          uuid.NewString(),
		InputURL:        parts.Raw,
		NormalizedURL:   parts.URL,
		Domain:          parts.ASCIIHost,
		ExtractedFromQR: imageBytes != nil,
		QRText:          qrText,
		Score:           fused.Score,
		URLScore:        fused.URLScore,
		Level:           fused.Level,
		Color:           fused.Color,
		Reasons:         fused.Reasons,
		Keywords:        keywords,
		Flags:           flags,
		Features:        fs,
		MLProbability:   prob,
		MLSource:        a.model.Source(),
		Unregistered:    age.Unregistered,
		AgeNote:         age.Note,
		SSLNote:         cert.Note,
	}
	if age.Known {
		days := age.Days
		result.DomainAgeDays = &days
	}
	if cert.State != tlscheck.Unknown {
		valid := cert.State == tlscheck.Valid
		result.SSLValid = &valid
	}
	if pred.Known {
		p := round4(pred.Probability)
		result.CVProbability = &p
		result.CVLabel = pred.Label
		result.CVSource = pred.Source
	}
	result.CVNote = pred.Note

	logrus.WithFields(logrus.Fields{
		"scan_id": result.ScanID,
		"domain":  result.Domain,
		"score":   result.Score,
		"level":   result.Level,
	}).Info("scan completed")

	return result
}

func sslState(s tlscheck.State) scoring.SSLState {
	switch s {
	case tlscheck.Valid:
		return scoring.SSLValid
	case tlscheck.Invalid:
		return scoring.SSLInvalid
	default:
		return scoring.SSLUnknown
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
