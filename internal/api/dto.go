package api

import (
	"qr-phishing-detector/backend/internal/analyzer"
)

// AnalyzeURLRequest is the JSON body for direct URL scans.
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// FrameRequest carries one camera frame as a base64 data URL. DecodedURL is
// optional: clients that already decoded the QR payload send it and the
// frame skips server-side decoding.
type FrameRequest struct {
	Frame      string `json:"frame" binding:"required"`
	DecodedURL string `json:"decoded_url"`
}

// ScanResponse is the wire form of one completed scan. Unknown signals are
// null, never zero, so clients can tell "not checked" from "checked and bad".
type ScanResponse struct {
	ScanID          string   `json:"scan_id"`
	InputURL        string   `json:"input_url"`
	NormalizedURL   string   `json:"normalized_url"`
	Domain          string   `json:"domain"`
	ExtractedFromQR bool     `json:"extracted_from_qr"`
	QRText          string   `json:"qr_text,omitempty"`
	RiskScore       int      `json:"risk_score"`
	URLScore        int      `json:"url_score"`
	RiskLevel       string   `json:"risk_level"`
	VerdictColor    string   `json:"verdict_color"`
	Reasons         []string `json:"reasons"`
	Keywords        []string `json:"suspicious_keywords"`
	Flags           []string `json:"url_flags"`
	MLProbability   float64  `json:"ml_phishing_probability"`
	MLSource        string   `json:"ml_source"`
	DomainAgeDays   *int     `json:"domain_age_days"`
	Unregistered    bool     `json:"unregistered,omitempty"`
	AgeNote         string   `json:"age_note,omitempty"`
	SSLValid        *bool    `json:"ssl_valid"`
	SSLNote         string   `json:"ssl_note,omitempty"`
	CVProbability   *float64 `json:"cv_malicious_probability"`
	CVPrediction    *string  `json:"cv_prediction"`
	CVModelSource   *string  `json:"cv_model_source"`
	CVNote          string   `json:"cv_note,omitempty"`
}

// ScanFromResult maps an analyzer result onto the wire form.
func ScanFromResult(r analyzer.Result) ScanResponse {
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	keywords := r.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	flags := r.Flags
	if flags == nil {
		flags = []string{}
	}

	resp := ScanResponse{
		ScanID:          r.ScanID,
		InputURL:        r.InputURL,
		NormalizedURL:   r.NormalizedURL,
		Domain:          r.Domain,
		ExtractedFromQR: r.ExtractedFromQR,
		QRText:          r.QRText,
		RiskScore:       r.Score,
		URLScore:        r.URLScore,
		RiskLevel:       r.Level,
		VerdictColor:    r.Color,
		Reasons:         reasons,
		Keywords:        keywords,
		Flags:           flags,
		MLProbability:   r.MLProbability,
		MLSource:        r.MLSource,
		DomainAgeDays:   r.DomainAgeDays,
		Unregistered:    r.Unregistered,
		AgeNote:         r.AgeNote,
		SSLValid:        r.SSLValid,
		SSLNote:         r.SSLNote,
		CVProbability:   r.CVProbability,
		CVNote:          r.CVNote,
	}
	if r.CVLabel != "" {
		label := r.CVLabel
		resp.CVPrediction = &label
	}
	if r.CVSource != "" {
		source := r.CVSource
		resp.CVModelSource = &source
	}
	return resp
}

// ConfigResponse describes the runtime configuration clients may adapt to.
type ConfigResponse struct {
	MLSource   string `json:"ml_source"`
	CVEnabled  bool   `json:"cv_enabled"`
	CVSource   string `json:"cv_source,omitempty"`
	Keywords   int    `json:"keywords"`
	Brands     int    `json:"brands"`
	Shorteners int    `json:"shorteners"`
}
