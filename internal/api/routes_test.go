package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"qr-phishing-detector/backend/internal/analyzer"
	"qr-phishing-detector/backend/internal/cv"
	"qr-phishing-detector/backend/internal/features"
	"qr-phishing-detector/backend/internal/ml"
	"qr-phishing-detector/backend/internal/scoring"
	"qr-phishing-detector/backend/internal/tlscheck"
	"qr-phishing-detector/backend/internal/whois"
)

type stubAges struct {
	result whois.AgeResult
}

func (s stubAges) Resolve(context.Context, string) whois.AgeResult { return s.result }

type stubCerts struct {
	result tlscheck.CertResult
}

func (s stubCerts) Validate(context.Context, string) tlscheck.CertResult { return s.result }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lex := features.DefaultLexicon()
	a := analyzer.New(
		features.NewExtractor(features.DefaultConfig(), lex),
		ml.Heuristic{},
		cv.Unavailable{},
		stubAges{result: whois.AgeResult{Days: 6000, Known: true}},
		stubCerts{result: tlscheck.CertResult{State: tlscheck.Valid}},
		scoring.DefaultWeights(),
	)
	return NewServer(a, lex, Config{}).Router()
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestConfigEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ConfigResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MLSource != "heuristic" {
		t.Fatalf("unexpected ml source %q", resp.MLSource)
	}
	if resp.CVEnabled {
		t.Fatal("no cv model is configured in tests")
	}
	if resp.Keywords == 0 || resp.Brands == 0 || resp.Shorteners == 0 {
		t.Fatalf("lexicon counts missing: %+v", resp)
	}
}

func TestAnalyzeURLEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := bytes.NewBufferString(`{"url": "https://example.com/login"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-url", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ScanID == "" {
		t.Fatal("scan_id missing")
	}
	if resp.NormalizedURL != "https://example.com/login" {
		t.Fatalf("unexpected normalized url %q", resp.NormalizedURL)
	}
	if resp.RiskLevel == "" || resp.VerdictColor == "" {
		t.Fatalf("verdict missing: %+v", resp)
	}
	if len(resp.Reasons) == 0 {
		t.Fatal("reasons missing")
	}
	if resp.ExtractedFromQR {
		t.Fatal("direct url scans are not qr extractions")
	}
	if resp.DomainAgeDays == nil || *resp.DomainAgeDays != 6000 {
		t.Fatalf("expected age 6000, got %v", resp.DomainAgeDays)
	}
	if resp.SSLValid == nil || !*resp.SSLValid {
		t.Fatal("expected valid ssl")
	}
	if resp.CVProbability != nil {
		t.Fatal("url scans carry no cv prediction")
	}
}

func TestAnalyzeURLRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing url", `{}`, http.StatusBadRequest},
		{"not json", `nope`, http.StatusBadRequest},
		{"unsupported scheme", `{"url": "mailto:someone@example.com"}`, http.StatusBadRequest},
		{"empty url", `{"url": "   "}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/analyze-url", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "error") {
				t.Fatalf("error body missing: %s", w.Body.String())
			}
		})
	}
}

func TestAnalyzeQRRequiresFile(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-qr", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeFrameWithDecodedURL(t *testing.T) {
	router := newTestRouter(t)

	// The frame itself holds no QR code; the pre-decoded payload drives
	// the scan.
	frame := base64.StdEncoding.EncodeToString([]byte("blurry frame"))
	body := strings.NewReader(`{"frame": "` + frame + `", "decoded_url": "https://example.com/verify"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-frame", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.ExtractedFromQR {
		t.Fatal("frame scans are qr extractions")
	}
	if resp.QRText != "https://example.com/verify" {
		t.Fatalf("unexpected qr text %q", resp.QRText)
	}
	if resp.NormalizedURL != "https://example.com/verify" {
		t.Fatalf("unexpected normalized url %q", resp.NormalizedURL)
	}
}

func TestAnalyzeFrameRejectsBadBase64(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"frame": "!!not-base64!!"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-frame", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDecodeFrameDataURL(t *testing.T) {
	decoded, err := decodeFrame("data:image/png;base64,aGVsbG8=", 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("unexpected payload %q", decoded)
	}

	if _, err := decodeFrame("data:image/png;base64,"+strings.Repeat("AAAA", 1024), 16); err == nil {
		t.Fatal("oversized frame must be rejected")
	}
}
