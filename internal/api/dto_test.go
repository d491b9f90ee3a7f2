package api

import (
	"encoding/json"
	"testing"

	"qr-phishing-detector/backend/internal/analyzer"
)

func marshalToMap(t *testing.T, resp ScanResponse) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return payload
}

func TestScanResponseWireFieldNames(t *testing.T) {
	payload := marshalToMap(t, ScanFromResult(analyzer.Result{}))

	wireFields := []string{
		"scan_id",
		"input_url",
		"normalized_url",
		"domain",
		"extracted_from_qr",
		"risk_score",
		"url_score",
		"risk_level",
		"verdict_color",
		"reasons",
		"suspicious_keywords",
		"url_flags",
		"ml_phishing_probability",
		"ml_source",
		"domain_age_days",
		"ssl_valid",
		"cv_malicious_probability",
		"cv_prediction",
		"cv_model_source",
	}
	for _, field := range wireFields {
		if _, ok := payload[field]; !ok {
			t.Fatalf("field %q missing from payload, got keys %v", field, keysOf(payload))
		}
	}
}

func TestScanResponseUnknownSignalsAreNull(t *testing.T) {
	payload := marshalToMap(t, ScanFromResult(analyzer.Result{}))

	for _, field := range []string{
		"domain_age_days",
		"ssl_valid",
		"cv_malicious_probability",
		"cv_prediction",
		"cv_model_source",
	} {
		if string(payload[field]) != "null" {
			t.Fatalf("unknown %s must serialize as null, got %s", field, payload[field])
		}
	}
}

func TestScanResponseKnownCVFields(t *testing.T) {
	prob := 0.92
	resp := ScanFromResult(analyzer.Result{
		CVProbability: &prob,
		CVLabel:       "MALICIOUS",
		CVSource:      "native_runtime",
	})
	payload := marshalToMap(t, resp)

	if string(payload["cv_malicious_probability"]) != "0.92" {
		t.Fatalf("unexpected cv probability %s", payload["cv_malicious_probability"])
	}
	if string(payload["cv_prediction"]) != `"MALICIOUS"` {
		t.Fatalf("unexpected cv prediction %s", payload["cv_prediction"])
	}
	if string(payload["cv_model_source"]) != `"native_runtime"` {
		t.Fatalf("unexpected cv model source %s", payload["cv_model_source"])
	}
}

func keysOf(payload map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	return keys
}
