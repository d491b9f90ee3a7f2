package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"qr-phishing-detector/backend/internal/analyzer"
	"qr-phishing-detector/backend/internal/api"
	"qr-phishing-detector/backend/internal/cv"
	"qr-phishing-detector/backend/internal/features"
	"qr-phishing-detector/backend/internal/ml"
	"qr-phishing-detector/backend/internal/scoring"
	"qr-phishing-detector/backend/internal/store"
	"qr-phishing-detector/backend/internal/tlscheck"
	"qr-phishing-detector/backend/internal/whois"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "lexicon.db")
	if override := strings.TrimSpace(os.Getenv("LEXICON_DB_PATH")); override != "" {
		dbPath = override
	}

	db, err := store.Open(dbPath, true)
	if err != nil {
		logrus.Fatalf("open lexicon store: %v", err)
	}
	defer db.Close()

	if err := db.SeedDefaults(features.DefaultLexicon()); err != nil {
		logrus.Fatalf("seed lexicon store: %v", err)
	}
	lex, err := db.LoadLexicon()
	if err != nil {
		logrus.Fatalf("load lexicon: %v", err)
	}

	weights, err := scoring.LoadWeights(strings.TrimSpace(os.Getenv("WEIGHTS_PATH")))
	if err != nil {
		logrus.Fatalf("load weights: %v", err)
	}
	if err := weights.Validate(); err != nil {
		logrus.Fatalf("invalid weight table: %v", err)
	}

	whoisCfg := whois.Config{}
	if timeout := os.Getenv("WHOIS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			whoisCfg.Timeout = d
		}
	}
	if ttl := os.Getenv("WHOIS_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			whoisCfg.CacheTTL = d
		}
	}

	tlsCfg := tlscheck.Config{}
	if timeout := os.Getenv("TLS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			tlsCfg.Timeout = d
		}
	}

	cvCfg := cv.Config{
		AdapterPath: strings.TrimSpace(os.Getenv("CV_ADAPTER_PATH")),
		ModelPath:   strings.TrimSpace(os.Getenv("CV_MODEL_PATH")),
	}
	if timeout := os.Getenv("CV_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cvCfg.Timeout = d
		}
	}

	scanner := analyzer.New(
		features.NewExtractor(features.DefaultConfig(), lex),
		ml.Select(strings.TrimSpace(os.Getenv("ML_MODEL_PATH"))),
		cv.Select(cvCfg),
		whois.NewResolver(whoisCfg),
		tlscheck.NewValidator(tlsCfg),
		weights,
	)

	apiCfg := api.Config{
		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
	}
	if limit := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); limit != "" {
		if v, err := strconv.ParseInt(limit, 10, 64); err == nil && v > 0 {
			apiCfg.MaxUploadBytes = v
		}
	}

	router := api.NewServer(scanner, lex, apiCfg).Router()

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	logrus.Infof("starting qr-phishing-detector backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
