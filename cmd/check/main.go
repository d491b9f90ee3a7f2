package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"qr-phishing-detector/backend/internal/analyzer"
	"qr-phishing-detector/backend/internal/api"
	"qr-phishing-detector/backend/internal/cv"
	"qr-phishing-detector/backend/internal/features"
	"qr-phishing-detector/backend/internal/ml"
	"qr-phishing-detector/backend/internal/scoring"
	"qr-phishing-detector/backend/internal/tlscheck"
	"qr-phishing-detector/backend/internal/whois"
)

// check scores a single URL or QR image from the command line and prints the
// scan result as JSON. It uses the built-in lexicon and skips the dataset
// store entirely.
func main() {
	imagePath := flag.String("image", "", "path to a QR image to decode and score")
	modelPath := flag.String("model", "", "path to a trained phishing model artifact")
	weightsPath := flag.String("weights", "", "path to a weight table override")
	timeout := flag.Duration("timeout", 15*time.Second, "overall scan timeout")
	flag.Parse()

	logrus.SetLevel(logrus.WarnLevel)

	url := strings.TrimSpace(flag.Arg(0))
	if url == "" && *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: check [flags] <url>")
		fmt.Fprintln(os.Stderr, "       check [flags] -image <path>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	weights, err := scoring.LoadWeights(*weightsPath)
	if err != nil {
		logrus.Fatalf("load weights: %v", err)
	}
	if err := weights.Validate(); err != nil {
		logrus.Fatalf("invalid weight table: %v", err)
	}

	lex := features.DefaultLexicon()
	scanner := analyzer.New(
		features.NewExtractor(features.DefaultConfig(), lex),
		ml.Select(*modelPath),
		cv.Unavailable{},
		whois.NewResolver(whois.Config{}),
		tlscheck.NewValidator(tlscheck.Config{}),
		weights,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var result analyzer.Result
	if *imagePath != "" {
		imageBytes, err := os.ReadFile(*imagePath)
		if err != nil {
			logrus.Fatalf("read image: %v", err)
		}
		result, err = scanner.AnalyzeImage(ctx, imageBytes)
		if err != nil {
			logrus.Fatalf("analyze image: %v", err)
		}
	} else {
		result, err = scanner.AnalyzeURL(ctx, url)
		if err != nil {
			logrus.Fatalf("analyze url: %v", err)
		}
	}

	encoded, err := json.MarshalIndent(api.ScanFromResult(result), "", "  ")
	if err != nil {
		logrus.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(encoded))
}
