package store

import (
	"path/filepath"
	"testing"

	"qr-phishing-detector/backend/internal/features"
)

func TestSeedAndLoadLexicon(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "lexicon.db"), true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	seed := features.DefaultLexicon()
	if err := db.SeedDefaults(seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lex, err := db.LoadLexicon()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lex.Keywords) != len(seed.Keywords) {
		t.Fatalf("expected %d keywords got %d", len(seed.Keywords), len(lex.Keywords))
	}
	if len(lex.Brands) != len(seed.Brands) {
		t.Fatalf("expected %d brands got %d", len(seed.Brands), len(lex.Brands))
	}
	if len(lex.Shorteners) != len(seed.Shorteners) {
		t.Fatalf("expected %d shorteners got %d", len(seed.Shorteners), len(lex.Shorteners))
	}

	// Seeding again must not duplicate rows.
	if err := db.SeedDefaults(seed); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, err := db.LoadLexicon()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Keywords) != len(lex.Keywords) {
		t.Fatalf("reseed duplicated keywords: %d vs %d", len(again.Keywords), len(lex.Keywords))
	}
}
