package store

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"qr-phishing-detector/backend/internal/features"
)

// Database wraps the GORM handle for the lexicon dataset. The dataset is
// read once at startup; operators can extend it between runs without a
// rebuild.
type Database struct {
	gorm *gorm.DB
}

// Open initializes the SQLite-backed lexicon store at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Keyword{}, &BrandDomain{}, &ShortenerDomain{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedDefaults populates empty tables from the built-in lexicon. Existing
// rows are never overwritten, so operator additions survive restarts.
func (d *Database) SeedDefaults(lex features.Lexicon) error {
	var count int64
	if err := d.gorm.Model(&Keyword{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count keywords: %w", err)
	}
	if count == 0 {
		for _, word := range lex.Keywords {
			row := Keyword{Word: strings.ToLower(strings.TrimSpace(word))}
			if row.Word == "" {
				continue
			}
			if err := d.gorm.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("seed keyword %q: %w", row.Word, err)
			}
		}
	}

	if err := d.gorm.Model(&BrandDomain{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count brands: %w", err)
	}
	if count == 0 {
		for _, domain := range lex.Brands {
			row := BrandDomain{Domain: strings.ToLower(strings.TrimSpace(domain))}
			if row.Domain == "" {
				continue
			}
			if err := d.gorm.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("seed brand %q: %w", row.Domain, err)
			}
		}
	}

	if err := d.gorm.Model(&ShortenerDomain{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count shorteners: %w", err)
	}
	if count == 0 {
		for _, domain := range lex.Shorteners {
			row := ShortenerDomain{Domain: strings.ToLower(strings.TrimSpace(domain))}
			if row.Domain == "" {
				continue
			}
			if err := d.gorm.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("seed shortener %q: %w", row.Domain, err)
			}
		}
	}

	return nil
}

// LoadLexicon reads the full lexicon in deterministic order.
func (d *Database) LoadLexicon() (features.Lexicon, error) {
	var lex features.Lexicon

	var keywords []Keyword
	if err := d.gorm.Order("word ASC").Find(&keywords).Error; err != nil {
		return lex, fmt.Errorf("load keywords: %w", err)
	}
	for _, row := range keywords {
		lex.Keywords = append(lex.Keywords, row.Word)
	}

	var brands []BrandDomain
	if err := d.gorm.Order("domain ASC").Find(&brands).Error; err != nil {
		return lex, fmt.Errorf("load brands: %w", err)
	}
	for _, row := range brands {
		lex.Brands = append(lex.Brands, row.Domain)
	}

	var shorteners []ShortenerDomain
	if err := d.gorm.Order("domain ASC").Find(&shorteners).Error; err != nil {
		return lex, fmt.Errorf("load shorteners: %w", err)
	}
	for _, row := range shorteners {
		lex.Shorteners = append(lex.Shorteners, row.Domain)
	}

	logrus.WithFields(logrus.Fields{
		"keywords":   len(lex.Keywords),
		"brands":     len(lex.Brands),
		"shorteners": len(lex.Shorteners),
	}).Info("loaded lexicon dataset")

	return lex, nil
}
