package store

import "time"

// Keyword is one suspicious term matched against host+path.
type Keyword struct {
	ID        uint   `gorm:"primaryKey"`
	Word      string `gorm:"size:64;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BrandDomain is one well-known brand domain used for typosquat detection.
type BrandDomain struct {
	ID        uint   `gorm:"primaryKey"`
	Domain    string `gorm:"size:255;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShortenerDomain is one known URL-shortener host.
type ShortenerDomain struct {
	ID        uint   `gorm:"primaryKey"`
	Domain    string `gorm:"size:255;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
