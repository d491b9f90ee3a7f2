package features

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/net/publicsuffix"

	"qr-phishing-detector/backend/internal/urlnorm"
)

// Config holds the extraction thresholds. Zero values are replaced with
// defaults by NewExtractor.
type Config struct {
	SubdomainDepth     int     // deep_subdomains above this many subdomain labels
	MaxURLLength       int     // long_url above this many characters
	MaxQueryLength     int     // long_query above this many characters
	MaxHostHyphens     int     // many_hyphens at this many hyphens in the host
	PercentEncodingMax float64 // high_percent_encoding above this density
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SubdomainDepth:     3,
		MaxURLLength:       75,
		MaxQueryLength:     80,
		MaxHostHyphens:     3,
		PercentEncodingMax: 0.08,
	}
}

// Extractor derives lexical features from normalized URLs. It is pure and
// performs no network access; construction precomputes the lookup tables so
// per-request extraction stays cheap.
type Extractor struct {
	cfg        Config
	keywords   []string
	shorteners map[string]struct{}
	brandSLDs  []string
}

// NewExtractor builds an extractor over the supplied lexicon.
func NewExtractor(cfg Config, lex Lexicon) *Extractor {
	if cfg.SubdomainDepth <= 0 {
		cfg.SubdomainDepth = 3
	}
	if cfg.MaxURLLength <= 0 {
		cfg.MaxURLLength = 75
	}
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = 80
	}
	if cfg.MaxHostHyphens <= 0 {
		cfg.MaxHostHyphens = 3
	}
	if cfg.PercentEncodingMax <= 0 {
		cfg.PercentEncodingMax = 0.08
	}

	keywords := make([]string, 0, len(lex.Keywords))
	for _, kw := range lex.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	sort.Strings(keywords)

	shorteners := make(map[string]struct{}, len(lex.Shorteners))
	for _, s := range lex.Shorteners {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			shorteners[s] = struct{}{}
		}
	}

	brandSLDs := make([]string, 0, len(lex.Brands))
	for _, b := range lex.Brands {
		if sld := secondLevelLabel(strings.ToLower(strings.TrimSpace(b))); sld != "" {
			brandSLDs = append(brandSLDs, sld)
		}
	}
	sort.Strings(brandSLDs)

	return &Extractor{
		cfg:        cfg,
		keywords:   keywords,
		shorteners: shorteners,
		brandSLDs:  brandSLDs,
	}
}

// Extract computes the feature vector, matched keywords and pattern flags for
// a normalized URL.
func (e *Extractor) Extract(p urlnorm.Parts) (FeatureSet, []string, []string) {
	urlLower := strings.ToLower(p.URL)
	hostPath := p.Host + strings.ToLower(p.Path)

	var keywords []string
	for _, kw := range e.keywords {
		if strings.Contains(hostPath, kw) {
			keywords = append(keywords, kw)
		}
	}

	isIP := p.IsIPHost()
	hasAt := p.UserInfo
	hasPunycode := hostHasPunycode(p.ASCIIHost)
	_, isShortener := e.shorteners[p.Host]
	subdomains := subdomainCount(p.ASCIIHost, isIP)
	encDensity := percentEncodingDensity(p.URL)
	brandSim, typosquat := e.brandSimilarity(p.ASCIIHost, isIP)

	fs := FeatureSet{
		URLLength:              float64(len(p.URL)),
		NumDots:                float64(strings.Count(urlLower, ".")),
		NumHyphens:             float64(strings.Count(urlLower, "-")),
		NumDigits:              float64(countFunc(p.URL, unicode.IsDigit)),
		NumSpecialChars:        float64(countFunc(p.URL, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })),
		HasIP:                  boolFeature(isIP),
		HasAtSymbol:            boolFeature(hasAt),
		IsHTTPS:                boolFeature(p.Scheme == "https"),
		SubdomainCount:         float64(subdomains),
		PathLength:             float64(len(p.Path)),
		QueryLength:            float64(len(p.Query)),
		HasPunycode:            boolFeature(hasPunycode),
		HasShortener:           boolFeature(isShortener),
		KeywordHits:            float64(len(keywords)),
		PercentEncodingDensity: encDensity,
		BrandSimilarity:        brandSim,
	}

	var flags []string
	if isIP {
		flags = append(flags, "ip_host")
	}
	if hasAt {
		flags = append(flags, "at_symbol")
	}
	if hasPunycode {
		flags = append(flags, "punycode_host")
	}
	if mixedScriptHost(p.Host) {
		flags = append(flags, "homograph_risk")
	}
	if subdomains > e.cfg.SubdomainDepth {
		flags = append(flags, "deep_subdomains")
	}
	if len(p.URL) > e.cfg.MaxURLLength {
		flags = append(flags, "long_url")
	}
	if encDensity > e.cfg.PercentEncodingMax {
		flags = append(flags, "high_percent_encoding")
	}
	if isShortener {
		flags = append(flags, "url_shortener")
	}
	if strings.Count(p.Host, "-") >= e.cfg.MaxHostHyphens {
		flags = append(flags, "many_hyphens")
	}
	if p.Scheme != "https" {
		flags = append(flags, "non_https_scheme")
	}
	if len(p.Query) > e.cfg.MaxQueryLength {
		flags = append(flags, "long_query")
	}
	if typosquat {
		flags = append(flags, "typosquat_suspected")
	}

	return fs, keywords, flags
}

// brandSimilarity compares the host's second-level label against the brand
// list. An exact brand match is the brand itself and scores zero; only a
// near miss (edit distance 1 or 2) is a typosquat signal.
func (e *Extractor) brandSimilarity(asciiHost string, isIP bool) (float64, bool) {
	if isIP || len(e.brandSLDs) == 0 {
		return 0, false
	}
	sld := registrableLabel(asciiHost)
	if sld == "" {
		return 0, false
	}

	best := -1
	for _, brand := range e.brandSLDs {
		d := levenshtein.Distance(sld, brand, nil)
		if d == 0 {
			return 0, false
		}
		if best < 0 || d < best {
			best = d
		}
	}

	switch best {
	case 1:
		return 1.0, true
	case 2:
		return 0.5, true
	default:
		return 0, false
	}
}

func registrableLabel(host string) string {
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return secondLevelLabel(registrable)
	}
	return secondLevelLabel(host)
}

func secondLevelLabel(host string) string {
	host = strings.Trim(host, ".")
	if host == "" {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[len(parts)-2]
}

// subdomainCount counts the labels in front of the registrable domain, so
// multi-label public suffixes like co.uk are not mistaken for subdomains.
func subdomainCount(host string, isIP bool) int {
	if isIP || host == "" {
		return 0
	}
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		extra := strings.Count(host, ".") - strings.Count(registrable, ".")
		if extra < 0 {
			return 0
		}
		return extra
	}
	labels := strings.Count(host, ".") + 1
	if labels <= 2 {
		return 0
	}
	return labels - 2
}

func hostHasPunycode(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

// mixedScriptHost reports hosts mixing Latin letters with another letter
// script, the cheap homograph heuristic.
func mixedScriptHost(host string) bool {
	var latin, other bool
	for _, r := range host {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.Is(unicode.Latin, r) {
			latin = true
		} else {
			other = true
		}
	}
	return latin && other
}

func percentEncodingDensity(url string) float64 {
	if url == "" {
		return 0
	}
	return float64(strings.Count(url, "%")) / float64(len(url))
}

func countFunc(s string, match func(rune) bool) int {
	n := 0
	for _, r := range s {
		if match(r) {
			n++
		}
	}
	return n
}

func boolFeature(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
