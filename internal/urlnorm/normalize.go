package urlnorm

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL marks input that cannot be analyzed at all. Callers reject
// such requests before any signal collection.
var ErrInvalidURL = errors.New("invalid url")

var urlTokenRe = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)

const (
	leadingJunk  = "([{<\"'"
	trailingJunk = ".,;:!?)]}>\"'"
)

// Parts captures the canonical form of an accepted URL.
type Parts struct {
	Raw       string
	URL       string
	Scheme    string
	Host      string
	ASCIIHost string
	Path      string
	Query     string
	UserInfo  bool
}

// Normalize parses and canonicalizes the supplied string. QR payloads carry
// quoting junk, missing schemes and stray prefixes, so the input is cleaned
// before parsing. Only http and https URLs with a host are accepted.
func Normalize(raw string) (Parts, error) {
	value := extractCandidate(raw)
	if value == "" {
		return Parts{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	if strings.HasPrefix(value, "//") {
		value = "https:" + value
	} else if !strings.Contains(value, "://") {
		if scheme := bareScheme(value); scheme != "" && scheme != "http" && scheme != "https" {
			return Parts{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, scheme)
		}
		value = "https://" + value
	}

	u, err := url.Parse(value)
	if err != nil {
		return Parts{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Parts{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := strings.ToLower(strings.Trim(u.Hostname(), "."))
	if host == "" {
		return Parts{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	u.Scheme = scheme
	u.Fragment = ""

	return Parts{
		Raw:       raw,
		URL:       u.String(),
		Scheme:    scheme,
		Host:      host,
		ASCIIHost: asciiHost(host),
		Path:      u.Path,
		Query:     u.RawQuery,
		UserInfo:  u.User != nil,
	}, nil
}

// IsIPHost reports whether the host is an IP literal.
func (p Parts) IsIPHost() bool {
	return net.ParseIP(p.Host) != nil
}

// asciiHost converts internationalized labels to punycode. Hosts that are
// already ASCII (including xn-- labels) pass through unchanged, and a host
// the IDNA profile rejects falls back to its lowercase form rather than
// failing normalization.
func asciiHost(host string) string {
	converted, err := idna.Lookup.ToASCII(host)
	if err != nil || converted == "" {
		return host
	}
	return converted
}

var bareSchemeRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+-]*):`)

// bareScheme extracts a scheme from input like "mailto:user@host". Prefixes
// containing a dot are host:port forms, not schemes, and return "".
func bareScheme(value string) string {
	m := bareSchemeRe.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func extractCandidate(raw string) string {
	value := stripWrapping(raw)
	if value == "" {
		return ""
	}

	if match := urlTokenRe.FindString(value); match != "" {
		value = match
	}

	value = stripWrapping(value)
	value = strings.TrimLeft(value, leadingJunk)
	value = strings.TrimRight(value, trailingJunk)
	value = strings.TrimSpace(value)
	if len(value) >= 4 && strings.EqualFold(value[:4], "url:") {
		value = strings.TrimSpace(value[4:])
	}
	return value
}

var wrappingPairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"<", ">"},
	{"(", ")"},
	{"[", "]"},
	{"{", "}"},
}

func stripWrapping(value string) string {
	cleaned := strings.TrimSpace(value)
	for len(cleaned) >= 2 {
		unwrapped := false
		for _, pair := range wrappingPairs {
			if strings.HasPrefix(cleaned, pair[0]) && strings.HasSuffix(cleaned, pair[1]) {
				cleaned = strings.TrimSpace(cleaned[len(pair[0]) : len(cleaned)-len(pair[1])])
				unwrapped = true
				break
			}
		}
		if !unwrapped {
			break
		}
	}
	return cleaned
}
