package whois

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/sirupsen/logrus"
)

// Config drives resolver behaviour.
type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// AgeResult is the tagged outcome of a domain age lookup. Known=false means
// the age could not be determined; that is a degraded signal, never a
// request failure.
type AgeResult struct {
	Days         int
	Known        bool
	Unregistered bool
	Note         string
}

// Resolver performs WHOIS lookups with a hard timeout and a short-lived
// cache. Lookups for the same host within the TTL reuse the cached result.
type Resolver struct {
	client   *whois.Client
	cacheTTL time.Duration
	cache    sync.Map // map[string]cacheEntry
	now      func() time.Time
}

type cacheEntry struct {
	at     time.Time
	result AgeResult
}

// NewResolver constructs a resolver with defaulted configuration.
func NewResolver(cfg Config) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	client := whois.NewClient()
	client.SetTimeout(timeout)

	return &Resolver{
		client:   client,
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// Resolve returns the domain age in days for the supplied host. Timeouts,
// parse failures and privacy-redacted records all resolve to an unknown
// result; there are no retries within a request.
func (r *Resolver) Resolve(ctx context.Context, host string) AgeResult {
	key := strings.ToLower(strings.TrimSpace(host))
	if key == "" {
		return AgeResult{Note: "domain missing"}
	}

	if entry, ok := r.cache.Load(key); ok {
		cached := entry.(cacheEntry)
		if r.now().Sub(cached.at) < r.cacheTTL {
			return cached.result
		}
		r.cache.Delete(key)
	}

	result := r.lookup(ctx, key)
	r.cache.Store(key, cacheEntry{at: r.now(), result: result})
	return result
}

func (r *Resolver) lookup(ctx context.Context, host string) AgeResult {
	type lookupOut struct {
		raw string
		err error
	}

	// The whois client enforces its own dial timeout; the goroutine lets an
	// aborted request abandon the lookup without waiting it out.
	ch := make(chan lookupOut, 1)
	go func() {
		raw, err := r.client.Whois(host)
		ch <- lookupOut{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return AgeResult{Note: "whois lookup aborted"}
	case out := <-ch:
		if out.err != nil {
			logrus.WithError(out.err).WithField("host", host).Debug("whois lookup failed")
			return AgeResult{Note: firstLine(out.err.Error())}
		}
		return ageFromRecord(out.raw, r.now())
	}
}

// ageFromRecord extracts the registration age from a raw WHOIS response.
func ageFromRecord(raw string, now time.Time) AgeResult {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		if err == whoisparser.ErrNotFoundDomain {
			return AgeResult{Unregistered: true, Note: "whois indicates the domain is not registered"}
		}
		return AgeResult{Note: firstLine(err.Error())}
	}
	if info.Domain == nil {
		return AgeResult{Note: "creation date not available from whois"}
	}

	created := info.Domain.CreatedDateInTime
	if created == nil {
		if parsed, ok := parseCreatedDate(info.Domain.CreatedDate); ok {
			created = &parsed
		}
	}
	if created == nil {
		return AgeResult{Note: "creation date not available from whois"}
	}

	days := int(now.UTC().Sub(created.UTC()).Hours() / 24)
	if days < 0 {
		return AgeResult{Note: "invalid whois creation date"}
	}
	return AgeResult{Days: days, Known: true}
}

var createdDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

func parseCreatedDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range createdDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstLine(text string) string {
	text = strings.ReplaceAll(text, "\r", "\n")
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if len(trimmed) > 180 {
				return trimmed[:177] + "..."
			}
			return trimmed
		}
	}
	return "whois lookup failed"
}
