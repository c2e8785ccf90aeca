// Package geo resolves a request's client and target geography, preferring
// a host-supplied resolver (e.g. a GeoIP database or DNS-based lookup) and
// falling back to a TLD-suffix guess when external lookups are disabled by
// privacy configuration or the resolver is unset.
package geo

import (
	"context"
	"strings"
	"time"

	"github.com/adaptive/scheduler/internal/cache"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/core/ports"
)

// fallbackTTL bounds how long a TLD-guessed geo tag is trusted, shorter than
// an externally-confirmed lookup since it's a much weaker signal.
const fallbackTTL = time.Hour

// cacheCapacity is generous: one entry per distinct host/IP a proxy has
// actually seen, which rarely exceeds a few thousand in a single process.
const cacheCapacity = 4096

// tldCountry maps a handful of common country-code TLDs to a country code.
// This is deliberately small: it's a degraded fallback, not a geo database.
var tldCountry = map[string]string{
	"uk": "GB", "de": "DE", "fr": "FR", "jp": "JP", "au": "AU",
	"ca": "CA", "nl": "NL", "se": "SE", "sg": "SG", "br": "BR",
	"in": "IN", "it": "IT", "es": "ES", "ch": "CH", "nz": "NZ",
}

// Resolver resolves geography for hosts and IPs, delegating to an injected
// ports.GeoResolver when external lookups are permitted and falling back to
// a TLD suffix guess otherwise. Both lookup kinds are cached by key (host or
// IPv4 string) so a dispatch on the hot path never blocks on the network
// once an answer has been seen: externally-confirmed tags live for ttl,
// TLD-guessed fallback tags for the much shorter fallbackTTL since they're a
// far weaker signal.
type Resolver struct {
	external        ports.GeoResolver // nil disables external lookups entirely
	externalAllowed bool
	confirmed       *cache.Cache[*domain.GeoTag]
	fallback        *cache.Cache[*domain.GeoTag]
}

func New(external ports.GeoResolver, externalAllowed bool, ttl time.Duration) *Resolver {
	return &Resolver{
		external:        external,
		externalAllowed: externalAllowed,
		confirmed:       cache.New[*domain.GeoTag](cacheCapacity, ttl),
		fallback:        cache.New[*domain.GeoTag](cacheCapacity, fallbackTTL),
	}
}

// ResolveHost returns a GeoTag for the given hostname. A confirmed result
// from the external resolver is checked first; failing that, a TLD fallback
// is consulted before the external resolver is retried, so a resolver
// that's down doesn't get hit on every single request for the same host.
func (r *Resolver) ResolveHost(ctx context.Context, host string) *domain.GeoTag {
	if tag, ok := r.confirmed.Get(host); ok {
		return tag
	}
	if tag, ok := r.fallback.Get(host); ok {
		return tag
	}
	if r.externalAllowed && r.external != nil {
		if country, region, err := r.external.ResolveHost(ctx, host); err == nil && country != "" {
			tag := &domain.GeoTag{Country: country, Region: region}
			r.confirmed.Set(host, tag)
			return tag
		}
	}
	tag := fallbackFromHost(host)
	r.fallback.Set(host, tag)
	return tag
}

// ResolveIP returns a GeoTag for the given IP address. With external lookups
// disabled there is no IP-only fallback (a bare IP carries no TLD), so an
// empty tag is returned — the Dispatcher treats a nil/empty tag as
// "unknown region" and skips region-preference biasing.
func (r *Resolver) ResolveIP(ctx context.Context, ip string) *domain.GeoTag {
	if tag, ok := r.confirmed.Get(ip); ok {
		return tag
	}
	if r.externalAllowed && r.external != nil {
		if country, region, err := r.external.ResolveIP(ctx, ip); err == nil && country != "" {
			tag := &domain.GeoTag{Country: country, Region: region}
			r.confirmed.Set(ip, tag)
			return tag
		}
	}
	return nil
}

func fallbackFromHost(host string) *domain.GeoTag {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	idx := strings.LastIndex(host, ".")
	if idx < 0 || idx == len(host)-1 {
		return nil
	}
	suffix := host[idx+1:]
	if country, ok := tldCountry[suffix]; ok {
		return &domain.GeoTag{Country: country}
	}
	return nil
}
