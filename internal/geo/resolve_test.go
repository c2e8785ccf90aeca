package geo

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeResolver struct {
	country, region string
	err             error
}

func (f fakeResolver) ResolveHost(ctx context.Context, host string) (string, string, error) {
	return f.country, f.region, f.err
}

func (f fakeResolver) ResolveIP(ctx context.Context, ip string) (string, string, error) {
	return f.country, f.region, f.err
}

func TestResolveHostPrefersExternalWhenAllowed(t *testing.T) {
	r := New(fakeResolver{country: "US", region: "CA"}, true, 24*time.Hour)

	tag := r.ResolveHost(context.Background(), "example.co.uk")
	if tag == nil || tag.Country != "US" || tag.Region != "CA" {
		t.Fatalf("expected external result, got %+v", tag)
	}
}

func TestResolveHostFallsBackOnTLDWhenExternalDisabled(t *testing.T) {
	r := New(fakeResolver{country: "US"}, false, 24*time.Hour)

	tag := r.ResolveHost(context.Background(), "example.co.uk")
	if tag == nil || tag.Country != "GB" {
		t.Fatalf("expected TLD fallback to GB, got %+v", tag)
	}
}

func TestResolveHostFallsBackOnExternalError(t *testing.T) {
	r := New(fakeResolver{err: errors.New("lookup failed")}, true, 24*time.Hour)

	tag := r.ResolveHost(context.Background(), "example.de")
	if tag == nil || tag.Country != "DE" {
		t.Fatalf("expected TLD fallback to DE after external error, got %+v", tag)
	}
}

func TestResolveHostUnknownTLDReturnsNil(t *testing.T) {
	r := New(nil, false, 24*time.Hour)

	tag := r.ResolveHost(context.Background(), "example.zzz")
	if tag != nil {
		t.Fatalf("expected nil for unrecognised TLD, got %+v", tag)
	}
}

func TestResolveIPWithNoExternalReturnsNil(t *testing.T) {
	r := New(nil, false, 24*time.Hour)

	tag := r.ResolveIP(context.Background(), "203.0.113.5")
	if tag != nil {
		t.Fatalf("expected nil geo for a bare IP with no external resolver, got %+v", tag)
	}
}

func TestResolveIPUsesExternalWhenAllowed(t *testing.T) {
	r := New(fakeResolver{country: "JP", region: "Tokyo"}, true, 24*time.Hour)

	tag := r.ResolveIP(context.Background(), "203.0.113.5")
	if tag == nil || tag.Country != "JP" {
		t.Fatalf("expected external IP result, got %+v", tag)
	}
}

// countingResolver counts ResolveHost calls so a test can assert a cached
// lookup skips the external resolver entirely.
type countingResolver struct {
	fakeResolver
	calls *int
}

func (c countingResolver) ResolveHost(ctx context.Context, host string) (string, string, error) {
	*c.calls++
	return c.fakeResolver.ResolveHost(ctx, host)
}

func TestResolveHostCachesExternalResult(t *testing.T) {
	calls := 0
	r := New(countingResolver{fakeResolver: fakeResolver{country: "US", region: "CA"}, calls: &calls}, true, 24*time.Hour)

	first := r.ResolveHost(context.Background(), "example.com")
	second := r.ResolveHost(context.Background(), "example.com")

	if calls != 1 {
		t.Fatalf("expected the external resolver to be called once for a repeated host, got %d calls", calls)
	}
	if first.Country != second.Country {
		t.Fatalf("expected the same cached result, got %+v then %+v", first, second)
	}
}

func TestResolveHostCachesTLDFallback(t *testing.T) {
	calls := 0
	r := New(countingResolver{fakeResolver: fakeResolver{err: errors.New("down")}, calls: &calls}, true, 24*time.Hour)

	first := r.ResolveHost(context.Background(), "example.de")
	second := r.ResolveHost(context.Background(), "example.de")

	if first == nil || first.Country != "DE" || second == nil || second.Country != "DE" {
		t.Fatalf("expected both calls to fall back to DE, got %+v then %+v", first, second)
	}
	if calls != 1 {
		t.Fatalf("expected the second call to hit the fallback cache instead of retrying the external resolver, got %d calls", calls)
	}
}
