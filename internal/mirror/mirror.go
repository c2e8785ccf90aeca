// Package mirror wraps a host-supplied ports.MirrorSelector with
// memoization and single-flight de-duplication, without implementing
// mirror selection itself — that collaborator stays entirely out of
// core scope.
package mirror

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/adaptive/scheduler/internal/cache"
	"github.com/adaptive/scheduler/internal/core/ports"
)

const memoTTL = 10 * time.Minute

// Resolver memoizes a MirrorSelector's result for memoTTL and collapses
// concurrent callers into a single underlying call.
type Resolver struct {
	selector ports.MirrorSelector
	memo     *cache.Cache[string]
	group    singleflight.Group
}

func New(selector ports.MirrorSelector) *Resolver {
	return &Resolver{
		selector: selector,
		memo:     cache.New[string](1, memoTTL),
	}
}

const memoKey = "best-mirror"

// Best returns the current best mirror prefix, from cache when fresh or by
// invoking the underlying selector (once, however many callers are racing).
func (r *Resolver) Best(ctx context.Context) (string, error) {
	if prefix, ok := r.memo.Get(memoKey); ok {
		return prefix, nil
	}

	v, err, _ := r.group.Do(memoKey, func() (any, error) {
		return r.selector.SelectBestMirror(ctx)
	})
	if err != nil {
		return "", err
	}

	prefix := v.(string)
	r.memo.Set(memoKey, prefix)
	return prefix, nil
}
