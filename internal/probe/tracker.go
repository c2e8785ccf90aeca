package probe

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatusTransitionTracker reduces log noise: a probe result is only logged
// on the endpoint's first observation, when its quality tier changes, or,
// while errors keep arriving in the same tier, on every tenth error or once
// five minutes have passed since the last log.
type StatusTransitionTracker struct {
	entries sync.Map // map[string]*statusEntry
}

type statusEntry struct {
	lastTier    atomic.Int32 // -1 not yet observed, 0 good, 1 fair, 2 poor
	lastLogTime atomic.Int64
	errorCount  atomic.Int64
}

func NewStatusTransitionTracker() *StatusTransitionTracker {
	return &StatusTransitionTracker{}
}

func tierOf(quality float64) int32 {
	switch {
	case quality >= 70:
		return 0
	case quality >= 40:
		return 1
	default:
		return 2
	}
}

// ShouldLog reports whether a probe outcome for endpointID is worth logging,
// along with how many consecutive unlogged errors preceded it.
func (st *StatusTransitionTracker) ShouldLog(endpointID string, quality float64, isError bool) (bool, int) {
	fresh := &statusEntry{}
	fresh.lastTier.Store(-1) // no tier observed yet, so the first result always logs
	value, _ := st.entries.LoadOrStore(endpointID, fresh)
	entry := value.(*statusEntry)

	newTier := tierOf(quality)
	oldTier := entry.lastTier.Swap(newTier)

	if oldTier != newTier {
		entry.errorCount.Store(0)
		entry.lastLogTime.Store(time.Now().UnixNano())
		return true, 0
	}

	if isError {
		count := entry.errorCount.Add(1)
		lastLog := time.Unix(0, entry.lastLogTime.Load())
		if count%10 == 0 || time.Since(lastLog) > 5*time.Minute {
			entry.lastLogTime.Store(time.Now().UnixNano())
			return true, int(count)
		}
	}

	return false, int(entry.errorCount.Load())
}

func (st *StatusTransitionTracker) CleanupEndpoint(endpointID string) {
	st.entries.Delete(endpointID)
}
