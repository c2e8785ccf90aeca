package orchestrator

import (
	"context"
	"encoding/json"
	"net"
	"strconv"

	"github.com/adaptive/scheduler/internal/store"
)

// splitHostPort parses a "host:port" server string, tolerating a bare host
// with no port (probes then fall back to Endpoint.Address's host-only form).
func splitHostPort(server string) (string, int) {
	host, portStr, err := net.SplitHostPort(server)
	if err != nil {
		return server, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}
	return host, port
}

// loadPersisted restores the Sample Store from the last clean-shutdown
// snapshot. A missing or corrupt file is discarded, not repaired,
// State-corruption error): the Orchestrator just starts cold.
func (o *Orchestrator) loadPersisted(ctx context.Context) {
	if o.storage == nil {
		return
	}

	raw, err := o.storage.Load(ctx)
	if err != nil {
		o.log.Warn("discarding persisted snapshot", "error", err)
		return
	}

	snapshots := make(map[string]store.Snapshot, len(raw))
	for id, data := range raw {
		var snap store.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			o.log.Warn("discarding corrupt snapshot entry", "endpoint_id", id, "error", err)
			continue
		}
		snapshots[id] = snap
	}
	o.samples.Import(snapshots)
	o.log.InfoWithCount("restored persisted samples", "endpoints", len(snapshots))
}

// persist writes a compact per-endpoint sample-window snapshot for the next
// clean start. Encoding failures for one endpoint don't abort the rest.
func (o *Orchestrator) persist(ctx context.Context) error {
	if o.storage == nil {
		return nil
	}

	exported := o.samples.Export()
	raw := make(map[string][]byte, len(exported))
	for id, snap := range exported {
		data, err := json.Marshal(snap)
		if err != nil {
			o.log.Warn("failed to encode snapshot", "endpoint_id", id, "error", err)
			continue
		}
		raw[id] = data
	}

	return o.storage.Save(ctx, raw)
}
