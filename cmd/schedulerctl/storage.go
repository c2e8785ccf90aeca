package main

import (
	"context"
	"encoding/json"
	"os"
)

// fileStorage is the default ports.Storage: one JSON file holding the
// per-endpoint sample snapshot. A missing or
// corrupt file yields an empty snapshot rather than an error.
type fileStorage struct {
	path string
}

func newFileStorage(path string) *fileStorage {
	return &fileStorage{path: path}
}

func (f *fileStorage) Load(ctx context.Context) (map[string][]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]byte{}, nil
		}
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string][]byte{}, nil
	}

	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out, nil
}

func (f *fileStorage) Save(ctx context.Context, snapshot map[string][]byte) error {
	raw := make(map[string]json.RawMessage, len(snapshot))
	for k, v := range snapshot {
		raw[k] = v
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}
