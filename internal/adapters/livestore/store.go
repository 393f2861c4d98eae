// Package livestore is the boundary to the live key/value store that
// spectators read from. Values are JSON documents addressed by
// slash-separated paths such as liveMatches/{matchId}.
package livestore

import (
	"context"
	"encoding/json"

	"github.com/okian/scorebook/internal/domain/model"
)

// Snapshot is the value at a path at one point in time. Exists is false once
// the path has been removed or was never written.
type Snapshot struct {
	Path   string          `json:"path"`
	Value  json.RawMessage `json:"value,omitempty"`
	Exists bool            `json:"exists"`
}

// Decode unmarshals the snapshot value into out.
func (s Snapshot) Decode(out any) error {
	if !s.Exists {
		return model.NewError("livestore.Decode", model.ErrNotFound, "nothing stored at %s", s.Path)
	}
	if err := json.Unmarshal(s.Value, out); err != nil {
		return model.WrapError("livestore.Decode", model.ErrInvalidInput, err)
	}
	return nil
}

// Unsubscribe stops a subscription. It is safe to call more than once.
type Unsubscribe func()

// Store is the live store contract.
type Store interface {
	// Write upserts value (JSON encoded) at path. Repeating a write is harmless.
	Write(ctx context.Context, path string, value any) error

	// Remove deletes path and everything below it.
	Remove(ctx context.Context, path string) error

	// Read returns the current value at path.
	Read(ctx context.Context, path string) (Snapshot, error)

	// Subscribe calls fn with the current value and again after every change
	// of path, including removal. Delivery is latest-value: intermediate
	// values may be skipped, but a subscriber never sees an older value after
	// a newer one.
	Subscribe(ctx context.Context, path string, fn func(Snapshot)) (Unsubscribe, error)

	Close() error
}
