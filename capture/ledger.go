package capture

import (
	"context"
	"fmt"

	"github.com/ivansanturion-collab/jarvis/internal/fsstore"
)

// Ledger is the persisted set of processed message keys, stored as a plain
// JSON array. It is append-only and never pruned; membership is what makes
// task creation at-most-once per message. A file lock serializes readers and
// writers so a second process cannot lose a mark.
type Ledger struct {
	path     string
	lockPath string
}

func NewLedger(path, lockRoot string) (*Ledger, error) {
	lockPath, err := fsstore.BuildLockPath(lockRoot, "procesados")
	if err != nil {
		return nil, err
	}
	return &Ledger{path: path, lockPath: lockPath}, nil
}

// Key builds the composite dedup key for one inbound message.
func Key(source, messageID string) string {
	return source + "_" + messageID
}

func (l *Ledger) Has(ctx context.Context, key string) (bool, error) {
	var present bool
	err := fsstore.WithLock(ctx, l.lockPath, func() error {
		keys, err := l.read()
		if err != nil {
			return err
		}
		for _, k := range keys {
			if k == key {
				present = true
				break
			}
		}
		return nil
	})
	return present, err
}

// Mark appends key to the ledger. A duplicate append is harmless since Has
// only checks membership.
func (l *Ledger) Mark(ctx context.Context, key string) error {
	return fsstore.WithLock(ctx, l.lockPath, func() error {
		keys, err := l.read()
		if err != nil {
			return err
		}
		keys = append(keys, key)
		return fsstore.WriteJSONAtomic(l.path, keys, fsstore.FileOptions{})
	})
}

func (l *Ledger) read() ([]string, error) {
	var keys []string
	found, err := fsstore.ReadJSON(l.path, &keys)
	if err != nil {
		return nil, fmt.Errorf("read dedup ledger: %w", err)
	}
	if !found {
		return []string{}, nil
	}
	return keys, nil
}
