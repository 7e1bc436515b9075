// Package ledger records which jobs the user has applied to.
//
// The in-memory set is authoritative for the running session; every change
// is written through to a durable key as a JSON array of ids. Storage
// failures are logged and never returned: losing a cached "applied" marker
// is recoverable, a broken view is not.
package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"jobboard/internal/errors"
	"jobboard/internal/localstore"
	"jobboard/internal/logger"
)

const DefaultKey = "appliedJobs"

type Ledger struct {
	store localstore.KV
	key   string
	log   *zap.SugaredLogger

	mu    sync.Mutex
	ids   []string
	index map[string]struct{}
}

func New(store localstore.KV, key string, log *zap.SugaredLogger) *Ledger {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Ledger{
		store: store,
		key:   key,
		log:   logger.OrNop(log),
		index: map[string]struct{}{},
	}
}

// Initialize rebuilds the set from the durable key. Absent or malformed
// content yields an empty set.
func (l *Ledger) Initialize(ctx context.Context) {
	ids := l.read(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = ids
	l.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		l.index[id] = struct{}{}
	}
}

func (l *Ledger) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.index[strings.TrimSpace(id)]
	return ok
}

// IDs returns the applied ids in insertion order.
func (l *Ledger) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.ids...)
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// Add inserts id and writes the full set through. It reports whether the
// set changed; adding a present id writes nothing.
func (l *Ledger) Add(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.index[id]; ok {
		return false
	}
	l.index[id] = struct{}{}
	l.ids = append(l.ids, id)
	l.persist(ctx)
	return true
}

// Remove deletes id and writes the full set through. It reports whether
// the set changed.
func (l *Ledger) Remove(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.index[id]; !ok {
		return false
	}
	delete(l.index, id)
	kept := l.ids[:0:0]
	for _, existing := range l.ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	l.ids = kept
	l.persist(ctx)
	return true
}

// persist is the only writer of the durable key. Callers hold l.mu, which
// serializes writes.
func (l *Ledger) persist(ctx context.Context) {
	data, err := json.Marshal(l.idsOrEmpty())
	if err != nil {
		l.log.Errorw("encode applied jobs", "error", err)
		return
	}
	if err := l.store.Put(ctx, l.key, data); err != nil {
		l.log.Warnw("applied jobs not saved, kept in memory only",
			"key", l.key, "count", len(l.ids), "error", errors.WrapStorage(err, "write applied jobs"))
	}
}

func (l *Ledger) idsOrEmpty() []string {
	if l.ids == nil {
		return []string{}
	}
	return l.ids
}

func (l *Ledger) read(ctx context.Context) []string {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if !errors.Is(err, localstore.ErrKeyNotFound) {
			l.log.Warnw("applied jobs unreadable, starting empty",
				"key", l.key, "error", errors.WrapStorage(err, "read applied jobs"))
		}
		return []string{}
	}
	ids, err := decodeIDs(data)
	if err != nil {
		l.log.Warnw("applied jobs malformed, starting empty", "key", l.key, "error", err)
		return []string{}
	}
	return ids
}

// decodeIDs accepts a JSON array, keeps its string entries in order and
// drops duplicates after the first.
func decodeIDs(data []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode applied jobs")
	}
	if raw == nil {
		return nil, errors.New("applied jobs value is not an array")
	}
	ids := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err != nil {
			continue
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
