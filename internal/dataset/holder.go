package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant_map/internal/models"
)

// DefaultMaxAge bounds how long a snapshot survives writes this process
// never saw, such as an import or another replica.
const DefaultMaxAge = 5 * time.Second

// Loader reads every record from the source of truth.
type Loader func(ctx context.Context) ([]models.Restaurant, error)

// Holder owns the current snapshot. The next Current reloads it once it is
// marked stale by Invalidate or is older than maxAge. A maxAge of zero or
// less reloads on every call.
type Holder struct {
	load   Loader
	maxAge time.Duration
	now    func() time.Time

	mu       sync.Mutex
	snapshot *Snapshot
	loadedAt time.Time
	stale    bool
}

func NewHolder(load Loader, maxAge time.Duration) *Holder {
	return &Holder{load: load, maxAge: maxAge, now: time.Now, stale: true}
}

func (h *Holder) Current(ctx context.Context) (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fresh() {
		return h.snapshot, nil
	}
	items, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	h.snapshot = NewSnapshot(items)
	h.loadedAt = h.now()
	h.stale = false
	logrus.WithField("records", len(items)).Debug("dataset snapshot reloaded")
	return h.snapshot, nil
}

func (h *Holder) fresh() bool {
	if h.stale || h.snapshot == nil || h.maxAge <= 0 {
		return false
	}
	return h.now().Sub(h.loadedAt) < h.maxAge
}

func (h *Holder) Invalidate() {
	h.mu.Lock()
	h.stale = true
	h.mu.Unlock()
}
