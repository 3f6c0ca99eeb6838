// Package dashboard holds the Plant Monitor view: the poller's consumer and
// owner of the currently displayed series.
package dashboard

import (
	"log"
	"sync"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/aggregator"
	"github.com/cropwatch/plantmonitor/pkg/metrics"
	"github.com/cropwatch/plantmonitor/pkg/models"
	"github.com/cropwatch/plantmonitor/pkg/puller"
	"github.com/cropwatch/plantmonitor/pkg/render"
	"github.com/google/uuid"
)

// Snapshot is a consistent copy of the view's state
type Snapshot struct {
	ViewID      uuid.UUID       `json:"view_id"`
	Active      bool            `json:"active"`
	Sequence    uint64          `json:"sequence"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	Series      []models.Series `json:"series"`
	LastError   string          `json:"last_error,omitempty"`
	LastErrorAt *time.Time      `json:"last_error_at,omitempty"`
	// Stale is set while the most recent poll failed and Series still holds
	// the last good dataset.
	Stale bool `json:"stale"`
}

// View applies poll results to the displayed dataset. Each successful poll
// replaces the dataset; failures leave it on screen.
type View struct {
	id           uuid.UUID
	poller       *puller.Poller
	colors       render.Colorer
	metrics      *metrics.Collector
	discardStale bool

	mu          sync.RWMutex
	active      bool
	lastApplied uint64
	series      []models.Series
	plants      int
	readings    int
	updatedAt   time.Time
	lastErr     error
	lastErrAt   time.Time
	subscribers map[int]chan Snapshot
	nextSub     int
}

// ViewOption configures a View
type ViewOption func(*View)

// WithMetrics records dataset and discard metrics
func WithMetrics(c *metrics.Collector) ViewOption {
	return func(v *View) {
		v.metrics = c
	}
}

// WithDiscardStale controls the stale-response guard. When off, whichever
// response resolves last is applied, even if it was issued earlier.
func WithDiscardStale(discard bool) ViewOption {
	return func(v *View) {
		v.discardStale = discard
	}
}

// NewView creates an unmounted view
func NewView(p *puller.Poller, colors render.Colorer, opts ...ViewOption) *View {
	v := &View{
		id:           uuid.New(),
		poller:       p,
		colors:       colors,
		discardStale: true,
		series:       []models.Series{},
		subscribers:  make(map[int]chan Snapshot),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// ID returns the view's identifier
func (v *View) ID() uuid.UUID {
	return v.id
}

// Mount activates the view and starts polling
func (v *View) Mount() error {
	v.mu.Lock()
	if v.active {
		v.mu.Unlock()
		return nil
	}
	v.active = true
	v.mu.Unlock()

	if err := v.poller.Start(v.handleResult, v.handleFailure); err != nil {
		v.mu.Lock()
		v.active = false
		v.mu.Unlock()
		return err
	}

	log.Printf("✓ View %s mounted", v.id)
	return nil
}

// Unmount stops polling. Responses still in flight are dropped.
func (v *View) Unmount() {
	v.mu.Lock()
	wasActive := v.active
	v.active = false
	v.mu.Unlock()

	v.poller.Stop()

	if wasActive {
		log.Printf("✓ View %s unmounted", v.id)
	}
}

func (v *View) handleResult(r puller.Result) {
	v.Apply(r)
}

func (v *View) handleFailure(f puller.Failure) {
	v.Fail(f)
}

// Apply groups and renders a successful poll and replaces the dataset. It
// reports whether the result was applied.
func (v *View) Apply(r puller.Result) bool {
	groups := aggregator.Group(r.Readings)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.active {
		return false
	}

	if v.discardStale && r.Seq <= v.lastApplied {
		log.Printf("⚠ Discarding poll #%d, dataset is already at #%d", r.Seq, v.lastApplied)
		if v.metrics != nil {
			v.metrics.StaleResponseDiscarded()
		}
		return false
	}

	v.series = render.Render(groups, v.colors)
	v.plants = groups.Len()
	v.readings = groups.Total()
	v.lastApplied = r.Seq
	v.updatedAt = time.Now()
	v.lastErr = nil
	v.lastErrAt = time.Time{}

	if v.metrics != nil {
		v.metrics.SetDataset(v.plants, v.readings, v.updatedAt)
	}

	v.publishLocked()
	return true
}

// Fail records a failed poll. The dataset stays as it is.
func (v *View) Fail(f puller.Failure) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.active {
		return
	}

	// An older poll failing does not make newer data stale
	if v.discardStale && f.Seq <= v.lastApplied {
		return
	}

	v.lastErr = f.Err
	v.lastErrAt = time.Now()
	v.publishLocked()
}

// Snapshot returns a copy of the current state
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every change. Slow
// receivers only ever see the latest snapshot. cancel releases the
// subscription and closes the channel.
func (v *View) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subscribers[id] = ch
	v.mu.Unlock()

	cancel := sync.OnceFunc(func() {
		v.mu.Lock()
		delete(v.subscribers, id)
		v.mu.Unlock()
		close(ch)
	})

	return ch, cancel
}

func (v *View) snapshotLocked() Snapshot {
	series := make([]models.Series, len(v.series))
	copy(series, v.series)

	snap := Snapshot{
		ViewID:   v.id,
		Active:   v.active,
		Sequence: v.lastApplied,
		Series:   series,
		Stale:    v.lastErr != nil,
	}
	if !v.updatedAt.IsZero() {
		at := v.updatedAt
		snap.UpdatedAt = &at
	}
	if v.lastErr != nil {
		at := v.lastErrAt
		snap.LastError = v.lastErr.Error()
		snap.LastErrorAt = &at
	}
	return snap
}

func (v *View) publishLocked() {
	if len(v.subscribers) == 0 {
		return
	}

	snap := v.snapshotLocked()
	for _, ch := range v.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the undelivered snapshot in favour of the new one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
