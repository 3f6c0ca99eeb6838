package puller

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/normalizer"
)

const (
	// DefaultInterval is the fixed poll period
	DefaultInterval = 5 * time.Second
	// DefaultTimeout bounds a single read
	DefaultTimeout = 10 * time.Second
)

// ErrAlreadyStarted is returned by Start on a running poller
var ErrAlreadyStarted = errors.New("poller already started")

// Poller issues one telemetry read per tick, starting immediately. Reads run on
// their own goroutines, so a slow read never delays the next tick and several
// reads may be in flight at once.
type Poller struct {
	source     Source
	normalizer *normalizer.Normalizer
	observer   Observer
	interval   time.Duration
	timeout    time.Duration

	mu       sync.Mutex
	current  *run
	seq      atomic.Uint64
	inflight sync.WaitGroup
}

// run is one Start/Stop generation
type run struct {
	stopChan chan struct{}
	done     chan struct{}
	stopped  atomic.Bool
}

// Option configures a Poller
type Option func(*Poller)

// WithInterval overrides the poll period. Only tests need this.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithTimeout bounds each read
func WithTimeout(timeout time.Duration) Option {
	return func(p *Poller) {
		p.timeout = timeout
	}
}

// WithObserver reports poll outcomes
func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// NewPoller creates a Poller reading from source
func NewPoller(source Source, norm *normalizer.Normalizer, opts ...Option) *Poller {
	p := &Poller{
		source:     source,
		normalizer: norm,
		interval:   DefaultInterval,
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start begins polling. onSuccess receives normalized readings; onFailure
// receives network, HTTP and malformed-data errors. Failures never stop the
// ticker.
func (p *Poller) Start(onSuccess func(Result), onFailure func(Failure)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return ErrAlreadyStarted
	}

	r := &run{
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.current = r

	go p.loop(r, onSuccess, onFailure)

	log.Printf("✓ Poller started (interval %s)", p.interval)
	return nil
}

// Stop cancels all future reads. Reads already in flight complete, but their
// results are dropped. Safe to call repeatedly or before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	r := p.current
	p.current = nil
	p.mu.Unlock()

	if r == nil {
		return
	}

	r.stopped.Store(true)
	close(r.stopChan)
	<-r.done

	log.Println("✓ Poller stopped")
}

// Running reports whether the poller has been started and not stopped
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Wait blocks until every issued read has completed
func (p *Poller) Wait() {
	p.inflight.Wait()
}

// loop executes the polling loop
func (p *Poller) loop(r *run, onSuccess func(Result), onFailure func(Failure)) {
	defer close(r.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.issue(r, onSuccess, onFailure)

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			if r.stopped.Load() {
				return
			}
			p.issue(r, onSuccess, onFailure)
		}
	}
}

// issue starts one read and returns without waiting for it
func (p *Poller) issue(r *run, onSuccess func(Result), onFailure func(Failure)) {
	seq := p.seq.Add(1)
	issuedAt := time.Now()

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		readings, err := p.source.Pull(ctx)
		result := Result{Seq: seq, IssuedAt: issuedAt}
		if err == nil {
			result.Readings, err = p.normalizer.Normalize(readings)
		}
		duration := time.Since(issuedAt)

		if p.observer != nil {
			p.observer.ObservePoll(duration, err)
		}

		if r.stopped.Load() {
			log.Printf("⚠ Discarding poll #%d that resolved after stop", seq)
			if p.observer != nil {
				p.observer.LateResponseDiscarded()
			}
			return
		}

		if err != nil {
			log.Printf("❌ Poll #%d failed: %v", seq, err)
			if onFailure != nil {
				onFailure(Failure{Seq: seq, Err: err, IssuedAt: issuedAt, Duration: duration})
			}
			return
		}

		result.Duration = duration
		if onSuccess != nil {
			onSuccess(result)
		}
	}()
}
