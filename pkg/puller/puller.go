package puller

import (
	"context"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/models"
)

// Source is the telemetry read endpoint. Every call returns the full current
// reading set.
type Source interface {
	Pull(ctx context.Context) ([]models.Reading, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) ([]models.Reading, error)

func (f SourceFunc) Pull(ctx context.Context) ([]models.Reading, error) {
	return f(ctx)
}

// Observer receives poll outcomes, typically for metrics
type Observer interface {
	ObservePoll(duration time.Duration, err error)
	LateResponseDiscarded()
}

// Result is a successful poll cycle. Seq is assigned when the read is issued
// and grows monotonically across the poller's lifetime.
type Result struct {
	Seq      uint64
	Readings []models.NormalizedReading
	IssuedAt time.Time
	Duration time.Duration
}

// Failure is a failed poll cycle
type Failure struct {
	Seq      uint64
	Err      error
	IssuedAt time.Time
	Duration time.Duration
}
