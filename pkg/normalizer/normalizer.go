// Package normalizer turns raw telemetry timestamps into the canonical display
// form used as the chart's x-axis.
package normalizer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/api"
	"github.com/cropwatch/plantmonitor/pkg/models"
)

// DisplayLayout is the canonical display form, minute precision
const DisplayLayout = "2006-01-02 15:04"

// layouts are tried in order. Layouts without a zone are read in the
// normalizer's location.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	DisplayLayout,
	"2006-01-02T15:04",
	time.RFC1123,
	time.RFC1123Z,
}

var errUnknownFormat = errors.New("unrecognized timestamp format")

// Normalizer formats timestamps in a single location so that every string of
// one render is comparable.
type Normalizer struct {
	loc *time.Location
}

// New creates a Normalizer for loc. A nil loc means time.Local.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Location returns the display location
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize maps every reading to a NormalizedReading, keeping order and count.
// One unparseable timestamp fails the whole batch with *api.MalformedDataError.
func (n *Normalizer) Normalize(readings []models.Reading) ([]models.NormalizedReading, error) {
	out := make([]models.NormalizedReading, len(readings))
	for i, r := range readings {
		at, err := n.Parse(r.LogTime)
		if err != nil {
			return nil, &api.MalformedDataError{Index: i, Value: r.LogTime, Err: err}
		}
		out[i] = models.NormalizedReading{
			PlantID:   r.PlantID,
			LogTime:   n.Format(at),
			Greenness: r.Greenness,
			Extra:     models.CopyExtra(r.Extra),
			At:        at,
		}
	}
	return out, nil
}

// Parse reads a raw telemetry timestamp. All-digit values are unix milliseconds.
func (n *Normalizer) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	if isDigits(value) {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).In(n.loc), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, n.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnknownFormat
}

// Format renders an instant in the canonical display form
func (n *Normalizer) Format(t time.Time) string {
	return t.In(n.loc).Format(DisplayLayout)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
