// Package aggregator partitions a poll's readings into per-plant series.
package aggregator

import (
	"github.com/cropwatch/plantmonitor/pkg/models"
)

// Groups maps plant ids to their readings. Keys iterate in order of first
// occurrence; readings keep source order within each plant.
type Groups struct {
	order   []models.PlantID
	byPlant map[models.PlantID][]models.NormalizedReading
	total   int
}

// Group partitions readings in a single pass. No sorting and no deduplication:
// a plant may carry out-of-order timestamps if the source sent them that way.
func Group(readings []models.NormalizedReading) *Groups {
	g := &Groups{
		byPlant: make(map[models.PlantID][]models.NormalizedReading),
	}

	for _, r := range readings {
		bucket, ok := g.byPlant[r.PlantID]
		if !ok {
			g.order = append(g.order, r.PlantID)
		}
		g.byPlant[r.PlantID] = append(bucket, r)
	}
	g.total = len(readings)

	return g
}

// Keys returns the plant ids in order of first occurrence
func (g *Groups) Keys() []models.PlantID {
	keys := make([]models.PlantID, len(g.order))
	copy(keys, g.order)
	return keys
}

// Get returns the readings of one plant
func (g *Groups) Get(id models.PlantID) ([]models.NormalizedReading, bool) {
	readings, ok := g.byPlant[id]
	return readings, ok
}

// Len returns the number of plants
func (g *Groups) Len() int {
	return len(g.order)
}

// Total returns the number of readings across all plants
func (g *Groups) Total() int {
	return g.total
}
