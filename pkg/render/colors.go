package render

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cropwatch/plantmonitor/pkg/models"
)

// Colorer assigns a display color to a plant
type Colorer interface {
	ColorFor(id models.PlantID) string
}

// RandomColor returns a pseudo-random 24-bit color as #RRGGBB
func RandomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%06X", rng.Uint32()&0xFFFFFF)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Palette keeps one color per plant for its whole lifetime. Colors are derived
// on first sight and never overwritten.
type Palette struct {
	mu     sync.Mutex
	rng    *rand.Rand
	colors map[models.PlantID]string
}

// NewPalette creates an empty palette. A nil rng gets a randomly seeded source.
func NewPalette(rng *rand.Rand) *Palette {
	if rng == nil {
		rng = newRand()
	}
	return &Palette{
		rng:    rng,
		colors: make(map[models.PlantID]string),
	}
}

// ColorFor returns the plant's color, assigning one if the plant is new
func (p *Palette) ColorFor(id models.PlantID) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.colors[id]; ok {
		return c
	}
	c := RandomColor(p.rng)
	p.colors[id] = c
	return c
}

// Len returns the number of plants with an assigned color
func (p *Palette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.colors)
}

// PerPassColors draws a fresh color on every call, so a plant changes color
// from one render to the next.
type PerPassColors struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPerPassColors creates a PerPassColors. A nil rng gets a randomly seeded source.
func NewPerPassColors(rng *rand.Rand) *PerPassColors {
	if rng == nil {
		rng = newRand()
	}
	return &PerPassColors{rng: rng}
}

func (c *PerPassColors) ColorFor(models.PlantID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RandomColor(c.rng)
}
