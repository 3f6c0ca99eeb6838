// Package simulator serves a stand-in for the crop-manager telemetry endpoint.
// Readings use the server's own shape: numeric PlantID, "2006-01-02 15:04:05"
// timestamps and the "Greenness" spelling.
package simulator

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/api"
	"github.com/gorilla/mux"
)

const logTimeLayout = "2006-01-02 15:04:05"

type Config struct {
	Plants  int
	Step    time.Duration
	History int
	Seed    uint64
}

func (c *Config) applyDefaults() {
	if c.Plants <= 0 {
		c.Plants = 3
	}
	if c.Step <= 0 {
		c.Step = 5 * time.Second
	}
	if c.History <= 0 {
		c.History = 500
	}
}

type row struct {
	PlantID   int     `json:"PlantID"`
	LogTime   string  `json:"Log_Time"`
	Greenness float64 `json:"Greenness"`
}

// Simulator produces one reading per plant per step and keeps a bounded history
type Simulator struct {
	cfg Config

	mu       sync.Mutex
	rng      *rand.Rand
	levels   []float64
	rows     []row
	failNext int
}

// New creates a simulator. A zero Seed picks a random one.
func New(cfg Config) *Simulator {
	cfg.applyDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	levels := make([]float64, cfg.Plants)
	for i := range levels {
		levels[i] = 0.3 + rng.Float64()*0.4
	}

	return &Simulator{
		cfg:    cfg,
		rng:    rng,
		levels: levels,
	}
}

// Tick appends one reading per plant stamped with now
func (s *Simulator) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.levels {
		level := s.levels[i] + (s.rng.Float64()-0.5)*0.05
		level = math.Max(0, math.Min(1, level))
		s.levels[i] = level

		s.rows = append(s.rows, row{
			PlantID:   i + 1,
			LogTime:   now.Format(logTimeLayout),
			Greenness: math.Round(level*1000) / 1000,
		})
	}

	if over := len(s.rows) - s.cfg.History; over > 0 {
		s.rows = append(s.rows[:0:0], s.rows[over:]...)
	}
}

// Run ticks immediately and then every step until ctx is done
func (s *Simulator) Run(ctx context.Context) {
	t := time.NewTicker(s.cfg.Step)
	defer t.Stop()

	log.Printf("✓ Simulator running (%d plants, step %s)", s.cfg.Plants, s.cfg.Step)
	s.Tick(time.Now())

	for {
		select {
		case now := <-t.C:
			s.Tick(now)
		case <-ctx.Done():
			log.Println("✓ Simulator stopped")
			return
		}
	}
}

// Fail makes the next n plant-data requests answer 500
func (s *Simulator) Fail(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Len returns the number of readings currently served
func (s *Simulator) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Router exposes the telemetry endpoint and a health check
func (s *Simulator) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(api.PlantDataPath, s.handlePlantData).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	return r
}

func (s *Simulator) handlePlantData(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.failNext > 0 {
		s.failNext--
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch plant data"})
		return
	}
	rows := make([]row, len(s.rows))
	copy(rows, s.rows)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		log.Printf("❌ Failed to encode plant data: %v", err)
	}
}

func (s *Simulator) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
