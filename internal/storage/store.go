// Package storage keeps orbit runs on disk. Each run is a directory named by
// its ID holding metadata.json, the sampled orbits in orbit.csv and the run
// file that produced them in config.yaml.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/experiment"
)

var ErrBadRecord = errors.New("storage: malformed orbit record")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a stored run. Times are in the time unit of Units.
type RunMetadata struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Timestamp time.Time            `json:"timestamp"`
	Units     string               `json:"units"`
	Solver    string               `json:"solver"`
	T0        float64              `json:"t0"`
	T1        float64              `json:"t1"`
	Orbits    int                  `json:"orbits"`
	Samples   int                  `json:"samples"`
	Results   []string             `json:"results"`
	Metrics   []map[string]float64 `json:"metrics"`
}

func (s *Store) Save(name string, cfg *config.Config, res *experiment.Result) (string, error) {
	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: time.Now(),
		Units:     res.Units.Name(),
		Solver:    cfg.Integration.Solver,
		T0:        res.T0,
		T1:        res.T1,
		Orbits:    len(res.States),
		Samples:   len(res.Times),
		Metrics:   finiteMetrics(res.Metrics),
	}
	if res.Orbit != nil {
		for _, r := range res.Orbit.Results {
			meta.Results = append(meta.Results, r.String())
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, "config.yaml"), cfg); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "orbit.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"orbit", "t", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return "", err
	}
	for i, states := range res.States {
		for j, y := range states {
			row := []string{strconv.Itoa(i), strconv.FormatFloat(res.Times[j], 'g', -1, 64)}
			for _, val := range y {
				row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return runID, nil
}

// finiteMetrics drops values JSON cannot hold, such as the NaN extent of an
// orbit that never produced a valid state.
func finiteMetrics(ms []map[string]float64) []map[string]float64 {
	out := make([]map[string]float64, len(ms))
	for i, m := range ms {
		out[i] = make(map[string]float64, len(m))
		for k, v := range m {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				out[i][k] = v
			}
		}
	}
	return out
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig reads back the run file stored with a run.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, "config.yaml"))
}

// LoadStates returns the sample times and, per orbit, the states at those
// times.
func (s *Store) LoadStates(runID string) ([]float64, [][]diffeq.State, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "orbit.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 8

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]diffeq.State{}, nil
	}

	var times []float64
	var states [][]diffeq.State
	for n, record := range records[1:] {
		orbit, err := strconv.Atoi(record[0])
		if err != nil || orbit < 0 || orbit > len(states) {
			return nil, nil, fmt.Errorf("%w: line %d: orbit %q", ErrBadRecord, n+2, record[0])
		}
		vals := make([]float64, 7)
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, n+2, err)
			}
		}
		if orbit == len(states) {
			states = append(states, nil)
		}
		if orbit == 0 {
			times = append(times, vals[0])
		}
		states[orbit] = append(states[orbit], diffeq.State(vals[1:]))
	}
	return times, states, nil
}
