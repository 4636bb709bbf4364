// Package storage keeps scan runs on disk, one directory per run holding
// metadata.json and samples.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dyncontact/internal/scan"
)

var ErrBadRecord = errors.New("storage: malformed sample record")

var sampleHeader = []string{"alpha", "cost", "momentum_cost", "gradient_norm", "slope"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a scan of the cost along the line From → To.
type RunMetadata struct {
	ID             string             `json:"id"`
	Problem        string             `json:"problem"`
	Timestamp      time.Time          `json:"timestamp"`
	TimeStep       float64            `json:"time_step"`
	NumVelocities  int                `json:"num_velocities"`
	NumConstraints int                `json:"num_constraints"`
	NumEquations   int                `json:"num_equations"`
	Workers        int                `json:"workers"`
	From           []float64          `json:"from"`
	To             []float64          `json:"to"`
	Metrics        map[string]float64 `json:"metrics"`
}

// Save writes a new run and returns its ID. ID and Timestamp of meta are
// filled in.
func (s *Store) Save(meta RunMetadata, samples []scan.Sample) (string, error) {
	name := meta.Problem
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

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

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, smp := range samples {
		row := []string{
			formatFloat(smp.Alpha),
			formatFloat(smp.Cost),
			formatFloat(smp.MomentumCost),
			formatFloat(smp.GradientNorm),
			formatFloat(smp.Slope),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the metadata of every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
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

func (s *Store) LoadSamples(runID string) ([]scan.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []scan.Sample{}, nil
	}

	samples := make([]scan.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [5]float64
		for k, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, i+2, err)
			}
			vals[k] = v
		}
		samples = append(samples, scan.Sample{
			Alpha:        vals[0],
			Cost:         vals[1],
			MomentumCost: vals[2],
			GradientNorm: vals[3],
			Slope:        vals[4],
		})
	}
	return samples, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
