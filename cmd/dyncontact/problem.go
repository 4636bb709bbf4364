package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/san-kum/dyncontact/internal/config"
	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// loadProblem reads --problem, or the --preset when no file is given.
func loadProblem() (*config.ProblemFile, string, error) {
	if problemFile == "" {
		f, err := config.GetPreset(presetName)
		if err != nil {
			return nil, "", fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		return f, presetName, nil
	}

	f, err := config.Load(problemFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load problem: %w", err)
	}
	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(problemFile), filepath.Ext(problemFile))
	}
	return f, name, nil
}

func buildModel(f *config.ProblemFile) (*model.Model[scalar.Float], error) {
	p, err := config.Build[scalar.Float](f)
	if err != nil {
		return nil, err
	}
	return model.New(p, model.WithLogger(logger))
}

// reduced maps a full problem velocity onto the model, falling back to def
// when v is empty.
func reduced(m *model.Model[scalar.Float], v, def []float64) ([]float64, error) {
	if len(v) == 0 {
		v = def
	}
	r, err := m.ReduceVelocities(scalar.Floats(v))
	if err != nil {
		return nil, err
	}
	return scalar.Values(r), nil
}
