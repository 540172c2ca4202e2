package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
)

// Float encodes NaN and infinities as null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type ExportData struct {
	*RunMetadata
	Times  []float64   `json:"times"`
	States [][][]Float `json:"states"`
}

// ExportJSON writes a stored run, metadata and samples, as one JSON
// document. States of orbits that stopped early are null.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, states, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{RunMetadata: meta, Times: times, States: make([][][]Float, len(states))}
	for i, orbit := range states {
		data.States[i] = make([][]Float, len(orbit))
		for j, y := range orbit {
			row := make([]Float, len(y))
			for k, v := range y {
				row[k] = Float(v)
			}
			data.States[i][j] = row
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) ExportJSONStdout(runID string) error {
	return s.ExportJSON(os.Stdout, runID)
}
