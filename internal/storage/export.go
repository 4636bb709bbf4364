package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/dyncontact/internal/scan"
)

type ExportData struct {
	RunMetadata
	Samples []scan.Sample `json:"samples"`
}

func ExportJSON(path string, meta RunMetadata, samples []scan.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, samples)
}

// WriteJSON writes a run as a single indented JSON document.
func WriteJSON(w io.Writer, meta RunMetadata, samples []scan.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: meta, Samples: samples})
}
