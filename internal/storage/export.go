package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
}

type ExportSample struct {
	Time     float64    `json:"time"`
	Body     string     `json:"body"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

// ExportJSON writes a run and its trajectory as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, samples []Sample) error {
	data := ExportData{
		Run:     *meta,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Time:     s.Time,
			Body:     s.Body,
			Position: s.Position,
			Velocity: s.Velocity,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile is ExportJSON into a new file at path.
func ExportJSONFile(path string, meta *RunMetadata, samples []Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, meta, samples)
}
