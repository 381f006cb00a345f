package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/registry"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"time", "body", "x", "y", "z", "vx", "vy", "vz"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type BodyInfo struct {
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius,omitempty"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Units     string             `json:"units"`
	G         float64            `json:"g"`
	Step      float64            `json:"step"`
	TimeScale float64            `json:"time_scale"`
	Duration  float64            `json:"duration"`
	SimTime   float64            `json:"sim_time"`
	Steps     uint64             `json:"steps"`
	Frames    int                `json:"frames"`
	Bodies    []BodyInfo         `json:"bodies"`
	Metrics   map[string]float64 `json:"metrics"`
	Energy    []float64          `json:"energy,omitempty"`
}

// Sample is one body's state at one recorded instant: a row of the
// trajectory file.
type Sample struct {
	Time     float64
	Body     string
	Position dynamo.Vec3
	Velocity dynamo.Vec3
}

// Recorder accumulates trajectory samples from published frames. Its Record
// method has the shape of a headless sample callback.
type Recorder struct {
	Samples []Sample
	Times   []float64
}

func (r *Recorder) Record(f *registry.Frame) error {
	r.Times = append(r.Times, f.SimTime)
	for _, b := range f.Bodies {
		r.Samples = append(r.Samples, Sample{
			Time:     f.SimTime,
			Body:     b.Name,
			Position: b.Position,
			Velocity: b.Velocity,
		})
	}
	return nil
}

// Save writes a run directory and returns its id. meta.ID and meta.Timestamp
// are filled in.
func (s *Store) Save(meta *RunMetadata, samples []Sample) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, runDir, err := s.reserve(meta.Scenario, now)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, samples); err != nil {
		return "", err
	}
	return runID, nil
}

// reserve creates a fresh run directory, suffixing the id if two runs of the
// same scenario land in the same second.
func (s *Store) reserve(scenario string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", scenario, now.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

// List returns the metadata of every run, oldest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}

	row := make([]string, len(trajectoryHeader))
	for _, smp := range samples {
		row[0] = formatFloat(smp.Time)
		row[1] = smp.Body
		for k := 0; k < 3; k++ {
			row[2+k] = formatFloat(smp.Position[k])
			row[5+k] = formatFloat(smp.Velocity[k])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(trajectoryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for line, record := range records[1:] {
		var vals [7]float64
		for k, field := range append(record[:1:1], record[2:]...) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trajectory line %d: %w", line+2, err)
			}
			vals[k] = v
		}
		samples = append(samples, Sample{
			Time:     vals[0],
			Body:     record[1],
			Position: dynamo.Vec3{vals[1], vals[2], vals[3]},
			Velocity: dynamo.Vec3{vals[4], vals[5], vals[6]},
		})
	}
	return samples, nil
}

// Series extracts one body's samples in time order.
func Series(samples []Sample, body string) []Sample {
	var out []Sample
	for _, s := range samples {
		if s.Body == body {
			out = append(out, s)
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
