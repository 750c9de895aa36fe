package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/stats"
)

// Store persists runs under a base directory, one subdirectory per run with a
// metadata.json plus CSV data files.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "deterministic" or "ensemble"
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed,omitempty"`
	Dt        float64   `json:"dt"`
	Steps     int       `json:"steps"`
	Runs      int       `json:"runs,omitempty"`
	InitTemp  float64   `json:"init_temp"`
	InitAlb   float64   `json:"init_albedo"`
}

// SaveTrajectory stores a single deterministic run: metadata plus a
// time/temp/albedo CSV.
func (s *Store) SaveTrajectory(tr ebm.Trajectory, initial ebm.State) (string, error) {
	runID := fmt.Sprintf("det_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	dt := 0.0
	if tr.Len() > 1 {
		dt = tr.Times[1] - tr.Times[0]
	}
	meta := RunMetadata{
		ID:        runID,
		Kind:      "deterministic",
		Timestamp: time.Now(),
		Dt:        dt,
		Steps:     tr.Len(),
		InitTemp:  initial.Temp,
		InitAlb:   initial.Albedo,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrajectoryCSV(filepath.Join(runDir, "trajectory.csv"), tr); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveEnsemble stores an ensemble run: metadata, the statistical summary, and
// one CSV of per-run statistics including the final-step temperature.
func (s *Store) SaveEnsemble(ens ebm.Ensemble, sum stats.Summary) (string, error) {
	runID := fmt.Sprintf("ens_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	steps := 0
	if len(ens.Runs) > 0 {
		steps = ens.Runs[0].Len()
	}
	meta := RunMetadata{
		ID:        runID,
		Kind:      "ensemble",
		Timestamp: time.Now(),
		Seed:      ens.Seed,
		Dt:        ens.Dt,
		Steps:     steps,
		Runs:      len(ens.Runs),
		InitTemp:  ens.Initial.Temp,
		InitAlb:   ens.Initial.Albedo,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), sum); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "runs.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"run", "mean_temp", "std_temp", "cov", "final_temp"}); err != nil {
		return "", err
	}
	for k, r := range sum.PerRun {
		row := []string{
			strconv.Itoa(k),
			strconv.FormatFloat(r.Mean, 'f', 6, 64),
			strconv.FormatFloat(r.StdDev, 'f', 6, 64),
			strconv.FormatFloat(r.CoV, 'f', 6, 64),
			strconv.FormatFloat(sum.FinalTemps[k], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, nil
}

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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
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

// LoadTrajectory reads back a deterministic run's CSV.
func (s *Store) LoadTrajectory(runID string) (ebm.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return ebm.Trajectory{}, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return ebm.Trajectory{}, err
	}
	if len(records) < 2 {
		return ebm.Trajectory{}, nil
	}

	tr := ebm.Trajectory{
		Times:  make([]float64, 0, len(records)-1),
		States: make([]ebm.State, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return ebm.Trajectory{}, err
		}
		temp, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return ebm.Trajectory{}, err
		}
		alb, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return ebm.Trajectory{}, err
		}
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, ebm.State{Temp: temp, Albedo: alb})
	}
	return tr, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectoryCSV(path string, tr ebm.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"time", "temp", "albedo"}); err != nil {
		return err
	}
	for i := range tr.Times {
		row := []string{
			strconv.FormatFloat(tr.Times[i], 'f', 6, 64),
			strconv.FormatFloat(tr.States[i].Temp, 'f', 6, 64),
			strconv.FormatFloat(tr.States[i].Albedo, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
