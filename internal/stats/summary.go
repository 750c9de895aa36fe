package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
)

// RunSummary holds the temporal statistics of one run's temperature series.
type RunSummary struct {
	Mean   float64
	StdDev float64
	CoV    float64 // StdDev / Mean
}

// Summary aggregates an ensemble: one RunSummary per run, the cross-run
// distribution of final-step temperatures, and the spread of the per-run
// means. All fields are derived; the ensemble itself is never modified.
type Summary struct {
	PerRun     []RunSummary
	FinalTemps []float64
	MeanOfRuns float64 // mean of per-run temperature means
	StdOfRuns  float64 // sample std of per-run temperature means
}

// Summarize computes per-run and cross-run statistics for an ensemble. A run
// whose mean temperature is exactly zero makes the coefficient of variation
// undefined, which is reported as an error rather than an Inf or NaN slipping
// into the output.
func Summarize(ens ebm.Ensemble) (Summary, error) {
	if len(ens.Runs) == 0 {
		return Summary{}, fmt.Errorf("stats: empty ensemble")
	}

	sum := Summary{
		PerRun:     make([]RunSummary, len(ens.Runs)),
		FinalTemps: make([]float64, len(ens.Runs)),
	}
	runMeans := make([]float64, len(ens.Runs))

	for k, run := range ens.Runs {
		if run.Len() == 0 {
			return Summary{}, fmt.Errorf("stats: run %d holds no samples", k)
		}
		temps := run.Temperatures()
		mean := stat.Mean(temps, nil)
		std := stat.StdDev(temps, nil)
		if mean == 0 {
			return Summary{}, fmt.Errorf("stats: run %d: %w", k, ebm.ErrUndefinedCoV)
		}
		sum.PerRun[k] = RunSummary{Mean: mean, StdDev: std, CoV: std / mean}
		sum.FinalTemps[k] = run.Final().Temp
		runMeans[k] = mean
	}

	sum.MeanOfRuns = stat.Mean(runMeans, nil)
	if len(runMeans) > 1 {
		sum.StdOfRuns = stat.StdDev(runMeans, nil)
	}
	return sum, nil
}
