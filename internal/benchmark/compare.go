package benchmark

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"newsapp-summarizer/internal/logging"
	"newsapp-summarizer/internal/summarizer"
)

const DefaultIterations = 5

// Stats aggregates the latencies of one model across all iterations.
type Stats struct {
	AverageTime float64            `json:"average_time"`
	MinTime     float64            `json:"min_time"`
	MaxTime     float64            `json:"max_time"`
	Samples     []float64          `json:"samples"`
	ModelSize   string             `json:"model_size"`
	Strengths   []string           `json:"strengths"`
	Parameters  summarizer.Profile `json:"parameters"`
}

type Report struct {
	Iterations int               `json:"iterations"`
	Comparison map[string]*Stats `json:"comparison"`
}

// Progress is emitted after every single model run.
type Progress struct {
	Iteration int     `json:"iteration"`
	Total     int     `json:"total"`
	Model     string  `json:"model"`
	TimeTaken float64 `json:"time_taken"`
}

type Comparer struct {
	t5         *summarizer.Model
	bart       *summarizer.Model
	iterations int
}

func NewComparer(registry *summarizer.Registry, iterations int) *Comparer {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return &Comparer{
		t5:         registry.T5(),
		bart:       registry.BART(),
		iterations: iterations,
	}
}

func (c *Comparer) Iterations() int {
	return c.iterations
}

// Compare summarizes text with T5 then BART once per iteration and aggregates
// the timings. The first failure aborts the run. progress may be nil.
func (c *Comparer) Compare(ctx context.Context, text string, progress func(Progress)) (*Report, error) {
	log := logging.GetLogger()
	log.WithFields(logrus.Fields{
		"text_length": len(text),
		"iterations":  c.iterations,
	}).Info("Starting model comparison")

	models := []*summarizer.Model{c.t5, c.bart}
	samples := make(map[string][]float64, len(models))

	for i := 1; i <= c.iterations; i++ {
		log.Debugf("Iteration %d/%d", i, c.iterations)

		for _, m := range models {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			res, err := m.Summarize(ctx, text)
			if err != nil {
				return nil, err
			}
			samples[m.Key] = append(samples[m.Key], res.TimeTaken)

			if progress != nil {
				progress(Progress{Iteration: i, Total: c.iterations, Model: m.Label, TimeTaken: res.TimeTaken})
			}
		}
	}

	report := &Report{
		Iterations: c.iterations,
		Comparison: make(map[string]*Stats, len(models)),
	}
	for _, m := range models {
		stats, err := newStats(m, samples[m.Key])
		if err != nil {
			return nil, err
		}
		report.Comparison[m.Key] = stats

		log.WithFields(logrus.Fields{
			"model":        m.Label,
			"average_time": fmt.Sprintf("%.2fs", stats.AverageTime),
		}).Info("Comparison result")
	}

	return report, nil
}

func newStats(m *summarizer.Model, samples []float64) (*Stats, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples recorded for " + m.Label)
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	minTime, maxTime := slices.Min(samples), slices.Max(samples)

	// Rounding can push the mean a hair outside [min, max].
	avg := min(max(sum/float64(len(samples)), minTime), maxTime)

	return &Stats{
		AverageTime: avg,
		MinTime:     minTime,
		MaxTime:     maxTime,
		Samples:     samples,
		ModelSize:   m.ModelSize,
		Strengths:   m.Strengths,
		Parameters:  m.Profile,
	}, nil
}
