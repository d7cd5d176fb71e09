package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsapp-summarizer/internal/logging"
)

const (
	KeyBART = "bart"
	KeyT5   = "t5"
)

// ErrEmptyText is returned when the input has no non-whitespace content.
var ErrEmptyText = errors.New("no text provided")

// Generator runs the delegated seq2seq generation for a single input.
type Generator interface {
	Generate(ctx context.Context, input string) (string, error)
}

// Result is one timed summarization.
type Result struct {
	Summary   string
	TimeTaken float64 // seconds
}

// Model couples a generator with its label, profile and static metadata.
type Model struct {
	Key       string
	Label     string
	ModelSize string
	Strengths []string
	Profile   Profile

	generator Generator
	slots     chan struct{} // Token bucket
}

// NewBART builds the BART-large-CNN model around gen.
func NewBART(gen Generator, concurrency int) *Model {
	return newModel(KeyBART, "BART", "Large (400M parameters)", []string{
		"Better quality summaries",
		"More coherent output",
		"Better at handling longer texts",
		"More context-aware",
	}, BARTProfile, gen, concurrency)
}

// NewT5 builds the T5-base model around gen.
func NewT5(gen Generator, concurrency int) *Model {
	return newModel(KeyT5, "T5", "Base (220M parameters)", []string{
		"Faster inference time",
		"Smaller memory footprint",
		"Good for shorter texts",
		"More efficient for real-time applications",
	}, T5Profile, gen, concurrency)
}

func newModel(key, label, size string, strengths []string, profile Profile, gen Generator, concurrency int) *Model {
	if concurrency < 1 {
		concurrency = 1
	}
	slots := make(chan struct{}, concurrency)
	for i := 0; i < concurrency; i++ {
		slots <- struct{}{}
	}

	return &Model{
		Key:       key,
		Label:     label,
		ModelSize: size,
		Strengths: strengths,
		Profile:   profile,
		generator: gen,
		slots:     slots,
	}
}

// acquire blocks until an inference slot is free
func (m *Model) acquire(ctx context.Context) error {
	select {
	case <-m.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Model) release() {
	m.slots <- struct{}{}
}

// Summarize generates a summary of text and reports how long generation took.
func (m *Model) Summarize(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}

	if cut, truncated := truncateWords(text, m.Profile.InputWordBudget()); truncated {
		logging.GetLogger().WithFields(logrus.Fields{
			"model":     m.Label,
			"max_words": m.Profile.InputWordBudget(),
		}).Warn("Input truncated to model context")
		text = cut
	}

	if err := m.acquire(ctx); err != nil {
		return Result{}, err
	}
	defer m.release()

	start := time.Now()
	out, err := m.generator.Generate(ctx, m.Profile.Prefix+text)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return Result{}, fmt.Errorf("%s generation failed: %w", m.Label, err)
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return Result{}, fmt.Errorf("%s generation returned an empty summary", m.Label)
	}

	log := logging.GetLogger().WithFields(logrus.Fields{
		"model":      m.Label,
		"time_taken": fmt.Sprintf("%.2fs", elapsed),
	})
	log.Info("Summary generated")
	log.Debugf("Summary: %s", summary)

	return Result{Summary: summary, TimeTaken: elapsed}, nil
}
