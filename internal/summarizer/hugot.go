package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/backends"
	"github.com/knights-analytics/hugot/pipelines"

	"newsapp-summarizer/internal/logging"
)

// HugotGenerator runs generation on a hugot seq2seq pipeline (ONNX encoder/decoder export).
type HugotGenerator struct {
	pipeline *pipelines.Seq2SeqPipeline
}

func (g *HugotGenerator) Generate(ctx context.Context, input string) (string, error) {
	// RunPipeline is not cancellable, so check before starting.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := g.pipeline.RunPipeline([]string{input})
	if err != nil {
		return "", fmt.Errorf("run pipeline: %w", err)
	}
	if len(out.GeneratedTexts) == 0 || len(out.GeneratedTexts[0]) == 0 {
		return "", errors.New("pipeline returned no sequences")
	}

	return out.GeneratedTexts[0][0], nil
}

type LoadOptions struct {
	ModelsDir    string
	BARTPath     string
	T5Path       string
	BARTRepo     string
	T5Repo       string
	AutoDownload bool
	Sampling     bool
	Concurrency  int
}

// LoadRegistry opens one hugot session and builds the BART and T5 pipelines on it.
func LoadRegistry(ctx context.Context, opts LoadOptions) (*Registry, error) {
	log := logging.GetLogger()

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	bartGen, err := loadGenerator(ctx, session, "bart-large-cnn", opts.BARTPath, opts.BARTRepo, BARTProfile, opts)
	if err != nil {
		session.Destroy()
		return nil, err
	}
	log.WithField("path", opts.BARTPath).Info("BART model loaded")

	t5Gen, err := loadGenerator(ctx, session, "t5-base", opts.T5Path, opts.T5Repo, T5Profile, opts)
	if err != nil {
		session.Destroy()
		return nil, err
	}
	log.WithField("path", opts.T5Path).Info("T5 model loaded")

	registry := NewRegistry(NewBART(bartGen, opts.Concurrency), NewT5(t5Gen, opts.Concurrency))
	registry.closer = session.Destroy
	return registry, nil
}

func loadGenerator(
	ctx context.Context,
	session *hugot.Session,
	name, path, repo string,
	profile Profile,
	opts LoadOptions,
) (*HugotGenerator, error) {
	modelPath, err := ensureModel(ctx, path, repo, opts.ModelsDir, opts.AutoDownload)
	if err != nil {
		return nil, err
	}

	pipeline, err := hugot.NewPipeline(session, hugot.Seq2SeqConfig{
		ModelPath: modelPath,
		Name:      name,
		Options:   pipelineOptions(profile, opts.Sampling),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", name, err)
	}

	return &HugotGenerator{pipeline: pipeline}, nil
}

// pipelineOptions maps the parts of a profile that the hugot pipeline accepts.
// Beam search settings are not exposed by hugot; decoding is greedy unless
// sampling is switched on.
func pipelineOptions(p Profile, sampling bool) []backends.PipelineOption[*pipelines.Seq2SeqPipeline] {
	opts := []backends.PipelineOption[*pipelines.Seq2SeqPipeline]{
		pipelines.WithSeq2SeqMaxTokens(p.MaxLength),
	}
	if sampling {
		opts = append(opts, pipelines.WithSampling(p.TopP, p.Temperature))
	}
	return opts
}

func ensureModel(ctx context.Context, path, repo, modelsDir string, autoDownload bool) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat model %s: %w", path, err)
	}

	if !autoDownload {
		return "", fmt.Errorf("model not found at %s (set MODEL_AUTO_DOWNLOAD=true to fetch %s)", path, repo)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	logging.GetLogger().WithField("repo", repo).Info("Downloading model")
	downloaded, err := hugot.DownloadModel(repo, modelsDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", repo, err)
	}
	return downloaded, nil
}
