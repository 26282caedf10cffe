package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/config"
	"github.com/agenthands/stargraph/internal/core/extraction"
	"github.com/agenthands/stargraph/internal/core/graph"
	"github.com/agenthands/stargraph/internal/core/model"
	"github.com/agenthands/stargraph/internal/llm"
	"github.com/agenthands/stargraph/internal/metrics"
)

// Evaluator asks a model for the latest entity of every relation type and
// records each prediction in a results CSV.
type Evaluator struct {
	Answerer  llm.Answerer
	Extractor *extraction.AnswerExtractor
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	Rand      *rand.Rand

	cfg      config.EvalConfig
	strategy graph.Strategy
}

// NewEvaluator checks cfg up front. With a nil m the outcome counters are
// kept but never registered, which suits one-shot runs.
func NewEvaluator(answerer llm.Answerer, cfg config.EvalConfig, m *metrics.Metrics, log *zap.Logger) (*Evaluator, error) {
	strategy, err := graph.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBatchSize, cfg.BatchSize)
	}
	extractor, err := extraction.NewAnswerExtractor(cfg.AnswerPattern)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{
		Answerer:  answerer,
		Extractor: extractor,
		Metrics:   m,
		Log:       log,
		cfg:       cfg,
		strategy:  strategy,
	}, nil
}

// Run evaluates graphs batch by batch. The first StartBatch batches are
// skipped so an interrupted run can resume against the same results file.
func (e *Evaluator) Run(ctx context.Context, graphs []*graph.StarGraph) (model.Summary, error) {
	summary := model.Summary{
		RunID: uuid.New().String(),
		Total: TotalInstances(graphs, e.cfg.NGraphs, e.cfg.NInstances),
	}
	log := e.Log.With(zap.String("run_id", summary.RunID))
	totalBatches := (summary.Total + e.cfg.BatchSize - 1) / e.cfg.BatchSize
	log.Info("starting evaluation",
		zap.Int("instances", summary.Total),
		zap.Int("batches", totalBatches),
		zap.Int("start_batch", e.cfg.StartBatch),
		zap.String("strategy", e.strategy.String()))

	instances, err := Instances(graphs, InstanceOptions{
		Strategy:   e.strategy,
		NGraphs:    e.cfg.NGraphs,
		NInstances: e.cfg.NInstances,
	}, e.Rand)
	if err != nil {
		return summary, err
	}
	batches, err := Batches(instances, e.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	out, err := openResults(e.cfg.ResultsPath)
	if err != nil {
		return summary, err
	}
	defer out.Close()
	w := csv.NewWriter(out)

	for i, batch := range batches {
		if i < e.cfg.StartBatch {
			summary.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		results, err := e.evaluateBatch(ctx, batch)
		if err != nil {
			return summary, fmt.Errorf("batch %d: %w", i, err)
		}
		for _, r := range results {
			if err := w.Write(r.Row()); err != nil {
				return summary, fmt.Errorf("failed to write results: %w", err)
			}
			summary.Instances++
			switch {
			case r.Predicted == "":
				summary.Empty++
				e.Metrics.EvalInstances.WithLabelValues(metrics.OutcomeEmpty).Inc()
			case r.Correct():
				summary.Correct++
				e.Metrics.EvalInstances.WithLabelValues(metrics.OutcomeCorrect).Inc()
			default:
				e.Metrics.EvalInstances.WithLabelValues(metrics.OutcomeWrong).Inc()
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return summary, fmt.Errorf("failed to write results: %w", err)
		}
		log.Debug("batch evaluated",
			zap.Int("batch", i+1),
			zap.Int("of", totalBatches),
			zap.Int("size", len(batch)))
	}

	if summary.Instances > 0 {
		summary.Accuracy = float64(summary.Correct) / float64(summary.Instances)
	}
	log.Info("evaluation finished",
		zap.Int("instances", summary.Instances),
		zap.Int("correct", summary.Correct),
		zap.Int("empty", summary.Empty),
		zap.Float64("accuracy", summary.Accuracy))
	return summary, nil
}

func (e *Evaluator) evaluateBatch(ctx context.Context, batch []model.Instance) ([]model.Result, error) {
	requests := make([]model.QARequest, len(batch))
	for i, inst := range batch {
		requests[i] = model.QARequest{
			Context:  fmt.Sprintf(e.cfg.ContextTemplate, inst.Context),
			Question: fmt.Sprintf(e.cfg.QuestionTemplate, inst.RelationName),
		}
	}

	start := time.Now()
	responses, err := e.Answerer.Answer(ctx, requests)
	e.Metrics.AnswerBatch.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if len(responses) != len(batch) {
		return nil, fmt.Errorf("%w: got %d, want %d", llm.ErrBatchSize, len(responses), len(batch))
	}

	results := make([]model.Result, len(batch))
	for i, inst := range batch {
		results[i] = model.Result{
			GraphID:   inst.GraphID,
			RelName:   inst.RelationName,
			Expected:  inst.TargetEntity,
			Predicted: e.Extractor.Extract(responses[i].Answer),
		}
	}
	return results, nil
}

// openResults opens path for appending and writes the header when the
// file is new or empty.
func openResults(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(model.ResultHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write results header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write results header: %w", err)
		}
	}
	return f, nil
}
