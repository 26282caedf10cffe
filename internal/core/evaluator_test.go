package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/stargraph/internal/config"
	"github.com/agenthands/stargraph/internal/core/model"
	"github.com/agenthands/stargraph/internal/metrics"
)

func evalConfig(t *testing.T) config.EvalConfig {
	t.Helper()
	cfg := config.Default().Eval
	cfg.ResultsPath = filepath.Join(t.TempDir(), "out", "results.csv")
	return cfg
}

// oracle answers with the entity of the matching relation type.
func oracle(answers map[string]string) func(model.QARequest) string {
	return func(req model.QARequest) string {
		for rel, entity := range answers {
			if strings.Contains(req.Question, "relation "+rel+"?") {
				return "The answer is " + entity + "."
			}
		}
		return "I don't know"
	}
}

func TestEvaluator_Run(t *testing.T) {
	cfg := evalConfig(t)
	cfg.BatchSize = 2
	mock := &MockAnswerer{Respond: oracle(map[string]string{"r0": "e2", "r1": "e1"})}
	m := metrics.New(nil)

	ev, err := NewEvaluator(mock, cfg, m, nil)
	require.NoError(t, err)

	summary, err := ev.Run(context.Background(), loadFixture(t))
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Instances)
	assert.Equal(t, 1, summary.Correct)
	assert.Equal(t, 1, summary.Empty)
	assert.InDelta(t, 1.0/3.0, summary.Accuracy, 1e-9)

	require.Len(t, mock.Requests, 2)
	first := mock.Requests[0][0]
	assert.True(t, strings.HasPrefix(first.Context, "The following is a set of temporal facts."))
	assert.Contains(t, first.Context, "Relation r0 with e2 in time interval 2005-04-15 to 2009-03-02")
	assert.Equal(t, "What is the entity with the latest relation r0? Answer just with the entity name.", first.Question)

	data, err := os.ReadFile(cfg.ResultsPath)
	require.NoError(t, err)
	assert.Equal(t, "graph_id,rel_name,expected,predicted\n"+
		"0,r0,e2,e2\n"+
		"0,r1,e3,e1\n"+
		"1,r2,e7,\n", string(data))

	assert.InDelta(t, 1, testutil.ToFloat64(m.EvalInstances.WithLabelValues(metrics.OutcomeCorrect)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EvalInstances.WithLabelValues(metrics.OutcomeWrong)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EvalInstances.WithLabelValues(metrics.OutcomeEmpty)), 1e-9)
}

func TestEvaluator_ResumeAppends(t *testing.T) {
	cfg := evalConfig(t)
	graphs := loadFixture(t)

	ev, err := NewEvaluator(&MockAnswerer{Respond: oracle(map[string]string{"r0": "e2"})}, cfg, nil, nil)
	require.NoError(t, err)
	_, err = ev.Run(context.Background(), graphs)
	require.NoError(t, err)

	cfg.StartBatch = 2
	mock := &MockAnswerer{Respond: oracle(map[string]string{"r2": "e7"})}
	resumed, err := NewEvaluator(mock, cfg, nil, nil)
	require.NoError(t, err)
	summary, err := resumed.Run(context.Background(), graphs)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 3, summary.Total, "the total covers skipped batches")
	assert.Equal(t, 1, summary.Instances)
	assert.Equal(t, 1, summary.Correct)
	require.Len(t, mock.Requests, 1)

	data, err := os.ReadFile(cfg.ResultsPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "graph_id,rel_name,expected,predicted", lines[0])
	assert.Equal(t, "1,r2,e7,e7", lines[4])
}

func TestEvaluator_JSONAnswer(t *testing.T) {
	cfg := evalConfig(t)
	cfg.NInstances = 1
	mock := &MockAnswerer{ResponseQueue: []string{`{"answer": "e2", "reason": "e9 ended earlier"}`}}
	ev, err := NewEvaluator(mock, cfg, nil, nil)
	require.NoError(t, err)

	summary, err := ev.Run(context.Background(), loadFixture(t))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Correct)
}

func TestEvaluator_AnswererError(t *testing.T) {
	boom := errors.New("boom")
	ev, err := NewEvaluator(&MockAnswerer{Err: boom}, evalConfig(t), nil, nil)
	require.NoError(t, err)

	_, err = ev.Run(context.Background(), loadFixture(t))
	assert.ErrorIs(t, err, boom)
}

func TestEvaluator_Cancelled(t *testing.T) {
	ev, err := NewEvaluator(&MockAnswerer{}, evalConfig(t), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ev.Run(ctx, loadFixture(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEvaluator_InvalidConfig(t *testing.T) {
	cfg := evalConfig(t)
	cfg.Strategy = "alphabetical"
	_, err := NewEvaluator(&MockAnswerer{}, cfg, nil, nil)
	assert.Error(t, err)

	cfg = evalConfig(t)
	cfg.AnswerPattern = "e[0-9"
	_, err = NewEvaluator(&MockAnswerer{}, cfg, nil, nil)
	assert.Error(t, err)

	cfg = evalConfig(t)
	cfg.BatchSize = 0
	_, err = NewEvaluator(&MockAnswerer{}, cfg, nil, nil)
	assert.ErrorIs(t, err, ErrBatchSize)
}

func TestOpenResults_HeaderWriteFails(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	_, err := openResults("/dev/full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results header")
}

func TestOpenResults_KeepsExistingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	for i := 0; i < 2; i++ {
		f, err := openResults(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "graph_id,rel_name,expected,predicted\n", string(data))
}
