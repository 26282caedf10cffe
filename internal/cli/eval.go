package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/core"
	"github.com/agenthands/stargraph/internal/dataset"
	"github.com/agenthands/stargraph/internal/llm"
	"github.com/agenthands/stargraph/internal/logger"
)

func (a *app) evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Ask a model for the latest entity of every relation type",
		Long: `eval renders each graph of a dataset, asks the configured model which entity
holds the latest relation of each type, and appends one CSV row per question
to the results file. Use --start-batch to resume an interrupted run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cfg.Eval.Dataset == "" {
				return fmt.Errorf("--data is required")
			}
			defer logger.Timed(a.log, "eval")()

			graphs, err := dataset.Load(cfg.Eval.Dataset)
			if err != nil {
				return err
			}

			answerer, closeFn, err := llm.NewAnswerer(cmd.Context(), cfg, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					a.log.Warn("failed to release answerer", zap.Error(err))
				}
			}()

			ev, err := core.NewEvaluator(answerer, cfg.Eval, nil, a.log)
			if err != nil {
				return err
			}
			summary, err := ev.Run(cmd.Context(), graphs)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().String("data", "", "dataset JSON path")
	cmd.Flags().String("strategy", "as_is", "as_is, shuffle, interleave_asc, interleave_desc or latest")
	cmd.Flags().Int("batch-size", 1, "questions per model call")
	cmd.Flags().Int("n-graphs", -1, "graphs to evaluate (-1: all)")
	cmd.Flags().Int("n-instances", -1, "questions to evaluate (-1: all)")
	cmd.Flags().Int("start-batch", 0, "batches to skip when resuming")
	cmd.Flags().String("results", "results.csv", "results CSV path")
	cmd.Flags().String("provider", "local", "openai, local, ollama, claude, gemini or hf_qa")
	cmd.Flags().String("model", "", "model name")
	cmd.Flags().String("url", "http://localhost:8000/v1", "model endpoint")
	cmd.Flags().String("cache-dir", "", "answer cache directory (default: no cache)")

	a.bind(cmd, "eval.dataset", "data")
	a.bind(cmd, "eval.strategy", "strategy")
	a.bind(cmd, "eval.batch_size", "batch-size")
	a.bind(cmd, "eval.n_graphs", "n-graphs")
	a.bind(cmd, "eval.n_instances", "n-instances")
	a.bind(cmd, "eval.start_batch", "start-batch")
	a.bind(cmd, "eval.results_path", "results")
	a.bind(cmd, "llm.provider", "provider")
	a.bind(cmd, "llm.model", "model")
	a.bind(cmd, "llm.base_url", "url")
	a.bind(cmd, "cache.dir", "cache-dir")
	return cmd
}
