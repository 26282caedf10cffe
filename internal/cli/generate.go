package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/core/graph"
	"github.com/agenthands/stargraph/internal/dataset"
	"github.com/agenthands/stargraph/internal/logger"
)

func (a *app) generateCmd() *cobra.Command {
	var (
		saveTo     string
		printFacts bool
		strategy   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset of random temporal star graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if saveTo == "" && !printFacts {
				return fmt.Errorf("nothing to do: pass --save-to, --print or both")
			}
			s, err := graph.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			defer logger.Timed(a.log, "generate")()

			rng := graph.NewRand(a.cfg.Generate.Seed)
			graphs, err := dataset.Generate(dataset.OptionsFromConfig(a.cfg.Generate), rng, a.log)
			if err != nil {
				return err
			}

			if saveTo != "" {
				if err := dataset.Save(saveTo, graphs); err != nil {
					return err
				}
				a.log.Info("dataset saved", zap.String("path", saveTo), zap.Int("graphs", len(graphs)))
			}
			if printFacts {
				out := cmd.OutOrStdout()
				for i, g := range graphs {
					text, err := g.RenderText(s, rng)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "# graph %d\n%s\n\n", i, text)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("entities", 10, "number of entities e1..eN")
	cmd.Flags().Int("relations", 4, "number of relation types r0..r(M-1)")
	cmd.Flags().Int("start-year", 2000, "first year an interval may use")
	cmd.Flags().Int("end-year", 2025, "year intervals must end before")
	cmd.Flags().Int("n-graphs", 1, "number of graphs to generate")
	cmd.Flags().Uint64("seed", 0, "random seed (default: fresh entropy)")
	cmd.Flags().StringVar(&saveTo, "save-to", "", "dataset JSON path")
	cmd.Flags().BoolVar(&printFacts, "print", false, "print each graph's facts")
	cmd.Flags().StringVar(&strategy, "strategy", graph.AsIs.String(), "ordering of printed facts")

	a.bind(cmd, "generate.entities", "entities")
	a.bind(cmd, "generate.relations", "relations")
	a.bind(cmd, "generate.start_year", "start-year")
	a.bind(cmd, "generate.end_year", "end-year")
	a.bind(cmd, "generate.n_graphs", "n-graphs")
	a.bind(cmd, "generate.seed", "seed")
	return cmd
}
