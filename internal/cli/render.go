package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/stargraph/internal/core/graph"
	"github.com/agenthands/stargraph/internal/dataset"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		data     string
		index    int
		strategy string
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print one graph of a dataset as facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := graph.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			graphs, err := dataset.Load(data)
			if err != nil {
				return err
			}
			if index < 0 || index >= len(graphs) {
				return fmt.Errorf("graph %d out of range: dataset has %d graphs", index, len(graphs))
			}

			var seedPtr *uint64
			if cmd.Flags().Changed("seed") {
				seedPtr = &seed
			}
			text, err := graphs[index].RenderText(s, graph.NewRand(seedPtr))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "dataset JSON path")
	cmd.Flags().IntVar(&index, "graph", 0, "index of the graph to render")
	cmd.Flags().StringVar(&strategy, "strategy", graph.AsIs.String(), "as_is, shuffle, interleave_asc, interleave_desc or latest")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for shuffle")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
