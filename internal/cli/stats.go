package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/dataset"
)

func (a *app) statsCmd() *cobra.Command {
	var (
		data   string
		saveTo string
		format string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-graph node and relation counts of a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			graphs, err := dataset.Load(data)
			if err != nil {
				return err
			}
			stats := dataset.Stats(graphs)

			switch format {
			case "csv":
				if saveTo == "" {
					return dataset.WriteStatsCSV(cmd.OutOrStdout(), stats)
				}
				f, err := os.Create(saveTo)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := dataset.WriteStatsCSV(f, stats); err != nil {
					return err
				}
			case "parquet":
				if saveTo == "" {
					return fmt.Errorf("--save-to is required for parquet output")
				}
				if err := dataset.WriteStatsParquet(saveTo, stats); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q: use csv or parquet", format)
			}
			a.log.Info("stats written", zap.String("path", saveTo), zap.Int("graphs", len(stats)))
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "dataset JSON path")
	cmd.Flags().StringVar(&saveTo, "save-to", "", "output path (default: CSV on stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or parquet")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
