package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/stargraph/internal/dataset"
	"github.com/agenthands/stargraph/internal/driver"
	"github.com/agenthands/stargraph/internal/logger"
)

func (a *app) exportCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dataset into Memgraph or Neo4j",
		RunE: func(cmd *cobra.Command, args []string) error {
			graphs, err := dataset.Load(data)
			if err != nil {
				return err
			}
			defer logger.Timed(a.log, "export")()

			d, err := driver.NewMemgraphDriver(cmd.Context(), a.cfg.Memgraph, a.log)
			if err != nil {
				return err
			}
			defer d.Close(cmd.Context())
			if err := d.BuildIndices(cmd.Context()); err != nil {
				return err
			}

			ids, err := driver.NewExporter(d, a.log).ExportAll(cmd.Context(), graphs)
			if err != nil {
				return err
			}
			for i, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "dataset JSON path")
	cmd.Flags().String("uri", "bolt://localhost:7687", "Bolt URI")
	cmd.Flags().String("user", "", "database user")
	cmd.Flags().String("password", "", "database password")
	_ = cmd.MarkFlagRequired("data")

	a.bind(cmd, "memgraph.uri", "uri")
	a.bind(cmd, "memgraph.user", "user")
	a.bind(cmd, "memgraph.password", "password")
	return cmd
}
