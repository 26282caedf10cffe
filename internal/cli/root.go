// Package cli holds the stargraph command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/config"
	"github.com/agenthands/stargraph/internal/logger"
)

// app carries the state shared by every subcommand. Flags and STARGRAPH_*
// environment variables are layered over the TOML config through viper.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log *zap.Logger
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("stargraph")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "stargraph",
		Short: "Temporal star-graph datasets and latest-relation evaluation",
		Long: `stargraph generates datasets of temporal star graphs, renders them as
natural-language facts, and evaluates how well a language model finds the
entity with the latest relation of each type.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().String("config", "config/config.toml", "TOML config file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("dev", false, "human-readable development logging")
	a.bind(root, "config", "config")
	a.bind(root, "log.level", "log-level")
	a.bind(root, "log.development", "dev")

	root.AddCommand(
		a.generateCmd(),
		a.renderCmd(),
		a.statsCmd(),
		a.evalCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) bind(cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

func (a *app) init() error {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(a.v.GetString("config"))
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	a.overlay(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// overlay copies every flag or environment value that was explicitly set.
func (a *app) overlay(cfg *config.Config) {
	setString(a.v, "log.level", &cfg.Log.Level)
	setBool(a.v, "log.development", &cfg.Log.Development)

	setInt(a.v, "generate.entities", &cfg.Generate.Entities)
	setInt(a.v, "generate.relations", &cfg.Generate.Relations)
	setInt(a.v, "generate.start_year", &cfg.Generate.StartYear)
	setInt(a.v, "generate.end_year", &cfg.Generate.EndYear)
	setInt(a.v, "generate.n_graphs", &cfg.Generate.NGraphs)
	if a.v.IsSet("generate.seed") {
		seed := a.v.GetUint64("generate.seed")
		cfg.Generate.Seed = &seed
	}

	setString(a.v, "eval.dataset", &cfg.Eval.Dataset)
	setString(a.v, "eval.strategy", &cfg.Eval.Strategy)
	setInt(a.v, "eval.batch_size", &cfg.Eval.BatchSize)
	setInt(a.v, "eval.n_graphs", &cfg.Eval.NGraphs)
	setInt(a.v, "eval.n_instances", &cfg.Eval.NInstances)
	setInt(a.v, "eval.start_batch", &cfg.Eval.StartBatch)
	setString(a.v, "eval.results_path", &cfg.Eval.ResultsPath)

	setString(a.v, "llm.provider", &cfg.LLM.Provider)
	setString(a.v, "llm.model", &cfg.LLM.Model)
	setString(a.v, "llm.base_url", &cfg.LLM.BaseURL)
	setString(a.v, "cache.dir", &cfg.Cache.Dir)

	setString(a.v, "memgraph.uri", &cfg.Memgraph.URI)
	setString(a.v, "memgraph.user", &cfg.Memgraph.User)
	setString(a.v, "memgraph.password", &cfg.Memgraph.Password)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}
