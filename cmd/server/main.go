package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/config"
	"github.com/agenthands/stargraph/internal/driver"
	"github.com/agenthands/stargraph/internal/logger"
	"github.com/agenthands/stargraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	// The API works without a graph database; only /graphs/export needs one.
	var exporter *driver.Exporter
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph, zl)
	cancel()
	if err != nil {
		zl.Warn("graph database unavailable, export disabled", zap.Error(err))
	} else {
		defer d.Close(context.Background())
		if err := d.BuildIndices(context.Background()); err != nil {
			zl.Warn("failed to build indices", zap.Error(err))
		}
		exporter = driver.NewExporter(d, zl)
	}

	srv := server.NewServer(zl, exporter)
	r := srv.SetupRouter()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zl.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
