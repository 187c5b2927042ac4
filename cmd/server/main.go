// Package main - Entry point for the estimation API server
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vdi-cost/api"
	"vdi-cost/core/catalog"
	"vdi-cost/core/engine"
	"vdi-cost/db"
	"vdi-cost/db/feed"
	"vdi-cost/internal/config"
	"vdi-cost/internal/logging"
)

const version = "1.0.0"

func main() {
	cfgFile := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg := config.Get()
	if *cfgFile != "" {
		loaded, err := config.Load(*cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(loaded)
		cfg = loaded
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logger := logging.Logger
	sizingCfg := cfg.Sizing

	var (
		prices    api.PriceStore
		writer    catalog.Writer
		scenarios db.ScenarioStore
	)

	if dsn := cfg.DatabaseURL(); dsn != "" {
		store, err := db.NewStore(dsn)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer store.Close()
		prices = store
		writer = store
		scenarios = store
	} else {
		// Without a database everything lives in memory and is lost on
		// restart; fine for local evaluation, not for real deployments.
		logger.Warn("no database configured, using in-memory stores")
		mem := catalog.NewMemory()
		prices = mem
		writer = mem
		scenarios = db.NewMemoryScenarioStore()
	}

	eng := engine.New(prices, sizingCfg, logger)
	refresher := feed.NewRefresher(
		feed.NewClient(logger), writer, sizingCfg,
		cfg.Refresh.Regions, cfg.Refresh.Concurrency, logger)

	server := api.NewServer(api.Options{
		Version:   version,
		Engine:    eng,
		Prices:    prices,
		Scenarios: scenarios,
		Refresher: refresher,
		Logger:    logger,
	})

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	if err := server.ListenAndServe(listenAddr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
