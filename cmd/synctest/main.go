package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rcuhashlist/internal/config"
	"rcuhashlist/internal/driver"
	"rcuhashlist/internal/htm"
	"rcuhashlist/internal/logger"
	zapfactory "rcuhashlist/internal/logger/zap"
	"rcuhashlist/internal/numa"
	"rcuhashlist/internal/report"
	"rcuhashlist/internal/telemetry"
	"rcuhashlist/internal/trace"
)

var defaultConfigPath = "config/synctest/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()

	topo := numa.Discover()
	allowedCPUs, err := numa.AllowedCPUs()
	availableCPUs := len(allowedCPUs)
	if err != nil {
		availableCPUs = 0
	}
	if err := cfg.Validate(availableCPUs); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewZapAdapter(zapLog)
	} else {
		lgr = &logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	var w report.Writer
	if cfg.CSV.Enabled {
		w, err = report.NewCSVWriter(cfg.CSV.Path)
		if err != nil {
			lgr.Error("failed to initialize CSV writer", logger.F("err", err))
			return
		}
	} else {
		w = report.NopWriter{}
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		lgr.Warn("received termination signal", logger.F("signal", sig.String()))
		cancel()
	}()

	ctx, runID := trace.AttachRunID(ctx)
	shutdown := telemetry.InitTracer(cfg.Tracing, runID)
	defer func() { _ = shutdown(context.Background()) }()
	lgr = lgr.Named("synctest").With(logger.F("run_id", runID))

	d := driver.New(cfg, lgr, topo, w)

	start := time.Now()
	result, err := d.Run(ctx)
	if err != nil {
		lgr.Error("benchmark run failed", logger.F("err", err))
		os.Exit(1)
	}

	lgr.Info("run finished", logger.F("elapsed", time.Since(start)))
	log.Println(result.Protocol, "threads:", result.ThreadsNb,
		"issued:", result.IssuedOps, "success:", result.SuccessOps,
		"final_size:", result.FinalSize)
	fmt.Print(htm.Report(uint64(result.DurationMs), result.IssuedOps, result.SuccessOps, result.UpdateOps))
}
