package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strata-ecs/strata/internal/core/observability/log"
	"github.com/strata-ecs/strata/internal/core/world"
	"github.com/strata-ecs/strata/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML world config")
		addr       = flag.String("addr", "127.0.0.1:8637", "inspector listen address")
	)
	flag.Parse()

	cfg := &world.Config{}
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open config:", err)
			os.Exit(1)
		}
		cfg, err = world.LoadYAML(f)
		_ = f.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))
	w, err := cfg.Build(world.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, "build world:", err)
		os.Exit(1)
	}

	inspector := server.NewInspector(w, logger)
	if err := inspector.Start(*addr); err != nil {
		fmt.Fprintln(os.Stderr, "start inspector:", err)
		os.Exit(1)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := inspector.Stop(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "stop inspector:", err)
	}
}
