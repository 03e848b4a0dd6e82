package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/kuadrant/ddns-operator/internal/config"
	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/engine"
	"github.com/kuadrant/ddns-operator/internal/registry"
)

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger(verbose)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return ddnserr.Config("%v", err)
	}

	src, err := registry.BuildIpSource(cfg.IpSource, log.WithName("ipsource"))
	if err != nil {
		return ddnserr.Config("building ip source: %v", err)
	}
	provider, err := registry.BuildProvider(cfg.Provider, log.WithName("provider"))
	if err != nil {
		return ddnserr.Config("building dns provider: %v", err)
	}
	store, err := registry.BuildStateStore(cfg.StateStore)
	if err != nil {
		return ddnserr.Config("building state store: %v", err)
	}

	eng, err := engine.New(src, provider, store, cfg.Records, cfg.Engine, log.WithName("engine"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go serveMetrics(log)
	go logEvents(log, eng)

	log.Info("starting ddnsd", "records", len(cfg.Records))
	if err := eng.Run(ctx); err != nil {
		return ddnserr.Other("engine", err)
	}
	log.Info("ddnsd stopped cleanly")
	return nil
}

func logEvents(log logr.Logger, eng *engine.Engine) {
	for event := range eng.Events() {
		log.Info("engine event", "kind", event.Kind, "record", event.Record)
	}
}
