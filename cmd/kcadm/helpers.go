package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giulio1979/kafka-connect-admin/internal/events"
	"github.com/giulio1979/kafka-connect-admin/internal/logger"
	"github.com/giulio1979/kafka-connect-admin/pkg/config"
	"github.com/giulio1979/kafka-connect-admin/pkg/replicator"
	"github.com/giulio1979/kafka-connect-admin/pkg/schemareg"
)

func buildLogger(cmd *cobra.Command) (*zap.SugaredLogger, error) {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	return logger.New(verbose)
}

func registryClient(cmd *cobra.Command) (schemareg.Client, error) {
	r, err := config.Resolve(cmd)
	if err != nil {
		return nil, err
	}
	if r.RegistryURL == "" {
		return nil, fmt.Errorf("registry URL not set (flag/env/config)")
	}
	var opts []schemareg.Option
	if r.Token != "" {
		opts = append(opts, schemareg.WithToken(r.Token))
	}
	return schemareg.NewHTTP(r.RegistryURL, opts...), nil
}

func registryClientFor(prof config.Resolved) schemareg.Client {
	var opts []schemareg.Option
	if prof.Token != "" {
		opts = append(opts, schemareg.WithToken(prof.Token))
	}
	return schemareg.NewHTTP(prof.RegistryURL, opts...)
}

// buildSink assembles the trail event dispatcher from --events-config.
// The returned flush func drains in-flight deliveries and must run before
// the command returns, or trailing events die with the process.
func buildSink(cmd *cobra.Command) (events.Sink, func(), error) {
	noop := func() {}
	path, _ := cmd.Root().PersistentFlags().GetString("events-config")
	if path == "" {
		return nil, noop, nil
	}
	cfg, err := events.LoadConfig(path)
	if err != nil {
		return nil, noop, err
	}
	sinks, err := events.BuildSinks(cfg)
	if err != nil {
		return nil, noop, err
	}
	if len(sinks) == 0 {
		return nil, noop, nil
	}
	d := events.NewDispatcher(cfg, sinks...)
	flush := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = d.Close(ctx)
	}
	return d, flush, nil
}

func buildReplicator(cmd *cobra.Command, log *zap.SugaredLogger) (*replicator.Replicator, func(), error) {
	sink, flush, err := buildSink(cmd)
	if err != nil {
		return nil, flush, err
	}
	return replicator.New(replicator.Config{Logger: log, Sink: sink}), flush, nil
}

// serveMetrics exposes the default prometheus registry on --metrics-addr
// for the duration of the command. No-op when the flag is unset.
func serveMetrics(cmd *cobra.Command, log *zap.SugaredLogger) {
	addr, _ := cmd.Root().PersistentFlags().GetString("metrics-addr")
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warnw("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func outputFormat(cmd *cobra.Command) string {
	out, _ := cmd.Root().PersistentFlags().GetString("output")
	return out
}

func fatalUsage(cmd *cobra.Command, msg string) error {
	fmt.Fprintln(os.Stderr, msg)
	return cmd.Usage()
}
