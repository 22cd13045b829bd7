// Command ripd runs a single RIPv2 routing daemon instance. Multiple
// instances can run concurrently on one host, differentiated by their
// configured input ports (spec.md §1).
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ripd/internal/clock"
	"ripd/internal/config"
	"ripd/internal/router"
	"ripd/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to the router configuration file")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	if *configPath == "" {
		log.Fatal("missing required -config flag")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	entry = entry.WithField("router_id", cfg.RouterID)
	entry.Info("starting ripd")

	mux, err := transport.NewUDP(cfg.InputPorts, entry)
	if err != nil {
		log.WithError(err).Fatal("failed to bind input ports")
	}
	defer mux.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := clock.NewEngine(cfg.Timers, rng)

	rt := router.New(cfg.RouterID, cfg.Neighbors, engine, mux, entry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		entry.Info("received termination signal, exiting")
		cancel()
	}()

	if err := rt.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("event loop exited unexpectedly")
	}
}
