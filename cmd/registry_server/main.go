package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/markeluno8-dev/AuthentiEats/cmd/flags"
	"github.com/markeluno8-dev/AuthentiEats/events"
	"github.com/markeluno8-dev/AuthentiEats/httpserver"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
	"github.com/markeluno8-dev/AuthentiEats/metrics"
	"github.com/markeluno8-dev/AuthentiEats/registry"
	"github.com/markeluno8-dev/AuthentiEats/storage"
)

var listenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var snapshotOnShutdownFlag = &cli.BoolFlag{
	Name:  "snapshot-on-shutdown",
	Value: true,
	Usage: "save a snapshot to the snapshot store before shutting down",
}

func main() {
	app := &cli.App{
		Name:  "registry-server",
		Usage: "Serve the product registry API",
		Flags: append([]cli.Flag{
			listenAddrFlag,
			flags.AdminFlag,
			flags.SnapshotURIFlag,
			flags.RestoreFlag,
			flags.RequireSignaturesFlag,
			flags.ExternalSequenceFlag,
			snapshotOnShutdownFlag,
			flags.LogServiceFlagFn("registry-server"),
		}, flags.CommonFlags...),
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	admin, err := interfaces.NewIdentityFromHex(cCtx.String(flags.AdminFlag.Name))
	if err != nil {
		logger.Error("Could not parse admin identity", "err", err)
		return err
	}

	var snapshots interfaces.SnapshotStore
	if uri := cCtx.String(flags.SnapshotURIFlag.Name); uri != "" {
		snapshots, err = storage.NewStoreFactory(logger).SnapshotStoreFor(uri)
		if err != nil {
			logger.Error("Could not create snapshot store", "err", err)
			return err
		}
		logger.Info("Snapshot store configured", "backend", snapshots.Name(), "uri", snapshots.LocationURI())
	}

	sink := events.NewLogSink(logger)
	sequencer := registry.NewSequencer(0)

	reg, err := bootRegistry(cCtx, logger, admin, sequencer, sink, snapshots)
	if err != nil {
		return err
	}

	handler := httpserver.NewHandler(&httpserver.HandlerConfig{
		Registry:          reg,
		Sequencer:         sequencer,
		Snapshotter:       reg,
		Snapshots:         snapshots,
		RequireSignatures: cCtx.Bool(flags.RequireSignaturesFlag.Name),
		ExternalSequence:  cCtx.Bool(flags.ExternalSequenceFlag.Name),
		Log:               logger,
	})

	cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(listenAddrFlag.Name))
	server, err := httpserver.New(cfg, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server", "admin", admin.String())
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	if snapshots != nil && cCtx.Bool(snapshotOnShutdownFlag.Name) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		id, err := snapshots.Save(ctx, reg.Snapshot())
		if err != nil {
			logger.Error("Failed to save shutdown snapshot", "err", err)
		} else {
			metrics.SnapshotsSaved.Inc()
			logger.Info("Shutdown snapshot saved", "id", string(id), "backend", snapshots.Name())
		}
	}

	server.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}

// bootRegistry creates a fresh registry, or restores one from the snapshot
// store when --restore is given.
func bootRegistry(cCtx *cli.Context, logger *slog.Logger, admin interfaces.Identity, sequencer *registry.Sequencer, sink interfaces.EventSink, snapshots interfaces.SnapshotStore) (*registry.Registry, error) {
	restore := cCtx.String(flags.RestoreFlag.Name)
	if restore == "" {
		return registry.New(admin, sequencer, sink, logger)
	}
	if snapshots == nil {
		return nil, fmt.Errorf("--restore requires --snapshot-uri")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id := interfaces.SnapshotID(restore)
	if restore == "latest" {
		latest, err := snapshots.Latest(ctx)
		if err != nil {
			logger.Error("Could not resolve latest snapshot", "err", err)
			return nil, err
		}
		id = latest
	}

	snap, err := snapshots.Load(ctx, id)
	if err != nil {
		logger.Error("Could not load snapshot", "id", string(id), "err", err)
		return nil, err
	}

	sequencer.Observe(snap.Sequence)
	reg, err := registry.Restore(snap, sequencer, sink, logger)
	if err != nil {
		logger.Error("Could not restore registry from snapshot", "id", string(id), "err", err)
		return nil, err
	}

	logger.Info("Registry restored from snapshot",
		"id", string(id),
		"products", int(snap.NextID)-1,
		"sequence", snap.Sequence)
	return reg, nil
}
