package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/markeluno8-dev/AuthentiEats/common"
	"github.com/markeluno8-dev/AuthentiEats/httpserver"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var AdminFlag = &cli.StringFlag{
	Name:     "admin",
	Required: true,
	Usage:    "initial registry administrator identity, 0x-prefixed 40-char hex string",
}

var ServerAddrFlag = &cli.StringFlag{
	Name:  "registry-server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "registry server address to request",
}

var CallerFlag = &cli.StringFlag{
	Name:  "caller",
	Usage: "caller identity to act as, 0x-prefixed 40-char hex string",
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:  "private-key",
	Usage: "hex-encoded secp256k1 private key used to sign request bodies; the caller identity is derived from it",
}

var SnapshotURIFlag = &cli.StringFlag{
	Name:  "snapshot-uri",
	Usage: "snapshot store location URI (file://, s3://, ipfs://, vault://)",
}

var RestoreFlag = &cli.StringFlag{
	Name:  "restore",
	Usage: "snapshot id to restore on startup, or 'latest'",
}

var RequireSignaturesFlag = &cli.BoolFlag{
	Name:  "require-signatures",
	Value: false,
	Usage: "require a body signature proving control of the caller identity",
}

var ExternalSequenceFlag = &cli.BoolFlag{
	Name:  "external-sequence",
	Value: false,
	Usage: "accept sequence heights from the X-Registry-Sequence header instead of counting calls",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
