package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/breez/lnbind"
	"github.com/breez/lnbind/build"
	"github.com/breez/lnbind/config"
	"github.com/urfave/cli"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "lnbindd"
	app.Version = build.Version()
	app.Usage = "Serve lightning node bindings to a host process"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "Path to the toml config file.",
			Value:  "lnbind.toml",
			EnvVar: "LNBIND_CONFIG",
		},
	}
	app.Action = serve
	app.Commands = []cli.Command{
		serveCommand,
		genSeedCommand,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var serveCommand = cli.Command{
	Name:   "serve",
	Usage:  "Serve the host rpc. This is the default command.",
	Action: serve,
}

func serve(cliCtx *cli.Context) error {
	cfg, err := config.Load(cliCtx.GlobalString("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return lnbind.Main(ctx, cfg)
}

// setupLogging mirrors the log to a rotated file if one is configured.
// Stdout is left alone, it may carry the host rpc.
func setupLogging(cfg *config.Config) {
	if cfg.LogFile == "" {
		return
	}

	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogFileMaxSizeMB,
		MaxBackups: cfg.LogFileMaxBackups,
	}))
}
