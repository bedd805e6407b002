package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"labelspool/internal/agent"
	"labelspool/internal/config"
	"labelspool/internal/daemon"
	"labelspool/internal/ipc"
	"labelspool/internal/logging"
	"labelspool/internal/notify"
	"labelspool/internal/orders"
	"labelspool/internal/printer"
	"labelspool/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, exists, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "no config file found, using defaults (expected at %s)\n", resolvedPath)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open state store", logging.Error(err))
		os.Exit(1)
	}

	ag := agent.New(cfg, st, orders.NewClient(cfg), printer.New(cfg, logger), notify.NewService(cfg), logger)

	d, err := daemon.New(cfg, st, ag, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		os.Exit(1)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		os.Exit(1)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("labelspoold shutting down")
}
