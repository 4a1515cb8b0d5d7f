package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixperk/markerlock/pkg/lock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// grace period between forwarding a signal and killing the command
const childWaitDelay = 10 * time.Second

func (a *app) runRun(cmd *cobra.Command, args []string) error {
	// flag parsing stops at the lock name, so a separating -- is still here
	argv := args[1:]
	if argv[0] == "--" {
		argv = argv[1:]
	}
	if len(argv) == 0 {
		return errors.New("no command given")
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	h, err := lock.New(cfg.LockPath(args[0]), cfg.LockOptions(logger)...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		srv := newMetricsServer(cfg.Metrics.Addr)
		go func() {
			logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.Start(); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	if err := acquire(ctx, h, cfg.Lock.Wait, cfg.Lock.Retry); err != nil {
		return err
	}
	logger.Info("lock acquired",
		zap.String("lock", h.Name()),
		zap.Stringer("strategy", h.Strategy()))
	defer func() {
		h.Release()
		logger.Info("lock released", zap.String("lock", h.Name()))
	}()

	// retention holds its descriptor open, nothing to renew
	// the heartbeat must be gone before the deferred release runs, or a late
	// renewal would recreate the marker
	if h.Strategy() == lock.StrategyTimestamp {
		hbCtx, cancelHeartbeat := context.WithCancel(ctx)
		hbDone := make(chan struct{})
		go func() {
			defer close(hbDone)
			heartbeat(hbCtx, h, cfg.RenewInterval(), logger)
		}()
		defer func() {
			cancelHeartbeat()
			<-hbDone
		}()
	}

	return runChild(ctx, argv)
}

// runs the command with inherited stdio, SIGTERM is forwarded when ctx ends
func runChild(ctx context.Context, argv []string) error {
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Cancel = func() error {
		return c.Process.Signal(syscall.SIGTERM)
	}
	c.WaitDelay = childWaitDelay

	err := c.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = exitSignaled
		}
		return &childExitError{code: code}
	}
	return fmt.Errorf("run %s: %w", argv[0], err)
}
