package main

import (
	"fmt"
	"time"

	"github.com/pixperk/markerlock/pkg/lock"
	"github.com/spf13/cobra"
)

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
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

	st := h.Inspect()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lock:      %s\n", h.Name())
	fmt.Fprintf(out, "strategy:  %s\n", h.Strategy())
	fmt.Fprintf(out, "state:     %s\n", st.State)
	if st.HasRecord {
		fmt.Fprintf(out, "owner:     pid %d (%s) on %s\n", st.Record.PID, st.Record.ProcessName, st.Record.HostName)
		fmt.Fprintf(out, "acquired:  %s\n", st.Record.AcquiredTime().Format(time.RFC3339))
		fmt.Fprintf(out, "age:       %s\n", st.Age.Round(time.Millisecond))
	}
	return nil
}
