package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pixperk/markerlock/pkg/config"
	"github.com/spf13/cobra"
)

// command line overrides, applied on top of the loaded config
type app struct {
	configFilePath string
	strategy       string
	dir            string
	logLevel       string
	timeout        time.Duration
	wait           time.Duration
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "markerlock: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "markerlock",
		Short: "Advisory locks between processes using marker files",
		Long: `markerlock coordinates cooperating processes, possibly on different hosts
sharing a filesystem, through a marker file that records the current owner.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFilePath, "config", "c", "", "Path to configuration file")
	flags.StringVar(&a.strategy, "strategy", "", "Acquisition strategy: timestamp or retention")
	flags.StringVar(&a.dir, "dir", "", "Directory for relative lock names")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.DurationVar(&a.timeout, "timeout", 0, "Age after which another owner's lock is stale")

	runCmd := &cobra.Command{
		Use:   "run <name> [--] <command> [args...]",
		Short: "Run a command while holding a lock",
		Long: `Acquire the lock, keep it renewed while the command runs, and release it
when the command exits. The command's exit status is passed through.`,
		Args: cobra.MinimumNArgs(2),
		RunE: a.runRun,
	}
	runCmd.Flags().DurationVar(&a.wait, "wait", 0, "Keep retrying for this long if the lock is busy")
	runCmd.Flags().SetInterspersed(false)

	statusCmd := &cobra.Command{
		Use:   "status <name>",
		Short: "Show who holds a lock",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runStatus,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long:  "Load the configuration from all sources and display the effective settings",
		Args:  cobra.NoArgs,
		RunE:  a.runValidate,
	}
	configCmd.AddCommand(validateCmd)

	rootCmd.AddCommand(runCmd, statusCmd, configCmd)
	return rootCmd
}

// loads the config and applies flags the user set explicitly
func (a *app) loadConfig(cmd *cobra.Command) (config.AppConfig, error) {
	cfg, err := config.Load(a.configFilePath)
	if err != nil {
		return config.AppConfig{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Lock.Strategy = a.strategy
	}
	if flags.Changed("dir") {
		cfg.Lock.Dir = a.dir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Lock.Timeout = a.timeout
	}
	if flags.Changed("wait") {
		cfg.Lock.Wait = a.wait
	}

	if err := config.Validate(cfg); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

func (a *app) runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "configuration is valid")
	fmt.Fprintf(out, "lock.dir:       %q\n", cfg.Lock.Dir)
	fmt.Fprintf(out, "lock.strategy:  %s\n", cfg.Lock.Strategy)
	fmt.Fprintf(out, "lock.timeout:   %s\n", cfg.Lock.Timeout)
	fmt.Fprintf(out, "lock.elapsed:   %s\n", cfg.Lock.Elapsed)
	fmt.Fprintf(out, "lock.renew:     %s\n", cfg.RenewInterval())
	fmt.Fprintf(out, "lock.wait:      %s\n", cfg.Lock.Wait)
	fmt.Fprintf(out, "lock.retry:     %s\n", cfg.Lock.Retry)
	fmt.Fprintf(out, "log.level:      %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "log.format:     %s\n", cfg.Log.Format)
	fmt.Fprintf(out, "metrics.addr:   %q\n", cfg.Metrics.Addr)
	fmt.Fprintf(out, "identity.host:  %q\n", cfg.Identity.Host)
	return nil
}
