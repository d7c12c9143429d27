// Command ca-repeater runs the CA broadcast repeater: one entry point that
// registers with an optional external watchdog, then runs the dispatch
// loop until a fatal startup condition or a process signal.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gabadinho/ca-repeater/internal/config"
	"github.com/gabadinho/ca-repeater/internal/health"
	"github.com/gabadinho/ca-repeater/internal/log"
	"github.com/gabadinho/ca-repeater/internal/metrics"
	"github.com/gabadinho/ca-repeater/internal/repeater"
	"github.com/gabadinho/ca-repeater/internal/watchdog"
)

// Version can be set at build time with -ldflags "-X main.Version=x.y.z"
var Version = ""

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:   "ca-repeater",
		Short: "CA broadcast repeater",
		Long: `ca-repeater fans out UDP datagrams arriving on the CA repeater port
to every local client process that has registered with it.`,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the repeater dispatch loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(verbose)
		},
	}
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ca-repeater", version())
		},
	}

	root.AddCommand(runCmd, versionCmd)
	// Running with no subcommand behaves like "run", matching the
	// original repeater's single-entry-point process interface.
	root.RunE = runCmd.RunE
	root.Flags().AddFlagSet(runCmd.Flags())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(verbose bool) error {
	var logger log.Logger
	if verbose {
		logger = log.NewDevelopment()
	} else {
		logger = log.New()
	}
	defer log.Sync(logger)

	cfg := config.Load()
	m := metrics.New()
	wd := watchdog.Noop{}

	rp, err := repeater.New(logger, m, cfg.Port, cfg.MaxDatagram)
	if err != nil {
		if repeater.IsAddressInUse(err) {
			// Another repeater is already running on this host; this is
			// the documented clean-exit case, not a failure.
			logger.Info("repeater already running on this port, exiting", "port", cfg.Port)
			return nil
		}
		logger.Error("unable to create repeater service socket", "err", err)
		return nil
	}
	defer rp.Close()

	wd.Register(strconv.Itoa(os.Getpid()))
	logger.Info("repeater started", "port", cfg.Port)

	var healthSrv *health.Server
	if cfg.MetricsAddr != "" {
		healthSrv = health.NewServer(cfg.MetricsAddr, rp)
		if err := healthSrv.Start(); err != nil {
			logger.Warn("unable to start metrics listener", "addr", cfg.MetricsAddr, "err", err)
			healthSrv = nil
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() { errCh <- rp.Run() }()

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		rp.Close()
		if healthSrv != nil {
			healthSrv.Stop()
		}
		<-errCh
	case err := <-errCh:
		if healthSrv != nil {
			healthSrv.Stop()
		}
		if err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("repeater dispatch loop exited", "err", err)
		}
	}

	return nil
}
