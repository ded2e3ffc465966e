// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// clockcheck reads and audits the process system and steady clocks.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katzenpost/clock/common"
	"github.com/katzenpost/clock/config"
	"github.com/katzenpost/clock/core/allocator"
	"github.com/katzenpost/clock/core/clocksource"
	"github.com/katzenpost/clock/core/log"
	"github.com/katzenpost/clock/core/monotime"
	"github.com/katzenpost/clock/core/nanotime"
	"github.com/katzenpost/clock/core/threadlocal"
	"github.com/katzenpost/clock/core/utils"
	"github.com/katzenpost/clock/internal/instrument"
	"github.com/katzenpost/clock/internal/ntpcheck"
	"github.com/katzenpost/clock/internal/samplestore"
	"github.com/katzenpost/clock/sampler"
)

type options struct {
	configFile string
	workers    int
	samples    int
	keyed      bool
}

func (o *options) load() (*config.Config, error) {
	if o.configFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%v': %v", o.configFile, err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "clockcheck",
		Short: "Read and audit the process clocks",
		Long: `clockcheck reads the system (wall) clock and the steady (monotonic) clock
through the same code paths the rest of the process uses, and can sample
them from many goroutines at once, recording every reading that fails or
goes backward.`,
		Example: `  # Print both clocks
  clockcheck now

  # Sample with 16 goroutines using keyed goroutine local storage
  clockcheck sample -c clockcheck.toml -w 16 --keyed

  # List the anomalies recorded so far
  clockcheck report -c clockcheck.toml

  # Compare the system clock with an NTP server
  clockcheck offset -s time.cloudflare.com`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "configuration file")

	cmd.AddCommand(newNowCommand())
	cmd.AddCommand(newSampleCommand(&opts))
	cmd.AddCommand(newReportCommand(&opts))
	cmd.AddCommand(newOffsetCommand(&opts))
	return cmd
}

func newNowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Print the current system and steady time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printNow(cmd.OutOrStdout(), monotime.Default())
		},
	}
}

func printNow(w io.Writer, clock *monotime.Clock) error {
	if err := clock.ThreadSpecificInit(allocator.Default()); err != nil {
		return err
	}
	defer clock.ThreadSpecificFini()

	system, err := clock.SystemTimeNow()
	if err != nil {
		return err
	}
	steady, err := clock.SteadyTimeNow()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "source:  %s (%s storage)\n", clock.Source().Name(), clock.Storage().Name())
	fmt.Fprintf(w, "system:  %s ns  %s s\n", nanotime.FormatNanoseconds(system), nanotime.FormatSeconds(system))
	fmt.Fprintf(w, "steady:  %s ns  %s s\n", nanotime.FormatNanoseconds(steady), nanotime.FormatSeconds(steady))
	return nil
}

func newSampleCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample the clocks from many goroutines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Sampler.Workers = opts.workers
			}
			if cmd.Flags().Changed("samples") {
				cfg.Sampler.Samples = opts.samples
			}
			if cmd.Flags().Changed("keyed") {
				cfg.Sampler.UseKeyedStorage = opts.keyed
			}
			if err = cfg.FixupAndValidate(); err != nil {
				return err
			}
			return runSample(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "number of sampling goroutines")
	cmd.Flags().IntVarP(&opts.samples, "samples", "n", 0, "readings of each clock per goroutine")
	cmd.Flags().BoolVar(&opts.keyed, "keyed", false, "use keyed goroutine local storage")
	return cmd
}

func runSample(w io.Writer, cfg *config.Config) error {
	logBackend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return err
	}
	defer logBackend.Close()
	logger := logBackend.GetLogger("clockcheck")

	if cfg.Metrics.Address != "" {
		instrument.Init(cfg.Metrics.Address, logBackend.GetLogger("metrics"))
	}

	var storage threadlocal.Storage = threadlocal.Default()
	if cfg.Sampler.UseKeyedStorage && nanotime.SanityChecks {
		storage = threadlocal.NewKeyed()
	}
	clock, err := monotime.New(clocksource.Platform(), storage, monotime.WithLogger(logBackend.GetLogger("monotime")))
	if err != nil {
		return err
	}

	var rec sampler.Recorder
	if !cfg.Store.Disable {
		store, err := samplestore.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	s, err := sampler.New(cfg.Sampler, clock, rec, logger)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	s.Start()
	doneCh := make(chan struct{})
	go func() {
		s.Wait()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-sigCh:
		logger.Notice("Interrupted, halting samplers.")
		s.Halt()
	}

	st := s.Stats()
	fmt.Fprintf(w, "readings:  %d\n", st.Readings)
	fmt.Fprintf(w, "anomalies: %d\n", st.Anomalies)
	fmt.Fprintf(w, "allocs:    %d (freed %d)\n", st.Allocs, st.Frees)
	if st.Anomalies != 0 {
		return fmt.Errorf("clockcheck: %d clock anomalies detected", st.Anomalies)
	}
	return nil
}

func newReportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "List the recorded clock anomalies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), cfg.Store.Path)
		},
	}
}

func printReport(w io.Writer, path string) error {
	ok, err := utils.Exists(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("clockcheck: no anomaly store at '%v'", path)
	}

	store, err := samplestore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	anomalies, err := store.All()
	if err != nil {
		return err
	}
	for _, a := range anomalies {
		fmt.Fprintf(w, "%6d  %s  worker %-4d %-6s %-17s %s\n",
			a.Seq, nanotime.FormatSeconds(a.When), a.Worker, a.Clock, a.Kind, a.Message)
	}
	fmt.Fprintf(w, "%d anomalies\n", len(anomalies))
	return nil
}

func newOffsetCommand(opts *options) *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Compare the system clock with an NTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if server != "" {
				cfg.NTP.Server = server
			}
			r, err := ntpcheck.New(cfg.NTP, monotime.Default()).Check()
			if r != nil {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "server:  %s (stratum %d)\n", r.Server, r.Stratum)
				fmt.Fprintf(w, "system:  %s s\n", nanotime.FormatSeconds(r.System))
				fmt.Fprintf(w, "offset:  %v\n", r.Offset)
				fmt.Fprintf(w, "rtt:     %v (%v elapsed)\n", r.RTT, r.Elapsed)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "", "NTP server, overriding the configuration")
	return cmd
}

func main() {
	common.ExecuteWithFang(newRootCommand())
}
