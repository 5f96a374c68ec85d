// Command sim runs a node+radio-medium simulation described by a
// configuration file: `sim <config-file>`.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/doismellburning/netsim/internal/config"
	"github.com/doismellburning/netsim/internal/driver"
	"github.com/doismellburning/netsim/internal/logging"
	"github.com/spf13/pflag"
)

func main() {
	var logLevel string
	var statsPath string

	pflag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pflag.StringVar(&statsPath, "stats", "", "write a YAML run summary to this path")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <config-file>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level %q: %v\n", logLevel, err)
		os.Exit(2)
	}

	logger := logging.New("sim", level)

	scenario, err := config.ParseFile(pflag.Arg(0))
	if err != nil {
		logger.Fatal("cannot parse configuration", "err", err)
	}

	s, err := driver.New(scenario, logger)
	if err != nil {
		logger.Fatal("cannot build simulation", "err", err)
	}
	defer s.Close()

	stop := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		close(stop)
	}()

	logger.Info("starting simulation", "nodes", s.NodeNames(), "until", s.Until)
	start := time.Now()
	s.Run(stop)
	elapsed := time.Since(start).Seconds()
	logger.Info("simulation finished", "cycles", s.Cycle, "cycles_per_sec", float64(s.Cycle)/elapsed)

	if statsPath != "" {
		if err := driver.WriteStats(statsPath, s.Collect()); err != nil {
			logger.Error("cannot write stats", "err", err)
		}
	}
}
