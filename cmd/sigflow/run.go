package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/config"
)

type runCommand struct {
	graph    string
	realTime bool
	verbose  bool
}

func (cmd *runCommand) Name() string {
	return "run"
}

func (cmd *runCommand) Help() string {
	return "Run a graph defined in a YAML file"
}

func (cmd *runCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.graph, "graph", "", "path to the graph definition (required)")
	fs.BoolVar(&cmd.realTime, "rt", false, "pace ticks against the wall clock")
	fs.BoolVar(&cmd.verbose, "v", false, "enable debug logging")
}

func (cmd *runCommand) Run() error {
	if cmd.graph == "" {
		return fmt.Errorf("missing -graph required flag")
	}

	logger := logrus.New()
	if cmd.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	options := []sigflow.Option{sigflow.WithLogger(logger)}
	if cmd.realTime {
		options = append(options, sigflow.WithClock(sigflow.RealTime()))
	}

	g, err := config.Default().LoadFile(cmd.graph, options...)
	if err != nil {
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	runc := g.Run()
	for {
		select {
		case <-sigc:
			logger.Info("interrupted, stopping")
			g.Stop()
		case err := <-runc:
			for _, warning := range g.Warnings() {
				logger.Warn(warning)
			}
			return err
		}
	}
}
