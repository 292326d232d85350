// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Command randcastnode is the node process entrypoint: load config,
// install logging, dial every configured chain's contracts, assemble
// and run until signaled, in the style of cmd/kcn/main.go
// (urfave/cli.v1 app + flags + Action, plus dumpconfig/version
// subcommands).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/arpa-network/randcast-node/config"
	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/nodecontext"
)

const version = "0.1.0"

var logger = log.NewModuleLogger(log.CMD)

var configFileFlag = cli.StringFlag{
	Name:  "config",
	Usage: "TOML configuration file",
	Value: "randcast-node.toml",
}

var committerListenAddrFlag = cli.StringFlag{
	Name:  "committer.listen",
	Usage: "listen address for the intra-committee gRPC server (main chain only)",
	Value: "0.0.0.0:8980",
}

var metricsListenAddrFlag = cli.StringFlag{
	Name:  "metrics.listen",
	Usage: "listen address for the prometheus /metrics endpoint",
	Value: "0.0.0.0:8990",
}

func main() {
	app := cli.NewApp()
	app.Name = "randcastnode"
	app.Usage = "threshold-BLS randomness node"
	app.Version = version
	app.Flags = []cli.Flag{configFileFlag, committerListenAddrFlag, metricsListenAddrFlag}
	app.Action = run
	app.Commands = []cli.Command{
		{
			Name:   "dumpconfig",
			Usage:  "show the effective configuration as TOML",
			Flags:  []cli.Flag{configFileFlag},
			Action: dumpConfig,
		},
		{
			Name:   "version",
			Usage:  "print the node version",
			Action: printVersion,
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("fatal: %v", err))
		os.Exit(1)
	}
}

func printVersion(*cli.Context) error {
	fmt.Println(color.GreenString("randcastnode %s", version))
	return nil
}

func dumpConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String(configFileFlag.Name))
	if err != nil {
		return err
	}
	out, err := config.Dump(cfg)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String(configFileFlag.Name))
	if err != nil {
		return err
	}
	log.Init(cfg.Logger)

	if NewDialer == nil {
		return fmt.Errorf("no chain dialer registered: this build was not linked against a contract-client implementation")
	}

	nc, err := nodecontext.New(cfg, NewDialer(cfg))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := nc.Deploy(ctx); err != nil {
		logger.Error("one or more chains failed to assemble", "err", err)
	}

	go serveMetrics(c.String(metricsListenAddrFlag.Name))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go waitForSignal(cancel)

	logger.Info("randcastnode started", "version", version)
	return nc.Serve(runCtx, c.String(committerListenAddrFlag.Name))
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}

func waitForSignal(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutdown signal received")
	cancel()
}
