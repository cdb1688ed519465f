// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingcap-incubator/tinygraph/client"
	"github.com/pingcap-incubator/tinygraph/config"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg = config.NewConfig()

	globalContext context.Context
	globalCancel  context.CancelFunc

	globalSession *client.Session
	globalCli     *cli
)

func initialGlobal(cmd *cobra.Command, args []string) error {
	if err := cfg.Load(); err != nil {
		return err
	}
	if err := cfg.SetupLogger(); err != nil {
		return err
	}
	for _, msg := range cfg.WarningMsgs {
		log.Warn(msg)
	}
	log.Info("[graph] config", zap.Stringer("config", cfg))

	var opts []client.Option
	if cfg.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	var err error
	globalSession, err = client.Dial(cfg.EndpointList(), cfg.Security.ToSecurityOption(), opts...)
	if err != nil {
		return err
	}
	globalCli = newCli(globalSession, cfg.RequestTimeout.Duration, os.Stdout)

	if cfg.Auth.User != "" {
		ctx, cancel := globalCli.withTimeout(globalContext)
		defer cancel()
		if err := globalSession.Login(ctx, cfg.Auth.User, cfg.Auth.Password); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	globalContext, globalCancel = context.WithCancel(context.Background())

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	closeDone := make(chan struct{}, 1)
	go func() {
		sig := <-sc
		fmt.Printf("\nGot signal [%v] to exit.\n", sig)
		globalCancel()

		select {
		case <-sc:
			// send signal again, return directly
			fmt.Printf("\nGot signal [%v] again to exit.\n", sig)
			os.Exit(1)
		case <-time.After(10 * time.Second):
			fmt.Print("\nWait 10s for closed, force exit\n")
			os.Exit(1)
		case <-closeDone:
			return
		}
	}()

	rootCmd := &cobra.Command{
		Use:               "graph-cli",
		Short:             "Transactional graph database client",
		PersistentPreRunE: initialGlobal,
		SilenceUsage:      true,
	}
	rootCmd.PersistentFlags().AddFlagSet(cfg.FlagSet)

	rootCmd.AddCommand(
		newQueryCommand(),
		newMutateCommand(),
		newAlterCommand(),
		newVersionCommand(),
		newShellCommand(),
	)

	cobra.EnablePrefixMatching = true

	code := 0
	if err := rootCmd.Execute(); err != nil {
		code = 1
	}

	globalCancel()
	if globalCli != nil {
		globalCli.close(context.Background())
	}
	if globalSession != nil {
		globalSession.Close()
	}
	log.L().Sync()

	closeDone <- struct{}{}
	os.Exit(code)
}
