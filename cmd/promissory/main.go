// Copyright 2024 The Solaris Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	gctx "github.com/solarisdb/promissory/golibs/context"
	"github.com/solarisdb/promissory/golibs/logging"
	"github.com/solarisdb/promissory/pkg/dispatch"
	"github.com/solarisdb/promissory/pkg/runner"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	scenario runner.Scenario
	ctxName  string
)

var rootCmd = &cobra.Command{
	Use:           "promissory",
	Short:         "Runs delay and timeout combinators over a future settled on a timer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var delayCmd = &cobra.Command{
	Use:   "delay",
	Short: "Delays the source settlement by the interval",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario.Op = runner.OpDelay
		return run(cmd.Context())
	},
}

var timeoutCmd = &cobra.Command{
	Use:   "timeout",
	Short: "Rejects with timed out, if the source is not settled within the delay",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario.Op = runner.OpTimeout
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "The config file, .yaml or .json")
	for _, cmd := range []*cobra.Command{delayCmd, timeoutCmd} {
		cmd.Flags().DurationVarP(&scenario.SettleAfter, "settle-after", "s", 0, "When the source is settled, 0 settles it at once")
		cmd.Flags().StringVarP(&scenario.Value, "value", "", "", "The value the source is fulfilled with")
		cmd.Flags().StringVarP(&scenario.Reject, "reject", "", "", "The error the source is rejected with")
		cmd.Flags().StringVarP(&ctxName, "context", "", "auto", "Where the output is settled: auto, immediate, main, interactive, initiated, default, utility or background")
		cmd.MarkFlagsMutuallyExclusive("value", "reject")
		rootCmd.AddCommand(cmd)
	}
	delayCmd.Flags().DurationVarP(&scenario.Interval, "interval", "i", 0, "The delay interval")
	timeoutCmd.Flags().DurationVarP(&scenario.Interval, "delay", "d", 0, "The timeout")
	timeoutCmd.Flags().BoolVarP(&scenario.Never, "never", "", false, "Never settle the source")
	_ = delayCmd.MarkFlagRequired("interval")
	_ = timeoutCmd.MarkFlagRequired("delay")
}

func run(ctx context.Context) error {
	c, err := dispatch.ParseContext(ctxName)
	if err != nil {
		return err
	}
	scenario.Context = c
	cfg, err := runner.BuildConfig(cfgFile)
	if err != nil {
		return err
	}
	return runner.Run(ctx, cfg, scenario, os.Stdout)
}

func main() {
	// stdout is for the outcome only
	logging.SetConfig(logging.StdConfig(os.Stderr))
	ctx, cancel := gctx.NewSignalsContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
