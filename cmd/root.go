// Copyright 2023-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements d2ctl, the operator CLI: a thin composition
// root over the core engine, the reference discovery/transport/strategy
// packages, and the config/logger packages. Neither subcommand
// participates in the core's event-thread concurrency discipline.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JosHernan/d2/logger"
)

var configPath string

// RootCmd is the base d2ctl command.
var RootCmd = &cobra.Command{
	Use:           "d2ctl",
	Short:         "Operate a d2 load balancer engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a d2ctl YAML config file")
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(inspectCmd)
}

// Execute runs RootCmd, logging and exiting non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		l, logErr := logger.New(logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err) //nolint:forbidigo // last-resort fallback if logger construction itself fails
		}
		os.Exit(1)
	}
}
