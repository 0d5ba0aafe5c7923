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

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/JosHernan/d2"
	"github.com/JosHernan/d2/config"
	"github.com/JosHernan/d2/discovery/etcd"
	"github.com/JosHernan/d2/logger"
	"github.com/JosHernan/d2/partition"
	"github.com/JosHernan/d2/strategy"
	"github.com/JosHernan/d2/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation engine against an etcd discovery backend",
	RunE:  runServe,
}

func runServe(*cobra.Command, []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: cfg.Etcd.DialTimeout(),
	})
	if err != nil {
		return fmt.Errorf("connect to etcd: %w", err)
	}
	defer func() { _ = client.Close() }()

	opts := []d2.Option{
		d2.WithLogger(log),
		d2.WithPartitionAccessorFactory(partition.NewAccessorFactory()),
	}

	transportFactories := transport.NewHTTPClientFactory()
	for _, scheme := range cfg.Transport.Schemes {
		factory, ok := transportFactories[scheme]
		if !ok {
			log.Warn("serve: unrecognized transport scheme in config, skipping", zap.String("scheme", scheme))
			continue
		}
		opts = append(opts, d2.WithTransportClientFactory(scheme, factory))
	}

	strategyFactories := strategy.Factories()
	names := cfg.Strategies
	if len(names) == 0 {
		for name := range strategyFactories {
			names = append(names, name)
		}
	}
	for _, name := range names {
		factory, ok := strategyFactories[name]
		if !ok {
			log.Warn("serve: unrecognized strategy name in config, skipping", zap.String("strategy", name))
			continue
		}
		opts = append(opts, d2.WithStrategyFactory(name, factory))
	}

	engine := d2.NewLoadBalancerState(
		etcd.NewUriPublisherFactory(client, log),
		etcd.NewClusterPublisherFactory(client, log),
		etcd.NewServicePublisherFactory(client, log),
		opts...,
	)

	log.Info("serve: engine constructed, awaiting shutdown signal",
		zap.Strings("schemes", cfg.Transport.Schemes),
		zap.Strings("strategies", names))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("serve: shutting down")
	done := make(chan struct{})
	engine.Shutdown(func() { close(done) })
	<-done
	return nil
}
