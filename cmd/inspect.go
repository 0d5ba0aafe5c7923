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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/JosHernan/d2"
	"github.com/JosHernan/d2/config"
	"github.com/JosHernan/d2/discovery/etcd"
	"github.com/JosHernan/d2/logger"
	"github.com/JosHernan/d2/partition"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <cluster-or-service>",
	Short: "Print a cluster's or service's current reconciled state as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

// inspectResult is the JSON document printed by d2ctl inspect.
type inspectResult struct {
	Name       string                `json:"name"`
	Cluster    *d2.ClusterProperties `json:"cluster,omitempty"`
	URIs       *d2.UriProperties     `json:"uris,omitempty"`
	Service    *d2.ServiceProperties `json:"service,omitempty"`
	Strategies []string              `json:"strategies,omitempty"`
}

func runInspect(_ *cobra.Command, args []string) error {
	name := args[0]

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

	engine := d2.NewLoadBalancerState(
		etcd.NewUriPublisherFactory(client, log),
		etcd.NewClusterPublisherFactory(client, log),
		etcd.NewServicePublisherFactory(client, log),
		d2.WithLogger(log),
		d2.WithPartitionAccessorFactory(partition.NewAccessorFactory()),
	)

	return inspect(engine, name, cfg.Etcd.DialTimeout(), os.Stdout)
}

// inspect does the actual lookup once engine is wired up, writing the
// JSON result to out. Split out from runInspect so it can be exercised
// against a fake engine without an etcd server.
func inspect(engine *d2.LoadBalancerState, name string, timeout time.Duration, out io.Writer) error {
	// name may name either a cluster or a service; listen for both at
	// once and proceed as soon as whichever one it is has initialized.
	clusterDone := make(chan struct{})
	serviceDone := make(chan struct{})
	engine.ListenToCluster(name, func() { close(clusterDone) })
	engine.ListenToService(name, func() { close(serviceDone) })

	select {
	case <-clusterDone:
	case <-serviceDone:
	case <-time.After(timeout):
		return fmt.Errorf("inspect: timed out waiting for %q to initialize as a cluster or service", name)
	}

	result := inspectResult{Name: name}
	if item := engine.GetClusterProperties(name); item != nil {
		result.Cluster = item.Value
	}
	if item := engine.GetUriProperties(name); item != nil {
		result.URIs = item.Value
	}
	if item := engine.GetServiceProperties(name); item != nil {
		result.Service = item.Value
		if result.Cluster == nil {
			// Nothing has listened to this service's cluster yet, so
			// force that registration before reading its properties
			// and resolving strategies against it.
			clusterReady := make(chan struct{})
			engine.ListenToCluster(item.Value.ClusterName, func() { close(clusterReady) })
			select {
			case <-clusterReady:
			case <-time.After(timeout):
			}
			if cluster := engine.GetClusterProperties(item.Value.ClusterName); cluster != nil {
				result.Cluster = cluster.Value
			}
		}
		if result.Cluster != nil {
			for _, ss := range engine.GetStrategiesForService(name, result.Cluster.PrioritizedSchemes) {
				result.Strategies = append(result.Strategies, ss.Scheme)
			}
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
