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

// Package config loads d2ctl's configuration from a YAML file plus
// D2_-prefixed environment variable overrides, using Viper.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JosHernan/d2/logger"
)

// EtcdConfig describes how to reach the etcd cluster backing discovery.
type EtcdConfig struct {
	Endpoints     []string `mapstructure:"endpoints"`
	DialTimeoutMs int      `mapstructure:"dialTimeoutMs"`
}

// DialTimeout returns the configured dial timeout, defaulting to five
// seconds when unset or non-positive.
func (e EtcdConfig) DialTimeout() time.Duration {
	if e.DialTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(e.DialTimeoutMs) * time.Millisecond
}

// TransportConfig lists the URI schemes d2ctl should register a
// transport-client factory for. It carries no per-scheme options; every
// factory is built with the transport package's defaults.
type TransportConfig struct {
	Schemes []string `mapstructure:"schemes"`
}

// Config is the root configuration for the d2ctl operator CLI.
type Config struct {
	Etcd      EtcdConfig      `mapstructure:"etcd"`
	Transport TransportConfig `mapstructure:"transport"`
	// Strategies lists the strategy names d2ctl registers. An empty list
	// registers every strategy the strategy package knows about.
	Strategies []string      `mapstructure:"strategies"`
	Log        logger.Config `mapstructure:"log"`
}

// Load reads configuration from a YAML file at path (if it exists;
// a missing file is not an error) and applies D2_-prefixed environment
// variable overrides, e.g. D2_ETCD_ENDPOINTS or D2_LOG_LEVEL.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("etcd.endpoints", []string{"127.0.0.1:2379"})
	v.SetDefault("etcd.dialTimeoutMs", 5000)
	v.SetDefault("transport.schemes", []string{"http", "https", "h2c"})
	v.SetDefault("strategies", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix("D2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
