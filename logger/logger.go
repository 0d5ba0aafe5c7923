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

// Package logger builds the *zap.Logger the operator CLI hands to the
// core engine and to discovery/etcd. The core itself never imports this
// package; it depends only on *zap.Logger, defaulting to zap.NewNop()
// when none is supplied.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger's verbosity and encoding.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to
	// "info" for an empty value.
	Level string `mapstructure:"level"`
	// Format is "console" for colorized human-readable output or "json"
	// for machine-readable production output. Defaults to "json".
	Format string `mapstructure:"format"`
}

// New builds a *zap.Logger from cfg. A "debug" level selects
// zap.NewDevelopmentConfig (ISO8601 timestamps, console encoding by
// default); anything else selects zap.NewProductionConfig. Format then
// overrides the encoding independently of level.
func New(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Level == "debug" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
		if cfg.Level != "" {
			level, err := zapcore.ParseLevel(cfg.Level)
			if err != nil {
				return nil, err
			}
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg.Encoding = "json"
	}

	zapCfg.EncoderConfig.LevelKey = "level"
	zapCfg.EncoderConfig.TimeKey = "time"
	zapCfg.EncoderConfig.MessageKey = "message"

	return zapCfg.Build()
}
