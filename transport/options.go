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

package transport

import (
	"crypto/tls"
	"time"
)

// Option configures the factories returned by NewHTTPClientFactory.
type Option interface {
	apply(*factoryOptions)
}

type optionFunc func(*factoryOptions)

func (f optionFunc) apply(o *factoryOptions) { f(o) }

type factoryOptions struct {
	tlsConfig             *tls.Config
	defaultDialTimeout    time.Duration
	defaultRequestTimeout time.Duration
}

func defaultFactoryOptions() factoryOptions {
	return factoryOptions{
		defaultDialTimeout:    30 * time.Second,
		defaultRequestTimeout: 0, // no default deadline beyond the caller's context
	}
}

// WithTLSConfig sets the base *tls.Config used by the "https" scheme.
// Per-cluster properties (tlsHandshakeTimeoutMs) layer on top of it; the
// config itself is shared, not cloned, across every https client this
// factory builds.
func WithTLSConfig(cfg *tls.Config) Option {
	return optionFunc(func(o *factoryOptions) {
		o.tlsConfig = cfg
	})
}

// WithDefaultDialTimeout sets the dial timeout used when a cluster's
// properties don't specify dialTimeoutMs.
func WithDefaultDialTimeout(d time.Duration) Option {
	return optionFunc(func(o *factoryOptions) {
		o.defaultDialTimeout = d
	})
}
