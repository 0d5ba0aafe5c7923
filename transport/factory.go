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
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/JosHernan/d2"
)

// Scheme name constants, matching the URI schemes a cluster's
// PrioritizedSchemes may list.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeH2C   = "h2c"
)

// recognized cluster property keys. Any other key in a cluster's
// Properties map is ignored rather than rejected - clusters may carry
// properties meant for other consumers.
const (
	propDialTimeoutMs         = "dialTimeoutMs"
	propRequestTimeoutMs      = "requestTimeoutMs"
	propMaxResponseHeaderByte = "maxResponseHeaderBytes"
	propIdleConnTimeoutMs     = "idleConnTimeoutMs"
	propTLSHandshakeTimeoutMs = "tlsHandshakeTimeoutMs"
)

// NewHTTPClientFactory builds one d2.TransportClientFactory per scheme
// it supports, keyed by scheme name so the caller can register each with
// d2.WithTransportClientFactory. All three share the same base options;
// only the scheme of the resulting client (and therefore which net/http
// transport it builds) differs.
func NewHTTPClientFactory(opts ...Option) map[string]d2.TransportClientFactory {
	cfg := defaultFactoryOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return map[string]d2.TransportClientFactory{
		SchemeHTTP:  &schemeFactory{scheme: SchemeHTTP, opts: cfg},
		SchemeHTTPS: &schemeFactory{scheme: SchemeHTTPS, opts: cfg},
		SchemeH2C:   &schemeFactory{scheme: SchemeH2C, opts: cfg},
	}
}

type schemeFactory struct {
	scheme string
	opts   factoryOptions
}

func (f *schemeFactory) NewClient(clusterProperties map[string]string) (d2.TransportClient, error) {
	dialTimeout := durationMs(clusterProperties, propDialTimeoutMs, f.opts.defaultDialTimeout)
	requestTimeout := durationMs(clusterProperties, propRequestTimeoutMs, f.opts.defaultRequestTimeout)
	idleConnTimeout := durationMs(clusterProperties, propIdleConnTimeoutMs, 90*time.Second)
	tlsHandshakeTimeout := durationMs(clusterProperties, propTLSHandshakeTimeoutMs, 10*time.Second)
	maxResponseHeaderBytes := intProp(clusterProperties, propMaxResponseHeaderByte, 0)

	dialer := &net.Dialer{Timeout: dialTimeout}

	var rt http.RoundTripper
	switch f.scheme {
	case SchemeH2C:
		rt = newH2CTransport(dialer)
	case SchemeHTTPS:
		tlsConfig := f.opts.tlsConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12} //nolint:gosec // caller may override via WithTLSConfig
		}
		rt = &http.Transport{
			DialContext:            dialer.DialContext,
			TLSClientConfig:        tlsConfig,
			TLSHandshakeTimeout:    tlsHandshakeTimeout,
			IdleConnTimeout:        idleConnTimeout,
			MaxResponseHeaderBytes: int64(maxResponseHeaderBytes),
		}
	default: // SchemeHTTP
		rt = &http.Transport{
			DialContext:            dialer.DialContext,
			IdleConnTimeout:        idleConnTimeout,
			MaxResponseHeaderBytes: int64(maxResponseHeaderBytes),
		}
	}

	return &httpTransportClient{
		client: &http.Client{
			Transport: rt,
			Timeout:   requestTimeout,
		},
		scheme: f.scheme,
	}, nil
}

func durationMs(props map[string]string, key string, fallback time.Duration) time.Duration {
	raw, ok := props[key]
	if !ok {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func intProp(props map[string]string, key string, fallback int) int {
	raw, ok := props[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
