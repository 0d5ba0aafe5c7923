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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientFactory_BuildsAllThreeSchemes(t *testing.T) {
	t.Parallel()

	factories := NewHTTPClientFactory()
	require.Contains(t, factories, SchemeHTTP)
	require.Contains(t, factories, SchemeHTTPS)
	require.Contains(t, factories, SchemeH2C)
}

func TestHTTPTransportClient_RoundTripsAgainstTestServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	factories := NewHTTPClientFactory()
	client, err := factories[SchemeHTTP].NewClient(map[string]string{
		"dialTimeoutMs": "5000",
	})
	require.NoError(t, err)
	defer client.Shutdown(func() {})

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.RoundTrip(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHTTPTransportClient_Shutdown_InvokesCallback(t *testing.T) {
	t.Parallel()

	factories := NewHTTPClientFactory()
	client, err := factories[SchemeHTTPS].NewClient(nil)
	require.NoError(t, err)

	called := false
	client.Shutdown(func() { called = true })
	require.True(t, called)
}
