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
)

// httpTransportClient implements d2.TransportClient over a private
// *http.Client. Shutdown closes idle connections and does not cancel
// requests already in flight, matching the core's ownership rule that a
// retired client's in-flight requests are left to complete.
type httpTransportClient struct {
	client *http.Client
	scheme string
}

func (c *httpTransportClient) RoundTrip(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(ctx))
}

func (c *httpTransportClient) Shutdown(callback func()) {
	c.client.CloseIdleConnections()
	if callback != nil {
		callback()
	}
}
