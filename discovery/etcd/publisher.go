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

package etcd

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/JosHernan/d2"
)

const retryBackoff = time.Second

// Publisher sources d2 discovery events for one property kind ("uris",
// "clusters", or "services") from a shared etcd client. Each name passed
// to StartObserving gets its own watch goroutine, cancelled independently
// by StopObserving.
type Publisher[T any] struct {
	client *clientv3.Client
	kind   string
	sink   d2.PublisherSink[T]
	logger *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewPublisher returns a d2.PublisherFactory[T] bound to client and kind,
// ready to pass to d2.NewLoadBalancerState.
func NewPublisher[T any](client *clientv3.Client, kind string, logger *zap.Logger) func(sink d2.PublisherSink[T]) d2.Publisher[T] {
	return func(sink d2.PublisherSink[T]) d2.Publisher[T] {
		return &Publisher[T]{
			client:  client,
			kind:    kind,
			sink:    sink,
			logger:  logger,
			cancels: make(map[string]context.CancelFunc),
		}
	}
}

// NewUriPublisherFactory, NewClusterPublisherFactory, and
// NewServicePublisherFactory are convenience aliases of NewPublisher for
// the three property kinds the core engine consumes.
func NewUriPublisherFactory(client *clientv3.Client, logger *zap.Logger) func(d2.PublisherSink[*d2.UriProperties]) d2.Publisher[*d2.UriProperties] {
	return NewPublisher[*d2.UriProperties](client, "uris", logger)
}

func NewClusterPublisherFactory(client *clientv3.Client, logger *zap.Logger) func(d2.PublisherSink[*d2.ClusterProperties]) d2.Publisher[*d2.ClusterProperties] {
	return NewPublisher[*d2.ClusterProperties](client, "clusters", logger)
}

func NewServicePublisherFactory(client *clientv3.Client, logger *zap.Logger) func(d2.PublisherSink[*d2.ServiceProperties]) d2.Publisher[*d2.ServiceProperties] {
	return NewPublisher[*d2.ServiceProperties](client, "services", logger)
}

func (p *Publisher[T]) key(name string) string {
	return "/d2/" + p.kind + "/" + name
}

func (p *Publisher[T]) StartObserving(name string) {
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if existing, ok := p.cancels[name]; ok {
		existing()
	}
	p.cancels[name] = cancel
	p.mu.Unlock()

	go p.observe(ctx, name)
}

func (p *Publisher[T]) StopObserving(name string) {
	p.mu.Lock()
	cancel, ok := p.cancels[name]
	delete(p.cancels, name)
	p.mu.Unlock()

	if ok {
		cancel()
	}
}

// observe performs the initial Get, hands the result to the sink, and
// then hands off to watch at the revision the Get observed. It never
// returns until ctx is cancelled.
func (p *Publisher[T]) observe(ctx context.Context, name string) {
	key := p.key(name)

	value, rev, err := p.initialGet(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("etcd: giving up initial get", zap.String("key", key), zap.Error(err))
		return
	}

	p.sink.Initialize(name, value)
	p.watch(ctx, name, key, rev)
}

func (p *Publisher[T]) initialGet(ctx context.Context, key string) (T, int64, error) {
	var zero T
	for {
		resp, err := p.client.Get(ctx, key)
		if err == nil {
			if len(resp.Kvs) == 0 {
				return zero, resp.Header.GetRevision(), nil
			}
			value, decodeErr := decode[T](resp.Kvs[0].Value)
			if decodeErr != nil {
				p.logger.Warn("etcd: malformed value on initial get",
					zap.String("key", key), zap.Error(decodeErr))
				return zero, resp.Header.GetRevision(), nil
			}
			return value, resp.Header.GetRevision(), nil
		}

		p.logger.Warn("etcd: initial get failed, retrying", zap.String("key", key), zap.Error(err))
		select {
		case <-ctx.Done():
			return zero, 0, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
}

// watch streams PUT/DELETE events for key starting just after rev. A PUT
// decodes its value and calls sink.Add; a DELETE calls sink.Add with the
// zero value of T rather than sink.Remove, since only an explicit
// Unregister against the bus should tear down subscriber state.
func (p *Publisher[T]) watch(ctx context.Context, name, key string, rev int64) {
	for {
		if ctx.Err() != nil {
			return
		}

		watchChan := p.client.Watch(ctx, key, clientv3.WithRev(rev+1))
		rev = p.drainWatch(ctx, name, key, watchChan, rev)

		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryBackoff):
		}
	}
}

func (p *Publisher[T]) drainWatch(ctx context.Context, name, key string, watchChan clientv3.WatchChan, rev int64) int64 {
	var zero T
	for resp := range watchChan {
		if err := resp.Err(); err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("etcd: watch error, resubscribing", zap.String("key", key), zap.Error(err))
			}
			return rev
		}

		for _, ev := range resp.Events {
			rev = ev.Kv.ModRevision

			switch ev.Type {
			case clientv3.EventTypePut:
				value, err := decode[T](ev.Kv.Value)
				if err != nil {
					p.logger.Warn("etcd: malformed value on watch event",
						zap.String("key", key), zap.Error(err))
					continue
				}
				p.sink.Add(name, value)
			case clientv3.EventTypeDelete:
				p.sink.Add(name, zero)
			}
		}
	}
	return rev
}

// decode unmarshals data into a fresh T. T is always a pointer type in
// this package's usage (e.g. *d2.UriProperties), so unmarshaling into
// &value lets encoding/json allocate the pointee for us.
func decode[T any](data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
