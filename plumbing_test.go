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

package d2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventThread_RunsTasksInSubmissionOrder(t *testing.T) {
	t.Parallel()

	thread := newEventThread(4)
	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		thread.Submit(func() { order = append(order, i) })
	}
	thread.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks never drained")
	}
	for i := 0; i < 10; i++ {
		require.Equal(t, i, order[i])
	}
}

func TestEventThread_Shutdown_RunsCallbackAfterPriorTasks(t *testing.T) {
	t.Parallel()

	thread := newEventThread(4)
	ran := false
	thread.Submit(func() { ran = true })

	done := make(chan struct{})
	thread.Shutdown(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown callback never fired")
	}
	require.True(t, ran)
}

func TestWaiterQueue_OfferAfterCloseFails(t *testing.T) {
	t.Parallel()

	q := newWaiterQueue()
	fired := false
	require.True(t, q.Offer(func() { fired = true }))

	cbs := q.Close()
	require.Len(t, cbs, 1)
	cbs[0]()
	require.True(t, fired)

	require.False(t, q.Offer(func() {}))
	require.Nil(t, q.Close())
}

func TestEventBus_RegisterOnlyStartsObservingOnce(t *testing.T) {
	t.Parallel()

	thread := newEventThread(4)
	factory, fake := newFakePublisherFactory[*UriProperties]()
	bus := newEventBus[*UriProperties](thread, nil)
	bus.publisher = factory(bus)

	subA := &recordingSubscriber{}
	subB := &recordingSubscriber{}
	bus.Register("c1", subA)
	bus.Register("c1", subB)
	require.Equal(t, 1, fake.startCount("c1"))

	bus.Unregister("c1", subA)
	require.Equal(t, 0, fake.stopCount("c1"))
	bus.Unregister("c1", subB)
	require.Equal(t, 1, fake.stopCount("c1"))
}

func TestEventBus_DispatchesToEveryRegisteredSubscriber(t *testing.T) {
	t.Parallel()

	thread := newEventThread(4)
	factory, fake := newFakePublisherFactory[*UriProperties]()
	bus := newEventBus[*UriProperties](thread, nil)
	bus.publisher = factory(bus)

	subA := &recordingSubscriber{}
	subB := &recordingSubscriber{}
	bus.Register("c1", subA)
	bus.Register("c1", subB)

	fake.Initialize("c1", &UriProperties{ClusterName: "c1"})

	done := make(chan struct{})
	thread.Submit(func() { close(done) })
	<-done

	require.Equal(t, 1, subA.initCount)
	require.Equal(t, 1, subB.initCount)
}

type recordingSubscriber struct {
	initCount int
	addCount  int
	rmCount   int
}

func (s *recordingSubscriber) OnInitialize(string, *UriProperties) { s.initCount++ }
func (s *recordingSubscriber) OnAdd(string, *UriProperties)        { s.addCount++ }
func (s *recordingSubscriber) OnRemove(string)                     { s.rmCount++ }

func TestListenerRegistry_AddRemoveAndFireOrder(t *testing.T) {
	t.Parallel()

	var reg listenerRegistry
	l1 := &fakeListener{}
	l2 := &fakeListener{}
	reg.AddListener(l1)
	reg.AddListener(l2)
	require.Equal(t, 2, reg.Count())

	reg.fireClientAdded("c1", &TrackerClient{URI: "u1"})
	require.Equal(t, []string{"add:c1:u1"}, l1.snapshot())
	require.Equal(t, []string{"add:c1:u1"}, l2.snapshot())

	reg.RemoveListener(l1)
	require.Equal(t, 1, reg.Count())
	reg.fireClientRemoved("c1", &TrackerClient{URI: "u1"})
	require.Equal(t, []string{"add:c1:u1"}, l1.snapshot())
	require.Equal(t, []string{"add:c1:u1", "remove:c1:u1"}, l2.snapshot())
}
