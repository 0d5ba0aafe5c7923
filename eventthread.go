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

// eventThread is the engine's single-writer task serializer. Every
// mutation of engine state is submitted here as a func() and tasks run
// strictly in submission order, one at a time, on a single background
// goroutine - the same channel-plus-goroutine receive-loop shape used to
// drain a steady trickle of async updates elsewhere in this codebase.
type eventThread struct {
	tasks chan func()
}

func newEventThread(queueCapacity int) *eventThread {
	if queueCapacity <= 0 {
		queueCapacity = 256
	}
	t := &eventThread{tasks: make(chan func(), queueCapacity)}
	go t.run()
	return t
}

func (t *eventThread) run() {
	for task := range t.tasks {
		task()
	}
}

// Submit enqueues task and returns immediately. Submitting after
// Shutdown has been called is accepted - the task still enqueues - but
// is not guaranteed to run before a Shutdown callback fires if it races
// the shutdown task; submitting after the Shutdown callback has already
// fired is a programmer error this package does not guard against.
func (t *eventThread) Submit(task func()) {
	t.tasks <- task
}

// Shutdown enqueues a task that invokes callback, so callback runs after
// every task submitted before this call, in order. It does not stop the
// goroutine or close the underlying channel, since other producers may
// still legally (if ill-advisedly) call Submit concurrently.
func (t *eventThread) Shutdown(callback func()) {
	t.Submit(func() {
		if callback != nil {
			callback()
		}
	})
}
