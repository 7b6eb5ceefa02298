// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asyncio

import "sync"

// seekRequest is spec §3's SeekRequest entity: written by the consumer
// under the shared mutex and serviced and completed by the producer.
// whence is always absolute (SEEK_SET) by the time it reaches the
// producer -- seek() resolves CURRENT/SIZE itself before submitting.
//
// Exactly one of these holds at any time (spec §3 invariant):
//   - active=false, completed=false: no seek in flight
//   - active=true,  completed=false: a seek is in flight
//   - active=false, completed=true:  a seek just completed, awaiting pickup
type seekRequest struct {
	active    bool
	completed bool
	target    int64
	ret       int64
	err       error
}

// state is spec §3's "Sync" entity plus the mutable fields of Cursor,
// IOStatus, SeekRequest and AbortFlag: everything guarded by one mutex,
// with two condition variables driving the producer/consumer handshake.
//
// logicalPos is a signed 64-bit offset throughout, per spec §9's closing
// note that the unsigned declaration in the original source was a latent
// bug waiting to happen once compared against signed targets.
type state struct {
	mu sync.Mutex

	consumerCv *sync.Cond // producer broadcasts here when it has news for the consumer
	producerCv *sync.Cond // consumer broadcasts here when it wants the producer to act

	logicalPos  int64
	logicalSize int64 // <= 0 means unknown, set once from source.Size() at open

	eof   bool
	ioErr error

	seek seekRequest

	abort bool
}

func newState(logicalSize int64) *state {
	st := &state{logicalSize: logicalSize}
	st.consumerCv = sync.NewCond(&st.mu)
	st.producerCv = sync.NewCond(&st.mu)
	return st
}
