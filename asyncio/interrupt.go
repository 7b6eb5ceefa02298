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

import (
	"sync/atomic"

	"github.com/cloudwego/async-reader/source"
)

// interruptSignal composes the caller-supplied interrupt predicate with
// the internal abort flag Close sets, per spec §9: "the wrapping layer
// must OR the host interrupt with the abort flag when handing a callback
// to the inner source, so inner blocking I/O unblocks during close."
// hostFn is behind an atomic.Pointer rather than a plain field: the
// producer goroutine polls it on every loop iteration while
// (*Reader).ReadContext may swap it in and out from the consumer
// goroutine for the duration of one call.
type interruptSignal struct {
	hostFn atomic.Pointer[source.InterruptFunc]
	abort  atomic.Bool
}

func (s *interruptSignal) shouldInterrupt() bool {
	if s.abort.Load() {
		return true
	}
	if fn := s.hostFn.Load(); fn != nil {
		return (*fn)()
	}
	return false
}

func (s *interruptSignal) setHost(fn source.InterruptFunc) {
	if fn == nil {
		s.hostFn.Store(nil)
		return
	}
	s.hostFn.Store(&fn)
}

func (s *interruptSignal) setAbort() {
	s.abort.Store(true)
}
