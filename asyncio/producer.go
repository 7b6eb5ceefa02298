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
	"io"
)

// runProducer is the single background worker described by spec §4.2. It
// owns all calls into r.src after Open returns; the consumer never issues
// inner I/O directly (spec §3 invariant).
//
// The mutex is held only around state mutation and signalling, never
// across a blocking call into r.src -- that's what keeps the consumer
// responsive while inner I/O is stalled.
func (r *Reader) runProducer() {
	defer r.wg.Done()

	for {
		if r.interrupt.shouldInterrupt() {
			r.st.mu.Lock()
			r.st.eof = true
			r.st.ioErr = ErrInterrupted
			r.st.consumerCv.Broadcast()
			r.st.mu.Unlock()
			return
		}

		r.st.mu.Lock()
		if r.st.seek.active {
			r.serviceSeekLocked()
			r.st.mu.Unlock()
			continue
		}

		free := r.ring.Space()
		if r.st.eof || free == 0 {
			r.st.consumerCv.Broadcast()
			r.st.producerCv.Wait()
			r.st.mu.Unlock()
			continue
		}

		want := r.opts.FillChunk
		if want > free {
			want = free
		}
		seg1, seg2 := r.ring.Reserve(want)
		r.st.mu.Unlock()

		n, err := r.fillSegments(seg1, seg2)

		r.st.mu.Lock()
		r.ring.Commit(n)
		if err != nil {
			r.st.eof = true
			if err != io.EOF {
				r.st.ioErr = err
				r.opts.Logger.Printf("asyncio: inner read failed: %v", err)
			}
		}
		r.st.consumerCv.Broadcast()
		r.st.mu.Unlock()
	}
}

// fillSegments performs the blocking reads into the reserved ring
// segments, calling the source at most twice (spec §4.1's "once or twice
// on wrap"). It runs entirely without the state mutex held.
func (r *Reader) fillSegments(seg1, seg2 []byte) (int, error) {
	total := 0
	for _, seg := range [][]byte{seg1, seg2} {
		if len(seg) == 0 {
			continue
		}
		n, err := r.src.Read(seg)
		total += n
		if n < len(seg) {
			return total, err
		}
	}
	return total, nil
}

// serviceSeekLocked performs the pending seek request. Called with r.st.mu
// held; it unlocks around the (potentially blocking) inner Seek call and
// re-locks before mutating shared state, per spec §4.2 step 2.
func (r *Reader) serviceSeekLocked() {
	target := r.st.seek.target
	r.st.mu.Unlock()

	newPos, err := r.src.Seek(target, io.SeekStart)

	r.st.mu.Lock()
	r.ring.Reset()
	if err != nil {
		// spec §9: a failed inner seek leaves the instance in a sticky
		// error state; logicalPos is intentionally left as-is, since the
		// original gives no well-defined rewind target.
		r.st.eof = true
		r.st.ioErr = err
	} else {
		r.st.eof = false
		r.st.ioErr = nil
		r.st.logicalPos = newPos
	}
	r.st.seek.ret = newPos
	r.st.seek.err = err
	r.st.seek.completed = true
	r.st.seek.active = false
	r.st.consumerCv.Broadcast()
}
