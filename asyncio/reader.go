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

// Package asyncio is the async read-ahead buffering layer: it wraps a
// source.Source and presents the same read/seek surface to its caller
// while a background goroutine prefetches into a bounded ring (see
// ringbuf.Ring), so the caller's read cadence is decoupled from the
// latency of the wrapped source.
package asyncio

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cloudwego/async-reader/ringbuf"
	"github.com/cloudwego/async-reader/source"
)

// SeekSize is a whence value, distinct from io.SeekStart/io.SeekCurrent,
// that returns the cached logical size without moving the cursor -- spec
// §4.4's SIZE pseudo-whence. io.SeekEnd is deliberately not accepted:
// the whole point of SIZE is that the size may be unknown, so there is
// no well-defined "end" to seek relative to.
const SeekSize = 3

var _ io.ReadSeekCloser = (*Reader)(nil)

// Reader is the consumer-facing handle spec §2 calls the "Consumer API".
// A single Reader is not safe for concurrent use by multiple goroutines
// calling Read/Seek/Close at once (spec §5): callers serialize their own
// access, same as with a *bufio.Reader.
type Reader struct {
	src  source.Source
	ring *ringbuf.Ring
	opts *Options

	st        *state
	interrupt interruptSignal

	closed    atomic.Bool
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// OpenSource wraps an already-opened source.Source. This is spec §4.5's
// open() minus the URI/scheme resolution, which Open below layers on top.
func OpenSource(src source.Source, opts *Options) (*Reader, error) {
	merged := opts.withDefaults()
	r := &Reader{opts: merged}
	r.interrupt.setHost(merged.Interrupt)
	return r.start(src)
}

// Open resolves uri against the source registry and wraps the result.
// uri's scheme is "async:<inner-uri>" (spec §6); the "async:" prefix is
// stripped before the remainder -- itself "innerscheme:rest" -- is
// handed to source.Open.
//
// The predicate handed to source.Open is r.interrupt.shouldInterrupt, not
// the bare host callback: spec §9 requires the host interrupt be ORed
// with the close-time abort flag before it reaches the inner source, so a
// Source performing its own blocking I/O below Read (e.g. one built on a
// raw socket) unblocks on Close instead of stalling runProducer's exit.
func Open(uri string, opts *Options) (*Reader, error) {
	merged := opts.withDefaults()
	scheme, rest := splitInnerScheme(StripScheme(uri))

	r := &Reader{opts: merged}
	r.interrupt.setHost(merged.Interrupt)

	src, err := source.Open(scheme, rest, r.interrupt.shouldInterrupt)
	if err != nil {
		return nil, err
	}
	reader, err := r.start(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return reader, nil
}

// start finishes constructing r around src -- sizing the ring, seeding
// the shared state from src.Size(), and launching the producer -- once
// r.interrupt is already wired the way the caller (OpenSource or Open)
// needs it.
func (r *Reader) start(src source.Source) (*Reader, error) {
	size, err := src.Size()
	if err != nil {
		size = -1
	}
	if src.IsStreamed() {
		// a streamed source's reported size, if any, is not meaningful
		// for seek bound-checking (see DESIGN.md, "Streamed source
		// reported size").
		size = -1
	}

	r.src = src
	r.ring = ringbuf.New(r.opts.BufferCapacity)
	r.st = newState(size)

	r.wg.Add(1)
	go r.runProducer()
	return r, nil
}

// IsStreamed propagates the inner source's streamed flag unchanged
// (spec §6).
func (r *Reader) IsStreamed() bool {
	return r.src.IsStreamed()
}

// Read implements io.Reader. It returns as soon as any buffered bytes are
// available; a short read (n < len(p)) with a nil error is a normal,
// permitted outcome, matching typical byte-stream Read contracts (spec
// §4.3).
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	return r.drain(p, len(p), false, false)
}

// ReadContext behaves like Read, but additionally treats ctx's
// cancellation as an interrupt for the duration of this one call. This
// is a convenience on top of the interrupt predicate spec §6 already
// specifies -- it does not add a per-read timeout to the core protocol
// (spec.md's Non-goals exclude those), only context-based cancellation.
func (r *Reader) ReadContext(ctx context.Context, p []byte) (int, error) {
	if ctx.Done() == nil {
		return r.Read(p)
	}
	prev := r.interrupt.hostFn.Load()
	r.interrupt.setHost(func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return prev != nil && (*prev)()
		}
	})
	defer func() {
		if prev != nil {
			r.interrupt.setHost(*prev)
		} else {
			r.interrupt.setHost(nil)
		}
	}()
	return r.Read(p)
}

// Seek implements io.Seeker, plus the SeekSize extension (spec §4.4).
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	switch whence {
	case SeekSize:
		r.st.mu.Lock()
		size := r.st.logicalSize
		r.st.mu.Unlock()
		return size, nil
	case io.SeekCurrent:
		r.st.mu.Lock()
		target := r.st.logicalPos + offset
		r.st.mu.Unlock()
		return r.seekTo(target)
	case io.SeekStart:
		return r.seekTo(offset)
	default:
		return 0, ErrInvalidSeek
	}
}

func (r *Reader) seekTo(target int64) (int64, error) {
	if target < 0 {
		return 0, ErrInvalidSeek
	}

	r.st.mu.Lock()
	pos := r.st.logicalPos
	occupancy := int64(r.ring.Occupancy())
	size := r.st.logicalSize
	r.st.mu.Unlock()

	if target == pos {
		return pos, nil
	}

	if target > pos && target <= pos+occupancy+r.opts.ShortSeekThreshold {
		return r.shortSeek(pos, target)
	}

	if size <= 0 {
		return 0, ErrInvalidSeek
	}
	if target > size {
		return 0, ErrInvalidSeek
	}

	return r.submitSeek(target)
}

// shortSeek drains target-pos bytes via the skip-sink instead of issuing
// an inner seek (spec §4.4's fast path / §9's rationale). It returns
// target once all target-pos bytes are drained. If the stream ends before
// `target` is reached, it returns ErrInvalidSeek and the bytes drained so
// far stay consumed. An interrupt, or an inner read error hit before any
// byte was drained, is returned as is.
func (r *Reader) shortSeek(pos, target int64) (int64, error) {
	n, err := r.drain(nil, int(target-pos), true, true)
	if err != nil && err != io.EOF {
		return 0, err
	}
	newPos := pos + int64(n)
	if newPos != target {
		return 0, ErrInvalidSeek
	}
	return newPos, nil
}

// submitSeek posts a SeekRequest and waits for the producer to service it
// (spec §4.4's slow path).
func (r *Reader) submitSeek(target int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.interrupt.shouldInterrupt() {
		return 0, ErrInterrupted
	}

	r.st.seek = seekRequest{active: true, target: target}
	r.st.producerCv.Broadcast()

	for !r.st.seek.completed {
		if r.interrupt.shouldInterrupt() {
			return 0, ErrInterrupted
		}
		r.st.consumerCv.Wait()
	}

	ret, err := r.st.seek.ret, r.st.seek.err
	r.st.seek.completed = false
	if err != nil {
		return 0, err
	}
	return ret, nil
}

// drain is the shared implementation behind Read and the short-seek fast
// path (spec §4.3). With sink=true it discards bytes via ringbuf.Skip
// instead of copying into buf (used by shortSeek). With complete=true it
// keeps looping until exactly n bytes have been consumed or a terminal
// condition (EOF/error/interrupt) is hit, instead of returning as soon as
// any bytes are available.
func (r *Reader) drain(buf []byte, n int, sink, complete bool) (int, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	copied := 0
	remaining := n
	for {
		if r.interrupt.shouldInterrupt() {
			r.st.producerCv.Broadcast()
			return copied, ErrInterrupted
		}

		avail := r.ring.Occupancy()
		toCopy := remaining
		if toCopy > avail {
			toCopy = avail
		}

		if toCopy > 0 {
			if sink {
				r.ring.Skip(toCopy)
			} else {
				r.ring.ReadInto(buf[copied : copied+toCopy])
			}
			r.st.logicalPos += int64(toCopy)
			copied += toCopy
			remaining -= toCopy

			if remaining == 0 || !complete {
				r.st.producerCv.Broadcast()
				return copied, nil
			}
			continue
		}

		if r.st.eof {
			r.st.producerCv.Broadcast()
			if r.st.ioErr != nil {
				if copied > 0 {
					return copied, nil
				}
				return 0, r.st.ioErr
			}
			if copied > 0 {
				return copied, nil
			}
			return 0, io.EOF
		}

		r.st.producerCv.Broadcast()
		r.st.consumerCv.Wait()
	}
}

// Close signals the producer to abort, waits for it to exit, then
// releases the ring and the inner source. Close is idempotent: calling
// it more than once is safe and only the first call's error (from
// closing the inner source) is returned (spec §4.5/§7: "close never
// propagates join errors other than logging; it always releases
// resources").
func (r *Reader) Close() error {
	var closeErr error
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.st.mu.Lock()
		r.st.abort = true
		r.interrupt.setAbort()
		r.st.producerCv.Broadcast()
		r.st.mu.Unlock()

		r.wg.Wait()

		r.ring.Close()
		closeErr = r.src.Close()
	})
	return closeErr
}
