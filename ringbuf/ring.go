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

// Package ringbuf implements the fixed-capacity byte FIFO used by package
// asyncio to hold read-ahead data. Ring is not safe for concurrent use;
// the caller (package asyncio) serializes access with its own mutex.
package ringbuf

import (
	"errors"

	"github.com/bytedance/gopkg/lang/mcache"
)

// ErrBufferFull is returned by WriteFrom when the ring has no free space at all.
var ErrBufferFull = errors.New("ringbuf: buffer full")

// Filler mirrors io.Reader: it fills dst and reports how much it wrote.
// A return of (0, io.EOF) marks end of stream; any other non-nil err is
// propagated verbatim to the caller of WriteFrom.
type Filler func(dst []byte) (int, error)

// Ring is a bounded FIFO of bytes, backed by a single contiguous allocation
// obtained from mcache so repeated Open/Close cycles reuse pooled memory,
// the same allocator bufiox.DefaultReader uses for its chunk buffers.
type Ring struct {
	buf  []byte
	head int // next byte to read
	tail int // next byte to write
	full bool
}

// New allocates a ring with the given capacity in bytes.
func New(capacity int) *Ring {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Ring{buf: mcache.Malloc(capacity)}
}

// Close releases the backing allocation. The Ring must not be used afterwards.
func (r *Ring) Close() {
	if r.buf != nil {
		mcache.Free(r.buf)
		r.buf = nil
	}
}

// Capacity returns the fixed capacity of the ring.
func (r *Ring) Capacity() int {
	return len(r.buf)
}

// Occupancy returns the number of bytes currently buffered.
func (r *Ring) Occupancy() int {
	if r.full {
		return len(r.buf)
	}
	if r.tail >= r.head {
		return r.tail - r.head
	}
	return len(r.buf) - r.head + r.tail
}

// Space returns the number of bytes free for writing.
func (r *Ring) Space() int {
	return len(r.buf) - r.Occupancy()
}

// Reset empties the ring. Called by the producer only after it performs a
// seek on the inner source (spec §4.1/§4.2): whatever was buffered no
// longer corresponds to the source at the new logical position.
func (r *Ring) Reset() {
	r.head = 0
	r.tail = 0
	r.full = false
}

// WriteFrom reserves up to n bytes of free space -- one contiguous run, or
// two runs if the reservation wraps around the end of the backing array --
// and calls fill once per run to populate it. It stops at the first run
// that fill does not completely fill (io.EOF, an error, or a short read),
// returning the total bytes accepted and that run's error.
func (r *Ring) WriteFrom(fill Filler, n int) (int, error) {
	if r.Space() == 0 {
		return 0, ErrBufferFull
	}
	seg1, seg2 := r.Reserve(n)
	total := 0
	for _, seg := range [][]byte{seg1, seg2} {
		if len(seg) == 0 {
			continue
		}
		nn, err := fill(seg)
		if nn > 0 {
			total += nn
		}
		if nn < len(seg) {
			r.Commit(total)
			return total, err
		}
	}
	r.Commit(total)
	return total, nil
}

// Reserve returns up to two destination slices -- a single run, or two runs
// if the reservation wraps around the end of the backing array -- covering
// at most n bytes of free space. The caller fills them (its own blocking
// I/O may run without the ring's lock held, since this memory is not yet
// visible to any reader) and then calls Commit with the number of bytes it
// actually wrote, in order, before the next Reserve.
func (r *Ring) Reserve(n int) (seg1, seg2 []byte) {
	if space := r.Space(); n > space {
		n = space
	}
	if n <= 0 {
		return nil, nil
	}
	firstLen := n
	if avail := len(r.buf) - r.tail; firstLen > avail {
		firstLen = avail
	}
	seg1 = r.buf[r.tail : r.tail+firstLen]
	if remaining := n - firstLen; remaining > 0 {
		seg2 = r.buf[:remaining]
	}
	return seg1, seg2
}

// Commit advances the tail by n bytes, which must not exceed the total
// length of the slices returned by the preceding Reserve call.
func (r *Ring) Commit(n int) {
	if n <= 0 {
		return
	}
	r.tail = (r.tail + n) % len(r.buf)
	if r.tail == r.head {
		r.full = true
	}
}

// ReadInto copies up to len(dst) buffered bytes into dst and advances past
// them, returning the number of bytes copied.
func (r *Ring) ReadInto(dst []byte) int {
	n := len(dst)
	if occ := r.Occupancy(); n > occ {
		n = occ
	}
	if n == 0 {
		return 0
	}
	copied := 0
	for copied < n {
		runLen := n - copied
		if avail := len(r.buf) - r.head; runLen > avail {
			runLen = avail
		}
		copy(dst[copied:copied+runLen], r.buf[r.head:r.head+runLen])
		r.advanceHead(runLen)
		copied += runLen
	}
	return copied
}

// Skip advances past up to n buffered bytes without copying them, used by
// the consumer's short-seek fast path (spec §4.4). Returns the number of
// bytes actually skipped.
func (r *Ring) Skip(n int) int {
	if occ := r.Occupancy(); n > occ {
		n = occ
	}
	if n <= 0 {
		return 0
	}
	r.advanceHead(n)
	return n
}

func (r *Ring) advanceHead(n int) {
	if n == 0 {
		return
	}
	r.full = false
	r.head = (r.head + n) % len(r.buf)
}
