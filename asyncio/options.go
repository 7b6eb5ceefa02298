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
	"log"

	"github.com/cloudwego/async-reader/source"
)

// Tunables from spec §6, given as overridable defaults the way
// concurrency/gopool.Option / gopool.DefaultOption() are.
const (
	// DefaultBufferCapacity is spec's BUFFER_CAPACITY.
	DefaultBufferCapacity = 4 << 20
	// DefaultShortSeekThreshold is spec's SHORT_SEEK_THRESHOLD.
	DefaultShortSeekThreshold = 256 << 10
	// DefaultFillChunk is spec's FILL_CHUNK.
	DefaultFillChunk = 4096
)

// Options configures an *asyncio.Reader. There is no environment variable
// or config-file support (spec §6): everything is supplied by the caller.
type Options struct {
	// BufferCapacity is the ring's fixed capacity in bytes.
	BufferCapacity int

	// ShortSeekThreshold bounds how far past the buffered window a forward
	// seek may land and still be served by draining the ring instead of
	// issuing an inner seek (spec §4.4).
	ShortSeekThreshold int64

	// FillChunk bounds a single producer fill, so one inner Read can't
	// hold up interrupt responsiveness for long (spec §4.2).
	FillChunk int

	// Interrupt is polled by the producer loop and by every consumer wait
	// loop; a true result aborts the in-flight call with ErrInterrupted.
	// May be nil.
	Interrupt source.InterruptFunc

	// Logger receives diagnostics about producer-side faults. Defaults to
	// log.Default(), matching gopool's "override, std-log default" style.
	Logger *log.Logger
}

// DefaultOptions returns an Options populated with spec's constants.
func DefaultOptions() *Options {
	return &Options{
		BufferCapacity:     DefaultBufferCapacity,
		ShortSeekThreshold: DefaultShortSeekThreshold,
		FillChunk:          DefaultFillChunk,
		Logger:             log.Default(),
	}
}

func (o *Options) withDefaults() *Options {
	merged := *DefaultOptions()
	if o == nil {
		return &merged
	}
	if o.BufferCapacity > 0 {
		merged.BufferCapacity = o.BufferCapacity
	}
	if o.ShortSeekThreshold > 0 {
		merged.ShortSeekThreshold = o.ShortSeekThreshold
	}
	if o.FillChunk > 0 {
		merged.FillChunk = o.FillChunk
	}
	if o.Interrupt != nil {
		merged.Interrupt = o.Interrupt
	}
	if o.Logger != nil {
		merged.Logger = o.Logger
	}
	return &merged
}
