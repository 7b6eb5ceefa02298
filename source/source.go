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

// Package source declares the inner byte-source contract that package
// asyncio's producer pulls from (spec §6 "Consumed: the inner source
// contract"), plus a small opener registry and two concrete sources.
//
// Only the producer goroutine owned by an *asyncio.Reader ever calls into
// a Source after Open returns; callers of asyncio never touch a Source
// directly.
package source

import (
	"errors"
)

// ErrUnknownScheme is returned by Open when no Opener was Register-ed for
// the URI's scheme.
var ErrUnknownScheme = errors.New("source: unknown scheme")

// Source is the narrow capability set {read, seek, size, close} spec §9
// asks be expressed as an interface, not a base class, so any byte-stream
// origin (file, HTTP body, in-memory buffer, ...) can be wrapped.
type Source interface {
	// Read behaves like io.Reader: n > 0 bytes read, or err set (io.EOF at
	// end of stream, any other error on failure). Read may block.
	Read(p []byte) (n int, err error)

	// Seek behaves like io.Seeker. Sources that cannot seek return an
	// error for every call. asyncio never probes Seek: it rejects seeks
	// up front only from Size() <= 0 or IsStreamed(), and a Seek error
	// otherwise is returned by the asyncio seek that issued it.
	Seek(offset int64, whence int) (int64, error)

	// Size reports the total byte length of the source, or a value <= 0
	// if unknown (e.g. a live, non-seekable stream).
	Size() (int64, error)

	// IsStreamed reports whether the source should be treated as a live
	// stream (no meaningful Seek/Size) regardless of what Seek/Size return.
	IsStreamed() bool

	Close() error
}

// InterruptFunc is a caller-supplied predicate; a Source implementation
// that performs its own blocking I/O below the Read/Seek calls (e.g. one
// built on raw sockets) may poll it to unblock promptly. Sources built on
// top of a context-aware client instead thread the equivalent context.Context
// through directly; this type exists for the ones that can't.
type InterruptFunc func() bool

// Opener constructs a Source from the scheme-stripped remainder of a URI.
type Opener func(uri string, interrupt InterruptFunc) (Source, error)

var openers = map[string]Opener{}

// Register associates a URI scheme (without the trailing "://" or ":")
// with an Opener, following the by-name registration pattern of
// protocol/thrift/apache.RegisterNewTBinaryProtocol in this module's
// sibling packages.
func Register(scheme string, opener Opener) {
	openers[scheme] = opener
}

// Open looks scheme up in the registry and passes rest and interrupt to
// the matching Opener. It never itself opens a file or socket.
func Open(scheme, rest string, interrupt InterruptFunc) (Source, error) {
	opener, ok := openers[scheme]
	if !ok {
		return nil, ErrUnknownScheme
	}
	return opener(rest, interrupt)
}
