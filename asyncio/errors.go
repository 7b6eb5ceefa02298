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

import "errors"

// Sentinel errors. io.EOF is reused directly for spec's EOF kind rather
// than redeclared, following how errNegativeCount/io.EOF are mixed
// freely in bufiox and the other ring buffers in this corpus.
var (
	// ErrClosed is returned by Read, ReadContext and Seek on a Reader
	// after Close.
	ErrClosed = errors.New("asyncio: reader closed")

	// ErrInterrupted is spec's EXIT: the interrupt predicate fired, or
	// Close was called, while a read or seek was in flight.
	ErrInterrupted = errors.New("asyncio: interrupted")

	// ErrInvalidSeek is spec's EINVAL: bad whence, negative target,
	// non-seekable source, or a target past the end.
	ErrInvalidSeek = errors.New("asyncio: invalid seek")
)
