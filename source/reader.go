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

package source

import (
	"errors"
	"io"
)

// ErrNotSeekable is returned by readerSource.Seek for every call: it wraps
// a plain io.Reader, which by definition cannot seek or report a size.
var ErrNotSeekable = errors.New("source: underlying reader is not seekable")

// readerSource wraps an arbitrary io.Reader (e.g. an HTTP response body)
// that offers no seek or size capability and must be treated as a live,
// streamed source (spec §8 scenario 5). Reads are passed straight through:
// the producer already pulls FillChunk-sized reads into the ring, so a
// second buffering layer underneath would only add a redundant copy.
type readerSource struct {
	r      io.Reader
	closer io.Closer // nil if r didn't implement io.Closer
}

// NewReader wraps r as a non-seekable, size-unknown Source. If r also
// implements io.Closer, Close delegates to it; otherwise Close is a no-op.
func NewReader(r io.Reader) Source {
	s := &readerSource{r: r}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *readerSource) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *readerSource) Seek(int64, int) (int64, error) { return 0, ErrNotSeekable }

func (s *readerSource) Size() (int64, error) { return -1, nil }

func (s *readerSource) IsStreamed() bool { return true }

func (s *readerSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
