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

package asyncio_test

import (
	"bytes"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/async-reader/asyncio"
	"github.com/cloudwego/async-reader/asyncio/asynctest"
	"github.com/cloudwego/async-reader/source"
)

func testOptions() *asyncio.Options {
	return &asyncio.Options{
		BufferCapacity:     64 << 10,
		ShortSeekThreshold: 16 << 10,
		FillChunk:          4096,
	}
}

func TestReader_SequentialReadToEOF(t *testing.T) {
	const size = 10 << 20
	src := asynctest.NewPatternSource(size)

	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)
	defer r.Close()

	var got bytes.Buffer
	buf := make([]byte, 8192)
	for {
		n, err := r.Read(buf)
		got.Write(buf[:n])
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, int64(size), int64(got.Len()))
	assert.True(t, bytes.Equal(got.Bytes(), asynctest.Pattern(0, size)))
}

func TestReader_SeekAndReadPattern(t *testing.T) {
	const size = 1 << 20
	const target = 512 << 10 // well past ShortSeekThreshold, forces the slow path
	src := asynctest.NewPatternSource(size)

	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)
	defer r.Close()

	pos, err := r.Seek(target, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(target), pos)

	buf := make([]byte, 4096)
	n, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, asynctest.Pattern(target, int64(len(buf))), buf)
}

func TestReader_ShortSeekAvoidsInnerSeek(t *testing.T) {
	const size = 1 << 20
	src := asynctest.NewPatternSource(size)

	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 4096)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, int64(0), src.SeekCalls())

	// Within occupancy + ShortSeekThreshold of the current position: must
	// be served by draining, not by calling the inner source's Seek.
	pos, err := r.Seek(2048, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(len(buf)+2048), pos)
	assert.Equal(t, int64(0), src.SeekCalls())
}

func TestReader_SeekBeyondEndIsInvalid(t *testing.T) {
	const size = 1 << 10
	src := asynctest.NewPatternSource(size)

	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(size+1, io.SeekStart)
	assert.ErrorIs(t, err, asyncio.ErrInvalidSeek)
}

func TestReader_SeekSizeReturnsLogicalSize(t *testing.T) {
	const size = 12345
	src := asynctest.NewPatternSource(size)

	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Seek(0, asyncio.SeekSize)
	require.NoError(t, err)
	assert.Equal(t, int64(size), got)
}

func TestReader_NonSeekableSourceRejectsSeek(t *testing.T) {
	data := asynctest.Pattern(0, 4096)
	src := source.NewReader(bytes.NewReader(data))

	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.IsStreamed())

	buf := make([]byte, 1024)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, data[:1024], buf)

	// A non-seekable source has an unknown logical size, so a seek past
	// the short-seek window (buffered bytes plus ShortSeekThreshold) is
	// rejected.
	_, err = r.Seek(1<<20, io.SeekStart)
	assert.ErrorIs(t, err, asyncio.ErrInvalidSeek)
}

func TestReader_InterruptUnblocksPromptly(t *testing.T) {
	const size = 1 << 20
	src := asynctest.NewSlowPatternSource(size, time.Millisecond)

	var fire atomic.Bool
	opts := testOptions()
	opts.BufferCapacity = 4096
	opts.FillChunk = 64
	opts.Interrupt = func() bool { return fire.Load() }

	r, err := asyncio.OpenSource(src, opts)
	require.NoError(t, err)

	time.AfterFunc(20*time.Millisecond, func() { fire.Store(true) })

	start := time.Now()
	buf := make([]byte, size)
	_, err = io.ReadFull(r, buf)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, asyncio.ErrInterrupted)
	assert.Less(t, elapsed, 500*time.Millisecond)

	require.NoError(t, r.Close())
}

func TestReader_CloseIsIdempotentAndRejectsLaterReads(t *testing.T) {
	src := asynctest.NewPatternSource(1 << 20)
	r, err := asyncio.OpenSource(src, testOptions())
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Read(make([]byte, 16))
	assert.ErrorIs(t, err, asyncio.ErrClosed)
}
