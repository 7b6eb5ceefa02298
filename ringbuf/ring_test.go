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

package ringbuf

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(start, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte((start + i) % 251)
	}
	return b
}

func TestRing_BasicWriteRead(t *testing.T) {
	r := New(16)
	defer r.Close()

	require.Equal(t, 16, r.Capacity())
	require.Equal(t, 0, r.Occupancy())
	require.Equal(t, 16, r.Space())

	src := pattern(0, 10)
	n, err := r.WriteFrom(func(dst []byte) (int, error) {
		return copy(dst, src), nil
	}, 10)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	assert.Equal(t, 10, r.Occupancy())
	assert.Equal(t, 6, r.Space())

	dst := make([]byte, 10)
	got := r.ReadInto(dst)
	assert.Equal(t, 10, got)
	assert.Equal(t, src, dst)
	assert.Equal(t, 0, r.Occupancy())
}

func TestRing_WrapAround(t *testing.T) {
	r := New(8)
	defer r.Close()

	// fill 6, drain 6, so head/tail sit mid-array, then write 6 more which must wrap.
	n, err := r.WriteFrom(func(dst []byte) (int, error) { return copy(dst, pattern(0, len(dst))), nil }, 6)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	r.Skip(6)
	require.Equal(t, 0, r.Occupancy())

	var calls int
	off := 6
	n, err = r.WriteFrom(func(dst []byte) (int, error) {
		calls++
		m := copy(dst, pattern(off, len(dst)))
		off += m
		return m, nil
	}, 6)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	assert.Equal(t, 2, calls, "a wrapped write should invoke the filler twice")

	dst := make([]byte, 6)
	got := r.ReadInto(dst)
	require.Equal(t, 6, got)
	assert.Equal(t, pattern(6, 6), dst)
}

func TestRing_WriteFromStopsOnEOF(t *testing.T) {
	r := New(32)
	defer r.Close()

	n, err := r.WriteFrom(func(dst []byte) (int, error) {
		m := copy(dst, pattern(0, 3))
		return m, io.EOF
	}, 10)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, r.Occupancy())
}

func TestRing_WriteFromClampsToSpace(t *testing.T) {
	r := New(4)
	defer r.Close()

	n, err := r.WriteFrom(func(dst []byte) (int, error) {
		return copy(dst, pattern(0, len(dst))), nil
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, r.Occupancy())
	assert.Equal(t, 0, r.Space())
}

func TestRing_SkipAdvancesWithoutCopy(t *testing.T) {
	r := New(16)
	defer r.Close()

	_, err := r.WriteFrom(func(dst []byte) (int, error) {
		return copy(dst, pattern(0, len(dst))), nil
	}, 16)
	require.NoError(t, err)

	skipped := r.Skip(10)
	assert.Equal(t, 10, skipped)
	assert.Equal(t, 6, r.Occupancy())

	dst := make([]byte, 6)
	r.ReadInto(dst)
	assert.Equal(t, pattern(10, 6), dst)
}

func TestRing_Reset(t *testing.T) {
	r := New(16)
	defer r.Close()

	_, err := r.WriteFrom(func(dst []byte) (int, error) {
		return copy(dst, pattern(0, len(dst))), nil
	}, 16)
	require.NoError(t, err)
	require.Equal(t, 16, r.Occupancy())

	r.Reset()
	assert.Equal(t, 0, r.Occupancy())
	assert.Equal(t, 16, r.Space())
}

func TestRing_FullThenEmptyRoundTrips(t *testing.T) {
	r := New(8)
	defer r.Close()

	for round := 0; round < 4; round++ {
		n, err := r.WriteFrom(func(dst []byte) (int, error) {
			return copy(dst, pattern(round*8, len(dst))), nil
		}, 8)
		require.NoError(t, err)
		require.Equal(t, 8, n)

		dst := make([]byte, 8)
		got := r.ReadInto(dst)
		require.Equal(t, 8, got)
		assert.Equal(t, pattern(round*8, 8), dst)
	}
}
