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

import "os"

func init() {
	Register("file", openFile)
}

func openFile(path string, _ InterruptFunc) (Source, error) {
	return NewFile(path)
}

// fileSource wraps an *os.File as a Source: seekable, known size.
type fileSource struct {
	f    *os.File
	size int64
}

// NewFile opens path for reading and wraps it as a Source.
func NewFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSource{f: f, size: fi.Size()}, nil
}

func (s *fileSource) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *fileSource) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *fileSource) Size() (int64, error) { return s.size, nil }

func (s *fileSource) IsStreamed() bool { return false }

func (s *fileSource) Close() error { return s.f.Close() }
