// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"os"

	"github.com/cockroachdb/errors"
)

// ByteSource is the random-access byte-source contract consumed by this
// reader (§6 "Byte-source contract"): read(offset, length) -> bytes. It
// must be durable and positional; concurrent calls are permitted; partial
// reads are not — a short read is reported as ErrTruncated.
type ByteSource interface {
	ReadAt(offset, length int64) ([]byte, error)

	// Close releases any resources held by the source (e.g. an *os.File).
	// It is a no-op for in-memory sources.
	Close() error
}

// fileSource adapts an *os.File to ByteSource. os.File.ReadAt is safe for
// concurrent use, matching the "concurrent calls permitted" clause.
type fileSource struct {
	f *os.File
}

// OpenFile opens name and returns a ByteSource backed by it. The caller
// should Close the returned Reader (which in turn closes this source).
func OpenFile(name string) (ByteSource, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: opening file")
	}
	return &fileSource{f: f}, nil
}

func (s *fileSource) ReadAt(offset, length int64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	n, err := s.f.ReadAt(buf, offset)
	if err != nil || int64(n) != length {
		return nil, errors.Wrapf(ErrTruncated, "read %d bytes at %d, got %d (err=%v)", length, offset, n, err)
	}
	return buf, nil
}

func (s *fileSource) Close() error {
	return s.f.Close()
}

// memSource adapts an in-memory byte slice to ByteSource.
type memSource struct {
	buf []byte
}

// OpenBytes wraps an in-memory buffer as a ByteSource.
func OpenBytes(buf []byte) ByteSource {
	return &memSource{buf: buf}
}

func (s *memSource) ReadAt(offset, length int64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if offset < 0 || offset+length > int64(len(s.buf)) {
		return nil, errors.Wrapf(ErrTruncated, "read %d bytes at %d exceeds buffer length %d", length, offset, len(s.buf))
	}
	return s.buf[offset : offset+length], nil
}

func (s *memSource) Close() error { return nil }
