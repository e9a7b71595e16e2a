// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"github.com/cockroachdb/errors"

	"github.com/mdictgo/mdict/internal/scan"
)

// Sentinel error kinds, matched with errors.Is. Open errors are terminal for
// a Reader; query errors leave Reader state unchanged beyond the already
// advanced Trail.
var (
	// ErrInvalidHeader covers XML parse failure, a missing root element, or a
	// missing required header attribute.
	ErrInvalidHeader = errors.New("mdict: invalid header")

	// ErrUnsupportedVersion is returned when engine_version cannot be
	// interpreted as v1 or v2.
	ErrUnsupportedVersion = errors.New("mdict: unsupported engine version")

	// ErrUnsupportedEncryption is returned when the keyword-header encryption
	// bit is set; that mode requires a per-dictionary license key this reader
	// does not handle.
	ErrUnsupportedEncryption = errors.New("mdict: unsupported encryption mode")

	// ErrTruncated covers a short read from the byte source, or a v2 numeric
	// field whose high 32 bits are nonzero (file exceeds 4 GiB).
	// It is the same sentinel the block scanner wraps.
	ErrTruncated = scan.ErrTruncated

	// ErrBadCompressionTag is returned when a block's compression tag byte is
	// not 0, 1, or 2. It is the same sentinel the block scanner wraps.
	ErrBadCompressionTag = scan.ErrBadCompressionTag

	// ErrDecompressionFailure wraps an LZO or zlib decompression error. It is
	// the same sentinel the block scanner wraps.
	ErrDecompressionFailure = scan.ErrDecompressionFailure

	// ErrOutOfRange is returned when a record offset is not covered by any
	// record block.
	ErrOutOfRange = errors.New("mdict: record offset out of range")

	// ErrResourceNotFound is returned when an MDD path has no match.
	ErrResourceNotFound = errors.New("mdict: resource not found")

	// ErrLinkLoop is returned when @@@LINK= redirection exceeds the
	// configured depth bound.
	ErrLinkLoop = errors.New("mdict: link redirection too deep")
)

// corruptf builds an error wrapping ErrInvalidHeader with a formatted
// message, playing the role base.CorruptionErrorf plays in sstable/table.go.
// The arguments are not marked with errors.Safe.
func corruptf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidHeader, format, args...)
}
