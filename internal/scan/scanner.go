// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package scan implements BlockScanner: a big-endian cursor over an
// immutable byte buffer, parameterized by the MDict version/encoding
// profile derived from the header. It also owns the compressed/encrypted
// block unwrap (read_block) and the keyword-index decryption keying.
//
// This mirrors the role sstable/table.go's footer/block-handle parsing
// plays for pebble: a small set of fixed-width and varint-ish readers that
// every higher-level decoder builds on, plus the one place that knows how
// to turn a compressed on-disk block into a scanner over its plaintext.
package scan

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zlib"
	"github.com/woozymasta/lzo"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/mdictgo/mdict/internal/ripemd128"
)

// Encoding identifies the text encoding used for header strings, keywords
// and definitions.
type Encoding int

// Supported text encodings, per HeaderAttributes.encoding (§3).
const (
	EncodingUTF16 Encoding = iota
	EncodingUTF8
	EncodingGBK
	EncodingBIG5
)

// lzoMaxBlockSize bounds LZO1x decompressed block size (§4.1), used as a
// sanity check before allocating output buffers.
const lzoMaxBlockSize = 1308672

// Profile captures the version-dependent scanner behavior derived from the
// header (§3 "Version-dependent scanner profile").
type Profile struct {
	// Version is 1 or 2 (engine_version >= 2.0 is v2).
	Version int
	Enc     Encoding
}

// BytesPerUnit is 2 for UTF-16 text, else 1.
func (p Profile) BytesPerUnit() int {
	if p.Enc == EncodingUTF16 {
		return 2
	}
	return 1
}

// TextTail is the extra trailing NUL unit advanced past sized text on v2,
// zero on v1.
func (p Profile) TextTail() int {
	if p.Version >= 2 {
		return p.BytesPerUnit()
	}
	return 0
}

// Scanner is a cursor over an immutable byte buffer.
type Scanner struct {
	buf     []byte
	pos     int
	profile Profile
}

// New returns a Scanner positioned at the start of buf.
func New(buf []byte, profile Profile) *Scanner {
	return &Scanner{buf: buf, profile: profile}
}

// Position returns the current absolute offset within the buffer.
func (s *Scanner) Position() int { return s.pos }

// Len returns the total buffer length.
func (s *Scanner) Len() int { return len(s.buf) }

// Remaining returns the number of unread bytes.
func (s *Scanner) Remaining() int { return len(s.buf) - s.pos }

// Seek moves the cursor to an absolute offset.
func (s *Scanner) Seek(absolute int) error {
	if absolute < 0 || absolute > len(s.buf) {
		return truncatedf("seek to %d out of bounds (len %d)", absolute, len(s.buf))
	}
	s.pos = absolute
	return nil
}

// Advance moves the cursor forward by n bytes.
func (s *Scanner) Advance(n int) error {
	return s.Seek(s.pos + n)
}

func (s *Scanner) need(n int) error {
	if s.Remaining() < n {
		return truncatedf("need %d bytes, have %d", n, s.Remaining())
	}
	return nil
}

func truncatedf(format string, args ...interface{}) error {
	return errors.Wrapf(errTruncated, format, args...)
}

var errTruncated = errors.New("scan: truncated read")

// ErrTruncated is the sentinel returned (wrapped) when a read runs past the
// end of the buffer, or a v2 numeric field's high word is nonzero.
var ErrTruncated = errTruncated

// ReadU8 reads one byte.
func (s *Scanner) ReadU8() (byte, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// ReadU16BE reads a big-endian uint16.
func (s *Scanner) ReadU16BE() (uint16, error) {
	if err := s.need(2); err != nil {
		return 0, err
	}
	v := uint16(s.buf[s.pos])<<8 | uint16(s.buf[s.pos+1])
	s.pos += 2
	return v, nil
}

// ReadU32BE reads a big-endian uint32.
func (s *Scanner) ReadU32BE() (uint32, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	v := uint32(s.buf[s.pos])<<24 | uint32(s.buf[s.pos+1])<<16 |
		uint32(s.buf[s.pos+2])<<8 | uint32(s.buf[s.pos+3])
	s.pos += 4
	return v, nil
}

// ReadShort reads one byte for v1, or a big-endian uint16 for v2 (§4.1).
func (s *Scanner) ReadShort() (uint64, error) {
	if s.profile.Version >= 2 {
		v, err := s.ReadU16BE()
		return uint64(v), err
	}
	v, err := s.ReadU8()
	return uint64(v), err
}

// ReadNum reads a big-endian uint32 for v1. For v2 it reads 64 bits
// big-endian and returns only the low 32, failing with ErrTruncated if the
// high word is nonzero (§4.1, §9 "v2 numeric truncation").
func (s *Scanner) ReadNum() (uint32, error) {
	if s.profile.Version >= 2 {
		hi, err := s.ReadU32BE()
		if err != nil {
			return 0, err
		}
		lo, err := s.ReadU32BE()
		if err != nil {
			return 0, err
		}
		if hi != 0 {
			return 0, truncatedf("64-bit field has nonzero high word 0x%x (file exceeds 4 GiB)", hi)
		}
		return lo, nil
	}
	return s.ReadU32BE()
}

// ReadSizedText reads units*BytesPerUnit bytes, decodes them under the
// scanner's encoding, then advances an extra TextTail bytes (§4.1).
func (s *Scanner) ReadSizedText(units uint64) (string, error) {
	n := int(units) * s.profile.BytesPerUnit()
	if err := s.need(n); err != nil {
		return "", err
	}
	raw := s.buf[s.pos : s.pos+n]
	s.pos += n
	text, err := s.decode(raw)
	if err != nil {
		return "", err
	}
	if tail := s.profile.TextTail(); tail > 0 {
		if err := s.Advance(tail); err != nil {
			return "", err
		}
	}
	return text, nil
}

// ReadNulText scans forward for a NUL terminator (one BytesPerUnit-wide
// zero unit), decodes up to it, and advances past the terminator (§4.1).
func (s *Scanner) ReadNulText() (string, error) {
	unit := s.profile.BytesPerUnit()
	start := s.pos
	i := s.pos
	for {
		if i+unit > len(s.buf) {
			return "", truncatedf("unterminated text starting at %d", start)
		}
		isZero := true
		for k := 0; k < unit; k++ {
			if s.buf[i+k] != 0 {
				isZero = false
				break
			}
		}
		if isZero {
			break
		}
		i += unit
	}
	text, err := s.decode(s.buf[start:i])
	if err != nil {
		return "", err
	}
	s.pos = i + unit
	return text, nil
}

// ReadRaw returns a view of n bytes and advances past them.
func (s *Scanner) ReadRaw(n int) ([]byte, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// SkipChecksum advances 4 bytes.
func (s *Scanner) SkipChecksum() error {
	return s.Advance(4)
}

func (s *Scanner) decode(raw []byte) (string, error) {
	switch s.profile.Enc {
	case EncodingUTF16:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", errors.Wrap(err, "scan: utf-16 decode")
		}
		return string(out), nil
	case EncodingGBK:
		out, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
		if err != nil {
			return "", errors.Wrap(err, "scan: gbk decode")
		}
		return string(out), nil
	case EncodingBIG5:
		out, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
		if err != nil {
			return "", errors.Wrap(err, "scan: big5 decode")
		}
		return string(out), nil
	default: // EncodingUTF8
		return string(raw), nil
	}
}

// ReadBlock performs the compression/decryption unwrap described in §4.1.
//
// The byte at the current position is the compression tag: 0 raw, 1 LZO1x,
// 2 zlib. It is followed by 3 zero bytes and a 4-byte checksum (7 bytes, 8
// with the tag). For raw blocks on v2 all 8 header bytes are skipped and
// reading continues in place; for v1 raw blocks the cursor is left just
// past the 1-byte tag. For compressed blocks, the remaining comp_size-8
// bytes are the compressed payload; when decrypt is true they are first
// decrypted in place using RIPEMD-128 of the checksum bytes plus the fixed
// suffix {0x95, 0x36, 0x00, 0x00}. The outer cursor always ends up
// comp_size bytes past its start; the returned Scanner wraps the
// decompressed buffer.
func (s *Scanner) ReadBlock(compSize, decompSize int, decrypt bool) (*Scanner, error) {
	if compSize < 8 {
		return nil, truncatedf("compressed block size %d too small for 8-byte block header", compSize)
	}
	start := s.pos
	tag, err := s.ReadU8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case 0: // raw
		if s.profile.Version >= 2 {
			if err := s.Seek(start + 8); err != nil {
				return nil, err
			}
		}
		n := decompSize
		if remaining := len(s.buf) - s.pos; n > remaining {
			n = remaining
		}
		raw := s.buf[s.pos : s.pos+n]
		if err := s.Seek(start + compSize); err != nil {
			return nil, err
		}
		return New(raw, s.profile), nil

	case 1, 2: // LZO1x, zlib
		if err := s.need(7); err != nil {
			return nil, err
		}
		var checksum [4]byte
		copy(checksum[:], s.buf[s.pos+3:s.pos+7])
		if err := s.Advance(7); err != nil {
			return nil, err
		}
		payload, err := s.ReadRaw(compSize - 8)
		if err != nil {
			return nil, err
		}
		payload = append([]byte(nil), payload...) // own copy: decrypt/decompress mutate or alias

		if decrypt {
			decryptPayload(payload, checksum)
		}

		var out []byte
		if tag == 1 {
			out, err = decompressLZO(payload, decompSize)
		} else {
			out, err = decompressZlib(payload)
		}
		if err != nil {
			return nil, err
		}
		if err := s.Seek(start + compSize); err != nil {
			return nil, err
		}
		return New(out, s.profile), nil

	default:
		return nil, errBadCompressionTag(tag)
	}
}

func errBadCompressionTag(tag byte) error {
	return errors.Wrapf(errBadTag, "tag %d", tag)
}

var errBadTag = errors.New("scan: bad compression tag")

// ErrBadCompressionTag is the sentinel wrapped when the tag byte is not 0/1/2.
var ErrBadCompressionTag = errBadTag

// ErrDecompressionFailure is the sentinel wrapped on LZO/zlib failures.
var ErrDecompressionFailure = errors.New("scan: decompression failure")

func decryptPayload(payload []byte, checksum [4]byte) {
	var key [8]byte
	copy(key[:4], checksum[:])
	key[4], key[5], key[6], key[7] = 0x95, 0x36, 0x00, 0x00
	permuted := ripemd128.Sum128(key[:])

	prev := byte(0x36)
	for i := range payload {
		orig := payload[i]
		b := orig
		b = (b >> 4) | ((b << 4) & 0xF0)
		b = b ^ prev ^ byte(i&0xFF) ^ permuted[i%16]
		prev = orig
		payload[i] = b
	}
}

func decompressLZO(payload []byte, decompSize int) ([]byte, error) {
	if decompSize > lzoMaxBlockSize {
		return nil, errors.Wrapf(ErrDecompressionFailure, "decompressed size %d exceeds LZO1x block bound %d", decompSize, lzoMaxBlockSize)
	}
	out, err := lzo.Decompress1X(payload, decompSize)
	if err != nil {
		return nil, errors.Wrapf(ErrDecompressionFailure, "lzo1x: expected %d bytes", decompSize)
	}
	return out, nil
}

func decompressZlib(payload []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(ErrDecompressionFailure, "zlib: bad header")
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(ErrDecompressionFailure, "zlib: stream error")
	}
	return out, nil
}
