// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package ripemd128 implements the RIPEMD-128 cryptographic hash.
//
// MDict's keyword-index decryptor keys its stream cipher with RIPEMD-128 of
// an 8-byte seed. No RIPEMD-128 implementation exists anywhere in the
// reachable dependency graph (golang.org/x/crypto ships RIPEMD-160, a
// different digest size built from a different message schedule), so this
// is hand-rolled directly from the published algorithm rather than adapted
// from a library. It follows the shape of a standard library block hash
// (BlockSize/Size constants, a hash.Hash implementation, a one-shot Sum
// helper) the way golang.org/x/crypto's block hashes do.
package ripemd128

import "hash"

// Size is the size, in bytes, of a RIPEMD-128 digest.
const Size = 16

// BlockSize is the block size, in bytes, of the RIPEMD-128 hash function.
const BlockSize = 64

type digest struct {
	s   [4]uint32
	x   [BlockSize]byte
	nx  int
	len uint64
}

// New returns a new hash.Hash computing the RIPEMD-128 digest.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

// Sum128 returns the RIPEMD-128 digest of data.
func Sum128(data []byte) [Size]byte {
	d := new(digest)
	d.Reset()
	d.Write(data)
	var out [Size]byte
	copy(out[:], d.Sum(nil))
	return out
}

func (d *digest) Reset() {
	d.s[0], d.s[1], d.s[2], d.s[3] = 0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476
	d.nx = 0
	d.len = 0
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (n int, err error) {
	n = len(p)
	d.len += uint64(n)
	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx == BlockSize {
			block(d, d.x[:])
			d.nx = 0
		}
	}
	for len(p) >= BlockSize {
		block(d, p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return
}

func (d *digest) Sum(in []byte) []byte {
	// Copy so callers can keep writing (or not) after Sum, matching the
	// convention of the stdlib hash implementations.
	dd := *d
	tail := make([]byte, 0, BlockSize)
	tail = append(tail, dd.x[:dd.nx]...)
	tail = append(tail, 0x80)
	for len(tail)%BlockSize != 56 {
		tail = append(tail, 0)
	}
	bitLen := dd.len * 8
	for i := 0; i < 8; i++ {
		tail = append(tail, byte(bitLen>>(8*uint(i))))
	}
	for len(tail) > 0 {
		block(&dd, tail[:BlockSize])
		tail = tail[BlockSize:]
	}
	out := make([]byte, 0, Size)
	for _, w := range dd.s {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return append(in, out...)
}

func rol(x uint32, n uint) uint32 { return x<<n | x>>(32-n) }

func f1(x, y, z uint32) uint32 { return x ^ y ^ z }
func f2(x, y, z uint32) uint32 { return (x & y) | (^x & z) }
func f3(x, y, z uint32) uint32 { return (x | ^y) ^ z }
func f4(x, y, z uint32) uint32 { return (x & z) | (y & ^z) }

var rL = [64]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8,
	3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12,
	1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2,
}

var rR = [64]int{
	5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12,
	6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2,
	15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13,
	8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14,
}

var sL = [64]uint{
	11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8,
	7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12,
	11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5,
	11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12,
}

var sR = [64]uint{
	8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6,
	9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11,
	9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5,
	15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8,
}

var kL = [4]uint32{0x00000000, 0x5a827999, 0x6ed9eba1, 0x8f1bbcdc}
var kR = [4]uint32{0x50a28be6, 0x5c4dd124, 0x6d703ef3, 0x00000000}

func block(d *digest, p []byte) {
	var x [16]uint32
	for i := range x {
		x[i] = uint32(p[i*4]) | uint32(p[i*4+1])<<8 | uint32(p[i*4+2])<<16 | uint32(p[i*4+3])<<24
	}

	a, b, c, dd := d.s[0], d.s[1], d.s[2], d.s[3]
	aa, bb, cc, ddd := d.s[0], d.s[1], d.s[2], d.s[3]

	for j := 0; j < 64; j++ {
		round := j / 16
		var fl, fr uint32
		switch round {
		case 0:
			fl, fr = f1(b, c, dd), f4(bb, cc, ddd)
		case 1:
			fl, fr = f2(b, c, dd), f3(bb, cc, ddd)
		case 2:
			fl, fr = f3(b, c, dd), f2(bb, cc, ddd)
		case 3:
			fl, fr = f4(b, c, dd), f1(bb, cc, ddd)
		}

		t := rol(a+fl+x[rL[j]]+kL[round], sL[j])
		a, dd, c, b = dd, c, b, t

		t = rol(aa+fr+x[rR[j]]+kR[round], sR[j])
		aa, ddd, cc, bb = ddd, cc, bb, t
	}

	t := d.s[1] + c + ddd
	d.s[1] = d.s[2] + dd + aa
	d.s[2] = d.s[3] + a + bb
	d.s[3] = d.s[0] + b + cc
	d.s[0] = t
}
