// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ripemd128

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSum128KnownVectors checks against the reference test vectors from the
// RIPEMD-128 specification (Dobbertin, Bosselaers, Preneel).
func TestSum128KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "cdf26213a150dc3ecb610f18f6b38b46"},
		{"a", "86be7afa339d0fc7cfc785e72f578d33"},
		{"abc", "c14a12199c66e4ba84636b0f69144c77"},
		{"message digest", "9e327b3d6e523062afc1132d7df9d1b8"},
		{"abcdefghijklmnopqrstuvwxyz", "fd2aa607f71dc8f510714922b371834e"},
		{strings.Repeat("1234567890", 8), "3f45ef194732c2dbb2c4a2c769795fa3"},
	}
	for _, c := range cases {
		got := Sum128([]byte(c.in))
		require.Equal(t, c.want, hex.EncodeToString(got[:]), "input %q", c.in)
	}
}

func TestHashInterface(t *testing.T) {
	h := New()
	require.Equal(t, Size, h.Size())
	require.Equal(t, BlockSize, h.BlockSize())

	_, err := h.Write([]byte("abc"))
	require.NoError(t, err)
	sum := h.Sum(nil)
	require.Len(t, sum, Size)
	require.Equal(t, "c14a12199c66e4ba84636b0f69144c77", hex.EncodeToString(sum))

	h.Reset()
	_, err = h.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, sum, h.Sum(nil))
}
