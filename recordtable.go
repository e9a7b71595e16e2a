// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import "sort"

// recordBlockDesc is the result of RecordBlockTable.find (§4.3).
type recordBlockDesc struct {
	blockNo      int
	compOffset   uint32
	compSize     uint32
	decompOffset uint32
	decompSize   uint32
}

// recordBlockTable is a flat, sorted index of (comp_offset, decomp_offset)
// pairs plus a sentinel pair, supporting binary search from a decompressed
// record-stream position down to the record block that covers it (§4.3).
type recordBlockTable struct {
	comp   []uint32 // len = n+1 (n blocks + sentinel)
	decomp []uint32 // len = n+1
}

// newRecordBlockTable preallocates storage for n record blocks plus the
// trailing sentinel pair, mirroring alloc(n) in §4.3.
func newRecordBlockTable(n int) *recordBlockTable {
	return &recordBlockTable{
		comp:   make([]uint32, 0, n+1),
		decomp: make([]uint32, 0, n+1),
	}
}

// put appends one (comp_offset, decomp_offset) pair.
func (t *recordBlockTable) put(compOffset, decompOffset uint32) {
	t.comp = append(t.comp, compOffset)
	t.decomp = append(t.decomp, decompOffset)
}

// numBlocks returns the number of real (non-sentinel) blocks.
func (t *recordBlockTable) numBlocks() int {
	if len(t.decomp) == 0 {
		return 0
	}
	return len(t.decomp) - 1
}

// totalDecompSize returns decomp_offset[N], the total uncompressed record
// stream size.
func (t *recordBlockTable) totalDecompSize() uint32 {
	if len(t.decomp) == 0 {
		return 0
	}
	return t.decomp[len(t.decomp)-1]
}

// find performs the binary search described in §4.3: locates the largest i
// such that decomp_offset[i] <= decompPosition, and returns the block
// descriptor derived from pair i and i+1. Out-of-range input returns
// (desc, false).
func (t *recordBlockTable) find(decompPosition uint32) (recordBlockDesc, bool) {
	n := t.numBlocks()
	if n == 0 {
		return recordBlockDesc{}, false
	}
	if decompPosition >= t.totalDecompSize() {
		return recordBlockDesc{}, false
	}

	// largest i with decomp[i] <= decompPosition
	i := sort.Search(n, func(i int) bool {
		return t.decomp[i+1] > decompPosition
	})
	if i >= n {
		return recordBlockDesc{}, false
	}

	return recordBlockDesc{
		blockNo:      i,
		compOffset:   t.comp[i],
		compSize:     t.comp[i+1] - t.comp[i],
		decompOffset: t.decomp[i],
		decompSize:   t.decomp[i+1] - t.decomp[i],
	}, true
}
