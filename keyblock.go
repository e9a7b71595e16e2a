// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"github.com/cespare/xxhash/v2"

	"github.com/mdictgo/mdict/internal/scan"
)

// keyEntry is one decoded (offset, word) pair from a decompressed key
// block, plus its derived span size (§4.6).
type keyEntry struct {
	offset uint32
	word   string
	size   uint32 // bytes of record data owned by this entry; 0 for the last entry of a block (unknown until the record table resolves it)
}

// keyBlockCache is the single-slot MRU decoded-key-block cache (§4.6): the
// most recently decoded key block is kept around so that adjacent lookups
// and paged enumeration within the same block avoid re-decompressing it.
// The slot is identified by a fast hash of the block's first word (the
// pilot) rather than its index, mirroring a block cache keyed by content
// rather than position.
type keyBlockCache struct {
	src          ByteSource
	keyBlocksOff int64
	profile      scan.Profile

	havePilot bool
	pilot     uint64
	pilotWord string
	entries   []keyEntry
}

func newKeyBlockCache(src ByteSource, keyBlocksOff int64, profile scan.Profile) *keyBlockCache {
	return &keyBlockCache{src: src, keyBlocksOff: keyBlocksOff, profile: profile}
}

// load returns the decoded entries for kdx, decoding and caching them if
// the slot doesn't already hold this block.
func (c *keyBlockCache) load(kdx keyBlockIndexEntry) ([]keyEntry, error) {
	pilot := xxhash.Sum64String(kdx.firstWord)
	if c.havePilot && pilot == c.pilot && c.pilotWord == kdx.firstWord {
		return c.entries, nil
	}

	raw, err := c.src.ReadAt(c.keyBlocksOff+int64(kdx.offset), int64(kdx.compSize))
	if err != nil {
		return nil, err
	}
	sc := scan.New(raw, c.profile)
	decoded, err := sc.ReadBlock(int(kdx.compSize), int(kdx.decompSize), false)
	if err != nil {
		return nil, err
	}

	entries := make([]keyEntry, kdx.numEntries)
	for i := range entries {
		off, err := decoded.ReadNum()
		if err != nil {
			return nil, err
		}
		word, err := decoded.ReadNulText()
		if err != nil {
			return nil, err
		}
		entries[i] = keyEntry{offset: off, word: word}
	}
	for i := 0; i+1 < len(entries); i++ {
		entries[i].size = entries[i+1].offset - entries[i].offset
	}

	c.entries = entries
	c.pilot = pilot
	c.pilotWord = kdx.firstWord
	c.havePilot = true
	return entries, nil
}
