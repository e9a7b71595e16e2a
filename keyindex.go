// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"github.com/mdictgo/mdict/internal/scan"
)

// keyBlockIndexEntry is one entry of the in-memory keyword-index-of-blocks
// array (§3 "KeyBlockIndexEntry"), decoded eagerly at Open.
type keyBlockIndexEntry struct {
	numEntries int
	firstWord  string
	lastWord   string
	compSize   uint32
	decompSize uint32
	offset     uint32 // byte offset within the concatenated key-block area
	index      int    // ordinal into the array
}

// keywordSummary holds the fields of the keyword-section summary (§4.5).
type keywordSummary struct {
	numBlocks     uint32
	numEntries    uint32
	keyIndexDecompLen uint32 // v2 only
	keyIndexCompLen   uint32
	keyBlocksLen      uint32
}

// recordSummary holds the fields of the record-section summary (§4.5).
type recordSummary struct {
	numBlocks  uint32
	numEntries uint32
	indexLen   uint32
	blocksLen  uint32
}

// loadedIndex is everything IndexLoader produces (§4.5, §2 data flow).
type loadedIndex struct {
	keyIndex         []keyBlockIndexEntry
	keyBlocksOff     int64 // absolute file offset of the concatenated key blocks
	keyBlocksLen     int64
	keywordNumEntries uint32
	recordTable      *recordBlockTable
	recordNumEntries uint32
}

// summaryLen returns the byte length of a keyword or record summary made of
// nums read_num fields plus extra fixed bytes; read_num is 4 bytes on v1 and
// 8 on v2, so the layout genuinely differs between versions (§4.5). Reading
// exactly this many bytes keeps a summary near the end of a small file
// within the source's bounds.
func summaryLen(h *HeaderAttributes, nums, extra int64) int64 {
	width := int64(4)
	if h.IsV2() {
		width = 8
	}
	return nums*width + extra
}

// loadIndex implements IndexLoader (§4.5): decodes the keyword summary, the
// keyword index of blocks (through BlockScanner.ReadBlock and, if bit 2 is
// set, the Decryptor), the record summary, and the record block index.
func loadIndex(src ByteSource, h *HeaderAttributes, keywordSectionStart int64) (*loadedIndex, error) {
	profile := h.Profile()

	kwNums, kwExtra := int64(4), int64(0)
	if h.IsV2() {
		kwNums, kwExtra = 5, 4 // key_index_decomp_len, then the checksum
	}
	sumBuf, err := src.ReadAt(keywordSectionStart, summaryLen(h, kwNums, kwExtra))
	if err != nil {
		return nil, err
	}
	sc := scan.New(sumBuf, profile)

	var ks keywordSummary
	if ks.numBlocks, err = sc.ReadNum(); err != nil {
		return nil, err
	}
	if ks.numEntries, err = sc.ReadNum(); err != nil {
		return nil, err
	}
	if h.IsV2() {
		if ks.keyIndexDecompLen, err = sc.ReadNum(); err != nil {
			return nil, err
		}
	}
	if ks.keyIndexCompLen, err = sc.ReadNum(); err != nil {
		return nil, err
	}
	if ks.keyBlocksLen, err = sc.ReadNum(); err != nil {
		return nil, err
	}
	if h.IsV2() {
		if err := sc.SkipChecksum(); err != nil {
			return nil, err
		}
	}
	summaryConsumed := int64(sc.Position())

	keyIndexBlockStart := keywordSectionStart + summaryConsumed
	keyIndexRaw, err := src.ReadAt(keyIndexBlockStart, int64(ks.keyIndexCompLen))
	if err != nil {
		return nil, err
	}
	kiSc := scan.New(keyIndexRaw, profile)
	decompLen := int(ks.keyIndexDecompLen)
	if !h.IsV2() {
		// v1 carries no explicit decompressed-length field; ReadBlock only
		// needs it as an LZO output-size hint, so an upper bound suffices
		// when the block turns out to be raw or zlib (self-describing).
		decompLen = int(ks.keyIndexCompLen) * 8
	}
	decoded, err := kiSc.ReadBlock(int(ks.keyIndexCompLen), decompLen, h.KeywordIndexEncryptedBit2())
	if err != nil {
		return nil, err
	}

	keyIndex := make([]keyBlockIndexEntry, 0, ks.numBlocks)
	var runningOffset uint32
	for i := uint32(0); i < ks.numBlocks; i++ {
		var e keyBlockIndexEntry
		n, err := decoded.ReadNum()
		if err != nil {
			return nil, err
		}
		e.numEntries = int(n)

		firstSize, err := decoded.ReadShort()
		if err != nil {
			return nil, err
		}
		if e.firstWord, err = decoded.ReadSizedText(firstSize); err != nil {
			return nil, err
		}

		lastSize, err := decoded.ReadShort()
		if err != nil {
			return nil, err
		}
		if e.lastWord, err = decoded.ReadSizedText(lastSize); err != nil {
			return nil, err
		}

		if e.compSize, err = decoded.ReadNum(); err != nil {
			return nil, err
		}
		if e.decompSize, err = decoded.ReadNum(); err != nil {
			return nil, err
		}

		e.offset = runningOffset
		e.index = int(i)
		runningOffset += e.compSize

		keyIndex = append(keyIndex, e)
	}

	keyBlocksOff := keyIndexBlockStart + int64(ks.keyIndexCompLen)
	recordSectionStart := keyBlocksOff + int64(ks.keyBlocksLen)

	recSumBuf, err := src.ReadAt(recordSectionStart, summaryLen(h, 4, 0))
	if err != nil {
		return nil, err
	}
	rsc := scan.New(recSumBuf, profile)
	var rs recordSummary
	if rs.numBlocks, err = rsc.ReadNum(); err != nil {
		return nil, err
	}
	if rs.numEntries, err = rsc.ReadNum(); err != nil {
		return nil, err
	}
	if rs.indexLen, err = rsc.ReadNum(); err != nil {
		return nil, err
	}
	if rs.blocksLen, err = rsc.ReadNum(); err != nil {
		return nil, err
	}
	recSummaryConsumed := int64(rsc.Position())

	recordIndexStart := recordSectionStart + recSummaryConsumed
	recordIndexRaw, err := src.ReadAt(recordIndexStart, int64(rs.indexLen))
	if err != nil {
		return nil, err
	}
	riSc := scan.New(recordIndexRaw, profile)

	table := newRecordBlockTable(int(rs.numBlocks))
	blockPos := recordIndexStart + int64(rs.indexLen)
	compOffset := uint32(blockPos)
	var decompOffset uint32
	for i := uint32(0); i < rs.numBlocks; i++ {
		compSize, err := riSc.ReadNum()
		if err != nil {
			return nil, err
		}
		decompSize, err := riSc.ReadNum()
		if err != nil {
			return nil, err
		}
		table.put(compOffset, decompOffset)
		compOffset += compSize
		decompOffset += decompSize
	}
	table.put(compOffset, decompOffset) // sentinel

	_ = rs.blocksLen // informational; table totals are derived from the pairs themselves

	return &loadedIndex{
		keyIndex:          keyIndex,
		keyBlocksOff:      keyBlocksOff,
		keyBlocksLen:      int64(ks.keyBlocksLen),
		keywordNumEntries: ks.numEntries,
		recordTable:       table,
		recordNumEntries:  rs.numEntries,
	}, nil
}
