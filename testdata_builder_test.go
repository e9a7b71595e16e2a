// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// fixtureKeyBlock is one source key block for buildFixture: a run of
// (word, definition) pairs that will be encoded as a single compressed
// (raw-tagged) key block, contiguous with its neighbors in sort order.
type fixtureKeyBlock struct {
	words []string
	defs  map[string]string // word -> definition text (before stylesheet expansion)
}

// buildFixture assembles a minimal, uncompressed (tag 0) v1 MDX/MDD byte
// buffer exercising the full header/keyword-index/record-index pipeline,
// the way sstable/test_fixtures.go hand-assembles a table for its readers
// to exercise without going through a real writer.
func buildFixture(blocks []fixtureKeyBlock, styleSheet string) []byte {
	return buildFixtureExt(blocks, styleSheet, true)
}

// buildFixtureExt is buildFixture with control over whether each record is
// NUL-terminated: true models MDX text records (read with ReadNulText),
// false models MDD binary blobs (read by the span between consecutive key
// offsets, since arbitrary binary data cannot be NUL-delimited).
func buildFixtureExt(blocks []fixtureKeyBlock, styleSheet string, nulTerminated bool) []byte {
	// 1. Record section payload: every definition, in block/word order,
	// tracked offset by offset.
	var recordPayload []byte
	offsets := make(map[string]uint32)
	for _, blk := range blocks {
		for _, w := range blk.words {
			offsets[w] = uint32(len(recordPayload))
			recordPayload = append(recordPayload, []byte(blk.defs[w])...)
			if nulTerminated {
				recordPayload = append(recordPayload, 0x00)
			}
		}
	}
	recordBlock := append([]byte{0x00}, recordPayload...) // v1 raw framing

	// 2. Key blocks: each block's decoded payload is (offset, word\0) pairs;
	// the key-block-index entry records first/last word and the comp/decomp
	// sizes of its raw-tagged frame.
	type keyBlockMeta struct {
		numEntries int
		firstWord  string
		lastWord   string
		compSize   uint32
		decompSize uint32
	}
	var keyBlocksConcat []byte
	var metas []keyBlockMeta
	for _, blk := range blocks {
		var payload []byte
		for _, w := range blk.words {
			var off [4]byte
			binary.BigEndian.PutUint32(off[:], offsets[w])
			payload = append(payload, off[:]...)
			payload = append(payload, []byte(w)...)
			payload = append(payload, 0x00)
		}
		frame := append([]byte{0x00}, payload...)
		keyBlocksConcat = append(keyBlocksConcat, frame...)
		metas = append(metas, keyBlockMeta{
			numEntries: len(blk.words),
			firstWord:  blk.words[0],
			lastWord:   blk.words[len(blk.words)-1],
			compSize:   uint32(len(frame)),
			decompSize: uint32(len(payload)),
		})
	}

	// 3. Keyword-index-of-blocks decoded payload.
	var keyIndexPayload []byte
	appendNum := func(buf []byte, v uint32) []byte {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		return append(buf, b[:]...)
	}
	appendShort := func(buf []byte, v uint8) []byte {
		return append(buf, v)
	}
	for _, m := range metas {
		keyIndexPayload = appendNum(keyIndexPayload, uint32(m.numEntries))
		keyIndexPayload = appendShort(keyIndexPayload, uint8(len(m.firstWord)))
		keyIndexPayload = append(keyIndexPayload, []byte(m.firstWord)...)
		keyIndexPayload = appendShort(keyIndexPayload, uint8(len(m.lastWord)))
		keyIndexPayload = append(keyIndexPayload, []byte(m.lastWord)...)
		keyIndexPayload = appendNum(keyIndexPayload, m.compSize)
		keyIndexPayload = appendNum(keyIndexPayload, m.decompSize)
	}
	keyIndexFrame := append([]byte{0x00}, keyIndexPayload...)

	// 4. Record-index payload: one (compSize, decompSize) pair per record
	// block (just one here).
	var recordIndexPayload []byte
	recordIndexPayload = appendNum(recordIndexPayload, uint32(len(recordBlock)))
	recordIndexPayload = appendNum(recordIndexPayload, uint32(len(recordPayload)))

	// 5. Header.
	xmlHeader := `<Dictionary GeneratedByEngineVersion="1.2" Encrypted="0" Encoding="UTF-8" ` +
		`KeyCaseSensitive="No" StripKey="No" Title="Fixture" Description="Test dictionary" ` +
		`CreationDate="2024-01-01"`
	if styleSheet != "" {
		xmlHeader += ` StyleSheet="` + xmlEscape(styleSheet) + `"`
	}
	xmlHeader += `/>`

	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	utf16Header, err := enc.Bytes([]byte(xmlHeader))
	if err != nil {
		panic(err)
	}
	utf16Header = append(utf16Header, 0x00, 0x00) // trailing NUL unit

	var out []byte
	var headerLen [4]byte
	binary.BigEndian.PutUint32(headerLen[:], uint32(len(utf16Header)))
	out = append(out, headerLen[:]...)
	out = append(out, utf16Header...)
	out = append(out, 0x00, 0x00, 0x00, 0x00) // header checksum, unchecked

	// 6. Keyword section: summary + keyword-index frame + key blocks.
	out = appendNum(out, uint32(len(metas)))         // num_blocks
	out = appendNum(out, uint32(len(offsets)))       // num_entries
	out = appendNum(out, uint32(len(keyIndexFrame))) // key_index_comp_len
	out = appendNum(out, uint32(len(keyBlocksConcat)))
	out = append(out, keyIndexFrame...)
	out = append(out, keyBlocksConcat...)

	// 7. Record section: summary + record index + record blocks.
	out = appendNum(out, 1)                              // num_blocks
	out = appendNum(out, uint32(len(offsets)))            // num_entries
	out = appendNum(out, uint32(len(recordIndexPayload))) // index_len
	out = appendNum(out, uint32(len(recordBlock)))        // blocks_len
	out = append(out, recordIndexPayload...)
	out = append(out, recordBlock...)

	return out
}

func xmlEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			out = append(out, []byte("&lt;")...)
		case '>':
			out = append(out, []byte("&gt;")...)
		case '&':
			out = append(out, []byte("&amp;")...)
		case '"':
			out = append(out, []byte("&quot;")...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
