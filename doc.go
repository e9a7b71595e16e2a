// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package mdict implements a reader for the MDict binary dictionary file
// format: MDX (keyword-to-text definitions) and MDD (keyword-to-binary-blob
// resources) containers.
//
// An MDX/MDD file is a sectioned binary format:
//
//	[0..4)                     big-endian u32 header_length
//	[4..4+header_length)       UTF-16LE XML header, trailing NUL included
//	[+4)                       header checksum (ignored)
//	keyword section:           summary + compressed (optionally encrypted)
//	                           index of key blocks + concatenated key blocks
//	record section:            summary + record-block index + concatenated
//	                           record blocks
//
// Both sections share the same block framing: a 1-byte compression tag (0
// raw, 1 LZO1x, 2 zlib), 3 zero bytes, a 4-byte checksum, then the payload.
//
// A reader opens a random-access byte source, decodes the header and both
// block indices eagerly, and then serves two query families: enumerating
// keywords by exact prefix or glob, and resolving a record offset into its
// definition (MDX) or raw bytes (MDD). Keyword lookup uses a two-tier binary
// search, first over the in-memory index of key blocks and then within a
// single lazily-decompressed key block, the same shape as an LSM sstable's
// two-level index before it descends into a data block.
//
//	r, err := mdict.Open(src, nil)
//	words, _, err := r.GetWordListPaged(mdict.Query{Phrase: "cat*", Max: 20})
//	text, err := r.GetDefinition(words[0].Offset)
package mdict
