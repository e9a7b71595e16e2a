// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("mdict")

// Options configures Open. A nil Options (or zero-value fields within one)
// uses the defaults noted per field, following the nil-means-defaults
// convention used throughout this reader's configuration surface.
type Options struct {
	// Ext names the container kind, ".mdx" (keyword -> text) or ".mdd"
	// (keyword -> binary resource); it selects the key-normalization
	// regexp used by adaptKey (§4.7). Defaults to ".mdx".
	Ext string

	// LinkDepth bounds @@@LINK= redirection chains (§4.7). Defaults to 16.
	LinkDepth int
}

func (o *Options) ext() string {
	if o == nil || o.Ext == "" {
		return ".mdx"
	}
	return o.Ext
}

func (o *Options) linkDepth() int {
	if o == nil || o.LinkDepth <= 0 {
		return maxLinkDepth
	}
	return o.LinkDepth
}

// Reader is an opened MDict dictionary: its decoded header, keyword index,
// and record block table, plus the lazily-populated key-block cache and
// paged-enumeration session state (§2 "Component map").
type Reader struct {
	src ByteSource
	ext string

	header *HeaderAttributes

	keyIndex     []keyBlockIndexEntry
	keyBlocksOff int64
	keyBlocks    *keyBlockCache

	recordTable *recordBlockTable

	trail       *trailState
	mutualTicket int64
	adaptCache  *swiss.Map[string, string]

	linkDepth int
}

// Open decodes src's header and index and returns a ready Reader (§4.4,
// §4.5). It does not read any key or record block eagerly; those are
// decoded lazily on first use through the key-block cache.
func Open(src ByteSource, opts *Options) (*Reader, error) {
	header, headerFootprint, err := decodeHeader(src)
	if err != nil {
		return nil, err
	}

	idx, err := loadIndex(src, header, headerFootprint)
	if err != nil {
		return nil, err
	}

	var gotEntries uint32
	for _, e := range idx.keyIndex {
		gotEntries += uint32(e.numEntries)
	}
	if gotEntries != idx.keywordNumEntries {
		return nil, errors.Wrapf(ErrInvalidHeader,
			"keyword index declares %d entries across blocks, summary says %d", gotEntries, idx.keywordNumEntries)
	}

	r := &Reader{
		src:         src,
		ext:         opts.ext(),
		header:      header,
		keyIndex:    idx.keyIndex,
		keyBlocksOff: idx.keyBlocksOff,
		recordTable: idx.recordTable,
		adaptCache:  newAdaptCache(),
		linkDepth:   opts.linkDepth(),
	}
	r.keyBlocks = newKeyBlockCache(src, idx.keyBlocksOff, header.Profile())

	log.Debugf("mdict: opened %s dictionary, engine %.1f, %d key blocks, %d record blocks",
		r.ext, header.EngineVersion, len(idx.keyIndex), idx.recordTable.numBlocks())

	return r, nil
}

// Header returns the decoded header attributes.
func (r *Reader) Header() *HeaderAttributes { return r.header }

// Close releases the underlying byte source.
func (r *Reader) Close() error { return r.src.Close() }
