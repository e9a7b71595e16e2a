// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/swiss"

	"github.com/mdictgo/mdict/internal/scan"
)

// mdxStripRE strips punctuation/whitespace considered insignificant for
// keyword matching in .mdx dictionaries (§4.7 "Key normalization").
var mdxStripRE = regexp.MustCompile(`[()., '/@_-]`)

// mddStripRE additionally drops a single trailing filename extension,
// since .mdd keys are resource paths (§4.7).
var mddStripRE = regexp.MustCompile(`(\.[^.]*)$|[()., '/@_-]`)

// adaptKey normalizes a keyword or resource path for comparison, per the
// header's case-sensitivity and strip-key settings (§4.7). ext is ".mdx"
// or ".mdd" and selects the stripping regexp.
func (r *Reader) adaptKey(s string) string {
	if cached, ok := r.adaptCache.Get(s); ok {
		return cached
	}

	strip := mdxStripRE
	if r.ext == ".mdd" {
		strip = mddStripRE
	}

	var out string
	switch {
	case r.header.KeyCaseSensitive && r.header.StripKey:
		out = strip.ReplaceAllString(s, "")
	case r.header.KeyCaseSensitive:
		out = s
	case r.header.StripKey:
		out = strip.ReplaceAllString(strings.ToLower(s), "")
	default:
		out = strings.ToLower(s)
	}

	r.adaptCache.Put(s, out)
	return out
}

// newAdaptCache builds the swiss-table memoization map backing adaptKey;
// the normalization regexp work is repeated for every comparison a binary
// search makes, so memoizing by raw input pays for itself on any
// multi-step search or paged enumeration.
func newAdaptCache() *swiss.Map[string, string] {
	return swiss.New[string, string](64)
}

// seekVanguard runs the two-tier binary search described in §4.7: first
// over the keyword-index-of-blocks array (by adapted last_word) to find
// the candidate block, then within that block's decoded entries (by
// adapted word) to find the first entry >= phrase. blockIdx is -1 if no
// block could contain a match.
func (r *Reader) seekVanguard(phrase string) (blockIdx, startIdx int, entries []keyEntry, err error) {
	adapted := r.adaptKey(phrase)

	n := len(r.keyIndex)
	idx := sort.Search(n, func(i int) bool {
		return r.adaptKey(r.keyIndex[i].lastWord) >= adapted
	})
	if idx >= n {
		return -1, 0, nil, nil
	}
	for idx > 0 && r.adaptKey(r.keyIndex[idx-1].lastWord) == adapted {
		idx--
	}

	entries, err = r.keyBlocks.load(r.keyIndex[idx])
	if err != nil {
		return 0, 0, nil, err
	}

	start := sort.Search(len(entries), func(i int) bool {
		return r.adaptKey(entries[i].word) >= adapted
	})
	for start > 0 && r.adaptKey(entries[start-1].word) == adapted {
		start--
	}

	return idx, start, entries, nil
}

// WordHit is one matched keyword and the record offset it points to.
type WordHit struct {
	Word   string
	Offset uint32
}

// GetWordListExact implements the plain-string form of getWordList (§4.7,
// §6): it returns every keyword at or after phrase in sort order within
// its containing key block (resetting any in-progress paged enumeration).
// If filterOffset is given, the result is narrowed to the single hit
// whose record offset matches it, or nil if none does.
func (r *Reader) GetWordListExact(phrase string, filterOffset ...uint32) ([]WordHit, error) {
	r.trail = nil

	blockIdx, startIdx, entries, err := r.seekVanguard(phrase)
	if err != nil {
		return nil, err
	}
	if blockIdx < 0 {
		return nil, nil
	}

	hits := make([]WordHit, 0, len(entries)-startIdx)
	for _, e := range entries[startIdx:] {
		hits = append(hits, WordHit{Word: e.word, Offset: e.offset})
	}

	if len(filterOffset) == 0 {
		return hits, nil
	}
	want := filterOffset[0]
	for _, h := range hits {
		if h.Offset == want {
			return []WordHit{h}, nil
		}
	}
	return nil, nil
}

// trailState is the paged-enumeration session described in §4.7: which
// key block and offset within it to resume from, and whether the
// underlying phrase has been exhausted.
type trailState struct {
	phrase    string
	block     int
	offset    int
	total     int
	exhausted bool
}

// wildcardMetaRE matches the regexp metacharacters that must be escaped
// when translating a glob-style phrase into a Go regexp (§4.7); '*' and
// '?' are handled separately as wildcards rather than escaped.
var wildcardMetaRE = regexp.MustCompile(`[.+\[^\]$(){}|\\]`)

// buildWildcardFilter inspects a lowercased phrase for '*'/'?' wildcards.
// If none are present, hasWildcard is false and prefix is the phrase
// itself (used verbatim as the seek key, with no per-entry filter). If
// wildcards are present, prefix is the literal run preceding the first
// wildcard character (the seek key) and filter matches the whole word.
func buildWildcardFilter(lower string) (prefix string, filter *regexp.Regexp, hasWildcard bool) {
	if !strings.ContainsAny(lower, "*?") {
		return lower, nil, false
	}

	var pattern strings.Builder
	pattern.WriteByte('^')
	sawWildcard := false
	var prefixBuf strings.Builder
	for _, r := range lower {
		switch r {
		case '*':
			sawWildcard = true
			pattern.WriteString(".*")
		case '?':
			sawWildcard = true
			pattern.WriteString(".")
		default:
			if !sawWildcard {
				prefixBuf.WriteRune(r)
			}
			if wildcardMetaRE.MatchString(string(r)) {
				pattern.WriteByte('\\')
			}
			pattern.WriteRune(r)
		}
	}
	pattern.WriteByte('$')
	return prefixBuf.String(), regexp.MustCompile(pattern.String()), true
}

// Query is a structured paged-enumeration request (§4.7, §6): Phrase may
// contain '*'/'?' wildcards; Max bounds the page size (clamped up to 10);
// Follow resumes the session left by the previous call with the same
// Phrase, or starts a fresh one if there was none (or it was for a
// different phrase).
type Query struct {
	Phrase string
	Max    int
	Follow bool
}

// GetWordListPaged implements the structured form of getWordList (§4.7):
// prefix/wildcard enumeration that can stream results across many key
// blocks via repeated Follow calls. It reports whether the phrase has
// been fully exhausted.
func (r *Reader) GetWordListPaged(q Query) ([]WordHit, bool, error) {
	expected := q.Max
	if expected < 10 {
		expected = 10
	}

	trimmed := strings.TrimSpace(q.Phrase)
	lower := strings.ToLower(trimmed)
	allowMultiWord := strings.HasSuffix(q.Phrase, " ")

	follow := q.Follow
	if follow && (r.trail == nil || r.trail.phrase != q.Phrase) {
		follow = false
	}
	if follow && r.trail.exhausted {
		return nil, true, nil
	}

	prefix, filter, hasWildcard := buildWildcardFilter(lower)
	seekWord := trimmed
	if hasWildcard {
		seekWord = prefix
	}

	ticket := atomic.AddInt64(&r.mutualTicket, 1)

	var curBlock, curStart int
	var curEntries []keyEntry
	if follow {
		curBlock = r.trail.block
		curStart = r.trail.offset
		entries, err := r.keyBlocks.load(r.keyIndex[curBlock])
		if err != nil {
			return nil, false, err
		}
		curEntries = entries
	} else {
		blockIdx, startIdx, entries, err := r.seekVanguard(seekWord)
		if err != nil {
			return nil, false, err
		}
		if blockIdx < 0 {
			r.trail = &trailState{phrase: q.Phrase, exhausted: true}
			return nil, true, nil
		}
		r.trail = &trailState{phrase: q.Phrase, block: blockIdx, offset: startIdx}
		curBlock, curStart, curEntries = blockIdx, startIdx, entries
	}

	hits := make([]WordHit, 0, expected)
	for {
		if atomic.LoadInt64(&r.mutualTicket) != ticket {
			return hits, false, nil
		}

		for i := curStart; i < len(curEntries); i++ {
			e := curEntries[i]
			curStart = i + 1
			if !allowMultiWord && strings.Contains(e.word, " ") {
				continue
			}
			if hasWildcard && !filter.MatchString(strings.ToLower(e.word)) {
				continue
			}
			hits = append(hits, WordHit{Word: e.word, Offset: e.offset})
			if len(hits) >= expected {
				break
			}
		}

		atEndOfBlock := curStart >= len(curEntries)
		lastBlock := curBlock == len(r.keyIndex)-1

		needMore := len(hits) < expected && !lastBlock && atEndOfBlock
		if needMore && hasWildcard {
			needMore = strings.HasPrefix(strings.ToLower(r.keyIndex[curBlock+1].firstWord), prefix)
		}
		if !needMore {
			r.trail.block = curBlock
			r.trail.offset = curStart
			r.trail.exhausted = lastBlock && atEndOfBlock
			r.trail.total += len(hits)
			return hits, r.trail.exhausted, nil
		}

		curBlock++
		entries, err := r.keyBlocks.load(r.keyIndex[curBlock])
		if err != nil {
			return nil, false, err
		}
		curEntries = entries
		curStart = 0
	}
}

// linkPrefix is the redirection marker recognized in a decoded definition
// (§4.7 "@@@LINK= redirection").
const linkPrefix = "@@@LINK="

// maxLinkDepth is the default bound on @@@LINK= redirection chains (§4.7),
// used when Options.LinkDepth is unset; a chain longer than the bound is
// treated as a cycle.
const maxLinkDepth = 16

// GetDefinition resolves a record offset to its decoded, stylesheet-
// expanded definition (§4.3, §4.8, §4.7 redirection). A definition that is
// exactly "@@@LINK=<keyword>" (plus optional trailing whitespace/NUL) is
// followed by looking up <keyword>'s first record offset and recursing, up
// to the Reader's link depth bound (Options.LinkDepth, default
// maxLinkDepth) hops; exceeding that returns ErrLinkLoop. A link whose
// keyword is not in the dictionary returns ErrResourceNotFound.
func (r *Reader) GetDefinition(recordOffset uint32) (string, error) {
	return r.getDefinition(recordOffset, 0)
}

func (r *Reader) getDefinition(recordOffset uint32, depth int) (string, error) {
	if depth > r.linkDepth {
		return "", ErrLinkLoop
	}

	desc, ok := r.recordTable.find(recordOffset)
	if !ok {
		return "", ErrOutOfRange
	}

	raw, err := r.src.ReadAt(int64(desc.compOffset), int64(desc.compSize))
	if err != nil {
		return "", err
	}
	sc := scan.New(raw, r.header.Profile())
	decoded, err := sc.ReadBlock(int(desc.compSize), int(desc.decompSize), false)
	if err != nil {
		return "", err
	}
	if err := decoded.Seek(int(recordOffset - desc.decompOffset)); err != nil {
		return "", err
	}
	text, err := decoded.ReadNulText()
	if err != nil {
		return "", err
	}

	if link, ok := parseLink(text); ok {
		hits, err := r.GetWordListExact(link)
		if err != nil {
			return "", err
		}
		if len(hits) == 0 || r.adaptKey(hits[0].Word) != r.adaptKey(link) {
			return "", ErrResourceNotFound
		}
		return r.getDefinition(hits[0].Offset, depth+1)
	}

	return expandStylesheet(r.header.Stylesheet, text), nil
}

func parseLink(text string) (string, bool) {
	trimmed := strings.TrimRight(text, "\x00\r\n ")
	if !strings.HasPrefix(trimmed, linkPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, linkPrefix)), true
}

// mddPathNormalize converts a resource path to the backslash form MDD keys
// are stored in (§4.7 "Resource retrieval"): lowercase, forward slashes
// turned to back, and a leading backslash if not already present.
func mddPathNormalize(path string) string {
	p := strings.ToLower(strings.ReplaceAll(path, "/", "\\"))
	if !strings.HasPrefix(p, "\\") {
		p = "\\" + p
	}
	return p
}

// GetResource looks up a .mdd resource path and returns its decoded bytes
// (§4.7). The match is a case-insensitive exact match after backslash path
// normalization, not a prefix search: it calls into the same two-tier
// search used for keywords but then filters to an exact normalized match
// rather than returning the search tail.
func (r *Reader) GetResource(path string) ([]byte, error) {
	want := mddPathNormalize(path)

	blockIdx, startIdx, entries, err := r.seekVanguard(want)
	if err != nil {
		return nil, err
	}
	if blockIdx < 0 {
		return nil, ErrResourceNotFound
	}

	matchIdx := -1
	for i, e := range entries[startIdx:] {
		if strings.ToLower(e.word) == want {
			matchIdx = startIdx + i
			break
		}
	}
	if matchIdx == -1 {
		return nil, ErrResourceNotFound
	}
	offset := entries[matchIdx].offset

	desc, ok := r.recordTable.find(offset)
	if !ok {
		return nil, ErrOutOfRange
	}
	raw, err := r.src.ReadAt(int64(desc.compOffset), int64(desc.compSize))
	if err != nil {
		return nil, err
	}
	sc := scan.New(raw, r.header.Profile())
	decoded, err := sc.ReadBlock(int(desc.compSize), int(desc.decompSize), false)
	if err != nil {
		return nil, err
	}
	if err := decoded.Seek(int(offset - desc.decompOffset)); err != nil {
		return nil, err
	}

	// A resource's length is not self-delimiting like NUL-terminated text:
	// it spans up to the next key's record offset, or to the end of this
	// record block's decompressed bytes if it's the last key (§4.6, §4.3).
	length := int(desc.decompOffset + desc.decompSize - offset)
	if matchIdx+1 < len(entries) {
		length = int(entries[matchIdx+1].offset - offset)
	}
	return decoded.ReadRaw(length)
}
