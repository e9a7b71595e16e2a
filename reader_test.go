// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, blocks []fixtureKeyBlock, styleSheet string) *Reader {
	t.Helper()
	buf := buildFixture(blocks, styleSheet)
	r, err := Open(OpenBytes(buf), nil)
	require.NoError(t, err)
	return r
}

func sampleBlocks() []fixtureKeyBlock {
	return []fixtureKeyBlock{
		{
			words: []string{"animal", "app", "apple"},
			defs: map[string]string{
				"animal": "a living thing",
				"app":    "short for application",
				"apple":  "a fruit",
			},
		},
		{
			words: []string{"application", "banana", "cat"},
			defs: map[string]string{
				"application": "a software program",
				"banana":      "a yellow fruit",
				"cat":         "@@@LINK=animal",
			},
		},
	}
}

func TestOpenDecodesHeaderAndIndex(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")
	require.Equal(t, 1.2, r.Header().EngineVersion)
	require.False(t, r.Header().IsV2())
	require.Len(t, r.keyIndex, 2)
	require.Greater(t, r.recordTable.totalDecompSize(), uint32(0))
}

func TestGetWordListExact(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")

	hits, err := r.GetWordListExact("apple")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, "apple", hits[0].Word)

	def, err := r.GetDefinition(hits[0].Offset)
	require.NoError(t, err)
	require.Equal(t, "a fruit", def)
}

func TestGetWordListExactFilterByOffset(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")

	all, err := r.GetWordListExact("animal")
	require.NoError(t, err)
	require.NotEmpty(t, all)

	filtered, err := r.GetWordListExact("animal", all[0].Offset)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, all[0], filtered[0])

	none, err := r.GetWordListExact("animal", all[0].Offset+9999)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestGetWordListPagedWildcardSpansBlocks(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")

	hits, exhausted, err := r.GetWordListPaged(Query{Phrase: "app*", Max: 10})
	require.NoError(t, err)
	require.True(t, exhausted)

	var words []string
	for _, h := range hits {
		words = append(words, h.Word)
	}
	require.Equal(t, []string{"app", "apple", "application"}, words)
}

// largeBlocks builds enough entries to span more than one page at the
// minimum page size (expected_size is clamped to at least 10, §4.7), so a
// Follow call genuinely has more to return.
func largeBlocks() []fixtureKeyBlock {
	block := func(words ...string) fixtureKeyBlock {
		defs := make(map[string]string, len(words))
		for _, w := range words {
			defs[w] = "def:" + w
		}
		return fixtureKeyBlock{words: words, defs: defs}
	}
	return []fixtureKeyBlock{
		block("aa", "ab", "ac", "ad", "ae", "af"),
		block("ag", "ah", "ai", "aj", "ak", "al"),
	}
}

func TestGetWordListPagedFollowResumesAcrossCalls(t *testing.T) {
	r := openFixture(t, largeBlocks(), "")

	first, exhausted, err := r.GetWordListPaged(Query{Phrase: "*", Max: 10})
	require.NoError(t, err)
	require.False(t, exhausted)
	require.Len(t, first, 10)

	second, exhausted, err := r.GetWordListPaged(Query{Phrase: "*", Max: 10, Follow: true})
	require.NoError(t, err)
	require.True(t, exhausted)
	require.Len(t, second, 2)
	require.NotEqual(t, first[0].Word, second[0].Word)

	// A fresh (non-follow) call for the same phrase starts over.
	restart, _, err := r.GetWordListPaged(Query{Phrase: "*", Max: 10})
	require.NoError(t, err)
	require.Equal(t, first, restart)
}

func TestGetWordListPagedNoMatch(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")
	hits, exhausted, err := r.GetWordListPaged(Query{Phrase: "zzz*", Max: 10})
	require.NoError(t, err)
	require.True(t, exhausted)
	require.Empty(t, hits)
}

func TestGetDefinitionFollowsLink(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")

	hits, err := r.GetWordListExact("cat")
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	def, err := r.GetDefinition(hits[0].Offset)
	require.NoError(t, err)
	require.Equal(t, "a living thing", def) // followed @@@LINK=animal
}

func TestGetDefinitionAppliesStylesheet(t *testing.T) {
	blocks := sampleBlocks()
	blocks[0].defs["apple"] = "see `1`bold`1` word"
	r := openFixture(t, blocks, "1 <b> </b>")

	hits, err := r.GetWordListExact("apple")
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	def, err := r.GetDefinition(hits[0].Offset)
	require.NoError(t, err)
	require.Equal(t, "see <b>bold</b> word", def)
}

func TestGetDefinitionOutOfRange(t *testing.T) {
	r := openFixture(t, sampleBlocks(), "")
	_, err := r.GetDefinition(1_000_000)
	require.ErrorIs(t, err, ErrOutOfRange)
}
