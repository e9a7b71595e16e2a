// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"strconv"
	"strings"
)

// StyleEntry is one numbered entry of a parsed StyleSheet header attribute
// (§4.8): text to splice in before and after the tagged span.
type StyleEntry struct {
	Prefix string
	Suffix string
}

// parseStylesheet decodes the StyleSheet header attribute (§4.8). The
// attribute is a whitespace-separated token stream: a token that parses as
// a decimal integer starts a new numbered entry; subsequent tokens, until
// the next number, are bucketed into that entry — a token containing "/"
// is a suffix part (closing markup), anything else is a prefix part.
// Tokens preceding the first number are discarded; the returned slice is
// indexed by tag number, sized to the largest tag seen.
func parseStylesheet(raw string) []StyleEntry {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	byTag := make(map[int]*StyleEntry)
	maxTag := 0
	var cur *StyleEntry

	for _, tok := range fields {
		if n, err := strconv.Atoi(tok); err == nil {
			e := &StyleEntry{}
			byTag[n] = e
			cur = e
			if n > maxTag {
				maxTag = n
			}
			continue
		}
		if cur == nil {
			continue
		}
		if strings.Contains(tok, "/") {
			cur.Suffix += tok
		} else {
			if cur.Prefix != "" {
				cur.Prefix += " "
			}
			cur.Prefix += tok
		}
	}

	out := make([]StyleEntry, maxTag+1)
	for tag, e := range byTag {
		out[tag] = *e
	}
	return out
}

// expandStylesheet splices a definition's backtick-delimited style markers
// against the parsed stylesheet (§4.8). Splitting on "`" alternates plain
// text and tag-number segments, starting with text; each tag number toggles
// an open/close state, emitting Prefix the first time it is seen and Suffix
// the next. A marker whose number has no entry, or that fails to parse, is
// dropped (the surrounding text is otherwise unaffected). With no
// stylesheet entries, or no backtick in the text, def is returned unchanged.
func expandStylesheet(entries []StyleEntry, def string) string {
	if len(entries) == 0 || !strings.Contains(def, "`") {
		return def
	}

	parts := strings.Split(def, "`")
	open := make(map[int]bool)

	var b strings.Builder
	for i, seg := range parts {
		if i%2 == 0 {
			b.WriteString(seg)
			continue
		}
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 || n >= len(entries) {
			continue
		}
		if open[n] {
			b.WriteString(entries[n].Suffix)
		} else {
			b.WriteString(entries[n].Prefix)
		}
		open[n] = !open[n]
	}
	return b.String()
}
