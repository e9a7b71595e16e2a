// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetResourceNormalizesPath(t *testing.T) {
	blocks := []fixtureKeyBlock{
		{
			words: []string{`\images\cat.png`, `\images\dog.png`},
			defs: map[string]string{
				`\images\cat.png`: "PNGDATA-cat",
				`\images\dog.png`: "PNGDATA-dog",
			},
		},
	}
	buf := buildFixtureExt(blocks, "", false)
	r, err := Open(OpenBytes(buf), &Options{Ext: ".mdd"})
	require.NoError(t, err)

	data, err := r.GetResource("images/cat.png")
	require.NoError(t, err)
	require.Equal(t, "PNGDATA-cat", string(data))

	data, err = r.GetResource(`\Images\Dog.PNG`)
	require.NoError(t, err)
	require.Equal(t, "PNGDATA-dog", string(data))
}

func TestGetResourceNotFound(t *testing.T) {
	blocks := []fixtureKeyBlock{
		{
			words: []string{`\images\cat.png`},
			defs:  map[string]string{`\images\cat.png`: "PNGDATA-cat"},
		},
	}
	buf := buildFixtureExt(blocks, "", false)
	r, err := Open(OpenBytes(buf), &Options{Ext: ".mdd"})
	require.NoError(t, err)

	_, err = r.GetResource("images/missing.png")
	require.ErrorIs(t, err, ErrResourceNotFound)
}
