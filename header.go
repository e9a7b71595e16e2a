// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mdict

import (
	"encoding/binary"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"

	"github.com/mdictgo/mdict/internal/scan"
)

// HeaderAttributes holds the parsed XML header (§3 "HeaderAttributes").
type HeaderAttributes struct {
	EngineVersion   float64
	Encoding        scan.Encoding
	Encrypted       int // 2-bit flag; bit 1 (1) = header, bit 2 (2) = keyword index
	KeyCaseSensitive bool
	StripKey        bool
	Stylesheet      []StyleEntry
	Title           string
	Description     string
	CreationDate    string

	// rawStylesheet is the unparsed StyleSheet attribute, retained for
	// diagnostics; the parsed form lives in Stylesheet.
	rawStylesheet string
}

// IsV2 reports whether engine_version should be treated as v2 (>= 2.0).
func (h *HeaderAttributes) IsV2() bool { return h.EngineVersion >= 2.0 }

// Profile derives the version-dependent BlockScanner profile from the
// header (§3).
func (h *HeaderAttributes) Profile() scan.Profile {
	v := 1
	if h.IsV2() {
		v = 2
	}
	return scan.Profile{Version: v, Enc: h.Encoding}
}

// HeaderEncryptedBit1 reports whether the (unsupported) keyword-header
// encryption bit is set.
func (h *HeaderAttributes) HeaderEncryptedBit1() bool { return h.Encrypted&0x1 != 0 }

// KeywordIndexEncryptedBit2 reports whether the keyword-index encryption
// bit is set (the only encryption mode this reader supports).
func (h *HeaderAttributes) KeywordIndexEncryptedBit2() bool { return h.Encrypted&0x2 != 0 }

// decodeHeader implements HeaderDecoder (§4.4): reads the 4-byte header
// length, the UTF-16LE XML payload, parses it, and consumes the trailing
// 4-byte checksum. It returns the parsed attributes and the total header
// footprint (4 + header_length + 4), the offset at which the keyword
// section begins.
func decodeHeader(src ByteSource) (*HeaderAttributes, int64, error) {
	lenBuf, err := src.ReadAt(0, 4)
	if err != nil {
		return nil, 0, errors.Wrap(err, "mdict: reading header length")
	}
	headerLen := int64(binary.BigEndian.Uint32(lenBuf))

	xmlUTF16, err := src.ReadAt(4, headerLen)
	if err != nil {
		return nil, 0, errors.Wrap(err, "mdict: reading header payload")
	}

	// Strip a single trailing NUL code unit (2 bytes, little-endian 0x0000).
	if len(xmlUTF16) >= 2 && xmlUTF16[len(xmlUTF16)-2] == 0 && xmlUTF16[len(xmlUTF16)-1] == 0 {
		xmlUTF16 = xmlUTF16[:len(xmlUTF16)-2]
	}

	xmlText, err := decodeUTF16LE(xmlUTF16)
	if err != nil {
		return nil, 0, corruptf("header is not valid UTF-16LE: %s", err)
	}

	attrs, err := parseHeaderXML(xmlText)
	if err != nil {
		return nil, 0, err
	}

	footprint := 4 + headerLen + 4
	return attrs, footprint, nil
}

// decodeUTF16LE decodes raw UTF-16LE bytes to a string. The header is
// decoded ahead of HeaderAttributes existing, so it cannot go through
// scan.Scanner (which needs a Profile); it uses the same x/text codec
// scan.Scanner uses for UTF-16 keyword/definition text.
func decodeUTF16LE(b []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseHeaderXML(xmlText string) (*HeaderAttributes, error) {
	dec := xml.NewDecoder(strings.NewReader(xmlText))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, corruptf("header XML has no Dictionary/Library_Data root element")
		}
		if err != nil {
			return nil, corruptf("header XML parse error: %s", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "Dictionary" && se.Name.Local != "Library_Data" {
			continue
		}
		return attributesFromElement(se)
	}
}

func attributesFromElement(se xml.StartElement) (*HeaderAttributes, error) {
	m := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		m[a.Name.Local] = a.Value
	}

	h := &HeaderAttributes{
		Title:        m["Title"],
		Description:  m["Description"],
		CreationDate: m["CreationDate"],
		rawStylesheet: m["StyleSheet"],
	}

	if v, ok := m["GeneratedByEngineVersion"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedVersion, "mdict: GeneratedByEngineVersion %q is not numeric", v)
		}
		h.EngineVersion = f
	} else if v, ok := m["RequiredEngineVersion"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedVersion, "mdict: RequiredEngineVersion %q is not numeric", v)
		}
		h.EngineVersion = f
	} else {
		return nil, errors.Wrap(ErrUnsupportedVersion, "mdict: missing engine version attribute")
	}

	switch strings.ToUpper(m["Encoding"]) {
	case "", "UTF-16", "UTF16":
		h.Encoding = scan.EncodingUTF16
	case "UTF-8", "UTF8":
		h.Encoding = scan.EncodingUTF8
	case "GBK", "GB2312", "GB18030":
		h.Encoding = scan.EncodingGBK
	case "BIG5":
		h.Encoding = scan.EncodingBIG5
	default:
		return nil, corruptf("unrecognized Encoding attribute %q", m["Encoding"])
	}

	if enc, ok := m["Encrypted"]; ok && enc != "" {
		n, err := strconv.Atoi(enc)
		if err != nil {
			return nil, corruptf("Encrypted attribute %q is not decimal", enc)
		}
		h.Encrypted = n
	}
	if h.HeaderEncryptedBit1() {
		return nil, errors.Wrap(ErrUnsupportedEncryption, "mdict: keyword-header encryption requires a license key")
	}

	h.KeyCaseSensitive = yesNo(m["KeyCaseSensitive"], false)
	h.StripKey = yesNo(m["StripKey"], !h.IsV2())

	h.Stylesheet = parseStylesheet(h.rawStylesheet)

	return h, nil
}

func yesNo(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	default:
		return def
	}
}
