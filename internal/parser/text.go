package parser

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lexical levels, S-57 Part 3 §2.4.
const (
	lexicalASCII  = 0 // ISO/IEC 646 IRV
	lexicalLatin1 = 1 // ISO 8859-1
	lexicalUCS2   = 2 // ISO/IEC 10646-1 UCS-2, little endian
)

// lexicalLevels are the DSSI AALL and NALL values of a dataset.
type lexicalLevels struct {
	attf int
	natf int
}

// defaultLexicalLevels applies when a file carries no DSSI field. ENC producers
// almost always encode NATF as UCS-2.
func defaultLexicalLevels() lexicalLevels {
	return lexicalLevels{attf: lexicalLatin1, natf: lexicalUCS2}
}

// decodeText converts an attribute value at the given lexical level to NFC UTF-8.
// Undecodable input is returned byte-for-byte.
func decodeText(raw []byte, level int) string {
	var t transform.Transformer
	switch level {
	case lexicalUCS2:
		t = transform.Chain(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), norm.NFC)
	case lexicalLatin1:
		t = transform.Chain(charmap.ISO8859_1.NewDecoder(), norm.NFC)
	default:
		return string(raw)
	}

	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
