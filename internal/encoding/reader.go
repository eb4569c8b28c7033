// Package encoding normalizes bank export files to UTF-8 before tokenizing.
// Banks are wildly inconsistent here: some ship UTF-8 with a BOM, some UTF-16,
// and plenty still export Windows-1252.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// peekSize is enough bytes for both BOM sniffing and charset heuristics.
const peekSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader wraps r in a reader that yields UTF-8, whatever the source
// encoding was.
//
// Resolution order:
//  1. BOM: UTF-8 BOM is stripped, UTF-16 LE/BE is decoded.
//  2. Content that already validates as UTF-8 passes through untouched.
//  3. chardet heuristics for the common single-byte charsets.
//  4. Windows-1252 as the last-resort assumption.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(head, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	if bytes.HasPrefix(head, bomUTF16LE) {
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if bytes.HasPrefix(head, bomUTF16BE) {
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if cm := detectCharmap(head); cm != nil {
		return transform.NewReader(br, cm.NewDecoder()), nil
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

// detectCharmap maps a chardet guess to a decoder we trust.
// Unknown or exotic guesses return nil and fall through to the default.
func detectCharmap(head []byte) *charmap.Charmap {
	result, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return nil
	}

	switch result.Charset {
	case "ISO-8859-1", "windows-1252":
		return charmap.Windows1252
	case "ISO-8859-15":
		return charmap.ISO8859_15
	case "ISO-8859-9":
		return charmap.ISO8859_9
	}

	return nil
}
