// Package tokenizer turns raw delimited bank exports into header and data rows.
// It deliberately does not use encoding/csv: bank files mix line endings (some
// Mac-era exports still end rows with a bare CR), pad cells with whitespace, and
// include decorative blank lines, all of which need handling before any schema
// is applied.
package tokenizer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dclay/budgie/internal/encoding"
)

var (
	// ErrEmptyFile means the file contained no rows at all.
	ErrEmptyFile = errors.New("file is empty")
	// ErrNoDataRows means the file contained a header row but nothing else.
	ErrNoDataRows = errors.New("file has a header but no data rows")
)

// Table is the tokenized form of an uploaded file. Cells are trimmed strings;
// no typing happens at this layer.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tokenize reads a delimited text file and splits it into a header row and data
// rows. The input is transcoded to UTF-8 first. Quoting follows the usual CSV
// convention: a doubled quote inside a quoted cell is a literal quote, and
// separators or line breaks inside a quoted cell are literal. CRLF, LF, and
// bare CR all terminate a row, a missing final newline still yields the last
// row, and rows that are blank after trimming are dropped.
func Tokenize(r io.Reader) (*Table, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	rows := scan(string(data))

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	if len(rows) == 1 {
		return nil, ErrNoDataRows
	}

	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// scan walks the input character by character, maintaining a single
// quoted-field flag.
func scan(data string) [][]string {
	var (
		rows    [][]string
		row     []string
		field   strings.Builder
		quoted  bool
		started bool // true once the current row has any content, even an empty field
	)

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}

	endRow := func() {
		endField()

		for _, cell := range row {
			if cell != "" {
				rows = append(rows, row)
				break
			}
		}

		row = nil
		started = false
	}

	runes := []rune(data)

	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if quoted {
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++

					continue
				}

				quoted = false

				continue
			}

			field.WriteRune(c)

			continue
		}

		switch c {
		case '"':
			quoted = true
			started = true
		case ',':
			endField()
			started = true
		case '\n':
			if started || field.Len() > 0 || len(row) > 0 {
				endRow()
			}
		case '\r':
			if started || field.Len() > 0 || len(row) > 0 {
				endRow()
			}

			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
		default:
			field.WriteRune(c)
			started = true
		}
	}

	// Trailing row without a final newline.
	if started || field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}
