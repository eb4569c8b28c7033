package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclay/budgie/internal/encoding"
)

func TestNewUTF8Reader_Passthrough(t *testing.T) {
	input := "Date,Payee,Amount\nCafé Nero,-3.20\n"

	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Payee,Amount\n")...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Date,Payee,Amount\n", string(got))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "Date\n" encoded as UTF-16 LE with BOM.
	input := []byte{0xFF, 0xFE, 'D', 0, 'a', 0, 't', 0, 'e', 0, '\n', 0}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Date\n", string(got))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Café,£3.20\n" in Windows-1252: é = 0xE9, £ = 0xA3.
	input := []byte{'C', 'a', 'f', 0xE9, ',', 0xA3, '3', '.', '2', '0', '\n'}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Café,£3.20\n", string(got))
}
