package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclay/budgie/internal/normalize"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"£1,234.56", "1234.56", true},
		{"$ 99.00", "99", true},
		{"(100.00)", "-100", true},
		{"1.234,56", "1234.56", true},
		{"-588,74", "-588.74", true},
		{"1,234,567.89", "1234567.89", true},
		{"42", "42", true},
		{"-42.00", "-42", true},
		{"abc", "", false},
		{"", "", false},
		{"£", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := normalize.ParseAmount(tt.input)

			require.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}
