package dbdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Driver
	}{
		{"", SQLite},
		{" SQLite3 ", SQLite},
		{"sqlite", SQLite},
		{"PG", Postgres},
		{"pgx", Postgres},
		{"postgresql", Postgres},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse("mysql")
	assert.ErrorContains(t, err, `"mysql"`)
}

func TestEveryAliasParsesToItsDriver(t *testing.T) {
	for alias, want := range aliases {
		got, err := Parse(alias)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
