// Package dbdriver names the supported SQL backends and the spellings
// accepted for them in flags and the environment.
package dbdriver

import (
	"fmt"
	"strings"
)

// Driver names a supported SQL backend.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

// aliases is the one list of accepted driver names. Empty means SQLite.
var aliases = map[string]Driver{
	"":           SQLite,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pg":         Postgres,
	"pgx":        Postgres,
}

// Parse maps an alias onto a Driver, ignoring case and surrounding space.
func Parse(s string) (Driver, error) {
	if d, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", s)
}
