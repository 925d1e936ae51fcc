package db

import (
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrTranscodeColumnsMissing is returned by transcode-state reads and writes
// when the pitches table does not carry the extended video columns yet.
// Callers treat it as "degraded store", not as a request failure.
var ErrTranscodeColumnsMissing = errors.New("pitches table is missing transcode columns")

// Capabilities tracks whether the store has the extended transcode columns.
// The flag is probed lazily: the first read or write that fails with an
// undefined-column error flips it, and it stays flipped for the process
// lifetime. Safe for concurrent use; passed by injection rather than kept
// as a package global.
type Capabilities struct {
	mu     sync.RWMutex
	legacy bool
}

func NewCapabilities() *Capabilities {
	return &Capabilities{}
}

// Legacy reports whether the store has been downgraded to the reduced
// column set.
func (c *Capabilities) Legacy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.legacy
}

// MarkLegacy downgrades the store. Sticky; repeated calls are no-ops.
func (c *Capabilities) MarkLegacy() {
	c.mu.Lock()
	c.legacy = true
	c.mu.Unlock()
}

// IsUndefinedColumnErr matches the Postgres errors raised when a query
// touches the extended video columns on a schema that predates them.
// 42703 is undefined_column, 42P01 is undefined_table.
func IsUndefinedColumnErr(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42703" || pgErr.Code == "42P01"
}
