// Package store implements ruleset catalog persistence: the ruleset
// lifecycle state machine, rule listing and edits, document import,
// and the append-only audit trail.
//
// All filtering and pagination is performed in SQL so the rules and
// rulesets listings share one pagination contract regardless of
// catalog size. Lifecycle transitions run in a single transaction and
// the single-active-per-(domain, jurisdiction) invariant is backed by
// a partial unique index, so concurrent writers cannot produce two
// active rulesets even across processes.
package store

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lcgate/rulekeeper/internal/core/db"
)

// Store provides catalog access over a sqlx database handle.
// Named queries (auth, audit) come from the embedded query files;
// filterable listings are built inline.
type Store struct {
	db      *sqlx.DB
	queries *db.Queries
	now     func() time.Time
}

// New creates a Store. The clock is UTC wall time; tests may override
// it through NewWithClock.
func New(database *sqlx.DB, queries *db.Queries) *Store {
	return NewWithClock(database, queries, func() time.Time { return time.Now().UTC() })
}

// NewWithClock creates a Store with an explicit clock.
func NewWithClock(database *sqlx.DB, queries *db.Queries, now func() time.Time) *Store {
	return &Store{db: database, queries: queries, now: now}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// isUniqueViolation matches constraint errors from both supported
// drivers. lib/pq names the violated index; go-sqlite3 lists the
// indexed columns instead, so both forms are checked.
func isUniqueViolation(err error, indexName string, columns ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, indexName) {
		return true
	}
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	for _, col := range columns {
		if !strings.Contains(msg, "rulesets."+col) {
			return false
		}
	}
	return len(columns) > 0
}

// totalPages computes the 1-minimum page count.
func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// clampPage clamps page into [1, totalPages]. Pages are clamped down
// after a filter change, never up.
func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
