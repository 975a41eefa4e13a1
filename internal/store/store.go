package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrStaleMatch means the match row changed after it was loaded.
	ErrStaleMatch = errors.New("match was modified concurrently")
	// ErrInUse means a delete was refused because other rows still reference the record.
	ErrInUse = errors.New("record is still referenced")
)

func translateDeleteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return ErrInUse
	}
	return err
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// selectIn runs a query containing a single "IN (?)" placeholder expanded over ids.
func selectIn(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(query, idStrings(ids))
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}
