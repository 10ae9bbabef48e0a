package pg_test

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/credkit/pkg/pg"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("query: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(assert.AnError))
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505"}
	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("insert: %w", dup)))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}

func TestIsForeignKeyViolationError(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.False(t, pg.IsForeignKeyViolationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsForeignKeyViolationError(nil))
}
