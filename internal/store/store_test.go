package store

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "votes_user_id_poll_id_key"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(errors.Wrap(dup, "insert vote")))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("broken pipe")))
	assert.False(t, isUniqueViolation(nil))
}

func TestQueriesUseDollarPlaceholders(t *testing.T) {
	query, args, err := psql.Select("*").From("polls").Where(sq.Eq{"id": 7}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM polls WHERE id = $1", query)
	assert.Equal(t, []interface{}{7}, args)
}
