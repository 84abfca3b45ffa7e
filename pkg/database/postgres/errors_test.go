package pg

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCheckNoRows(t *testing.T) {
	errNotFound := errors.New("not found")
	errOther := errors.New("other")

	assert.Equal(t, errNotFound, CheckNoRows(sql.ErrNoRows, errNotFound))
	assert.Equal(t, errOther, CheckNoRows(errOther, errNotFound))
	assert.NoError(t, CheckNoRows(nil, errNotFound))
	assert.False(t, IsNoRows(nil))
}

func TestCheckUniqueViolation(t *testing.T) {
	errExists := errors.New("exists")

	violation := errors.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "insert failed")
	other := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	assert.Equal(t, errExists, CheckUniqueViolation(violation, errExists))
	assert.Equal(t, other, CheckUniqueViolation(other, errExists))
	assert.NoError(t, CheckUniqueViolation(nil, errExists))

	assert.True(t, IsUniqueViolation(violation))
	assert.False(t, IsUniqueViolation(other))
	assert.False(t, IsUniqueViolation(nil))
}
