package pgxutil

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestPgxTxOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pgx.TxOptions{}, pgxTxOptions(nil))
	assert.Equal(t, pgx.TxOptions{}, pgxTxOptions(&sql.TxOptions{}))
	assert.Equal(t,
		pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadOnly},
		pgxTxOptions(&sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: true}))
	assert.Equal(t, pgx.RepeatableRead, pgxTxOptions(&sql.TxOptions{Isolation: sql.LevelSnapshot}).IsoLevel)
	assert.Equal(t, pgx.ReadCommitted, pgxTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}).IsoLevel)
}
