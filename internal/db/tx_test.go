package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Configure(db))
	_, err = db.Exec(`CREATE TABLE items (name TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestWithTx_Commits(t *testing.T) {
	db := openTestDB(t)

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items VALUES ('a')`); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO items VALUES ('b')`)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count(t, db))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Zero(t, count(t, db))
}

func TestConfigure_EnablesForeignKeys(t *testing.T) {
	db := openTestDB(t)

	var on int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	assert.Equal(t, 1, on)
}
