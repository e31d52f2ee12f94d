package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "survey.db")
	db, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = db.Exec(`CREATE TABLE board (PROFILE_ID TEXT, DIALOG_NAME_BOARD INTEGER, CAPTURE_PHASE REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO board VALUES ('R1', 2, 1.0), ('R2', NULL, 2.5)`)
	require.NoError(t, err)
	return p
}

func TestSQLiteSource_Load(t *testing.T) {
	p := seedSQLite(t)
	src, err := Open("board", "sqlite://"+p+"#board", Options{})
	require.NoError(t, err)

	tbl, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"PROFILE_ID", "DIALOG_NAME_BOARD", "CAPTURE_PHASE"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())

	v, _ := tbl.Row(0).String("CAPTURE_PHASE")
	assert.Equal(t, "1", v)
	assert.Equal(t, 2.0, tbl.Row(0).Number("DIALOG_NAME_BOARD"))
	assert.True(t, tbl.Row(1).Field("DIALOG_NAME_BOARD").Null())
	assert.Equal(t, 2.5, tbl.Row(1).Number("CAPTURE_PHASE"))
}

func TestSQLiteSource_MissingTable(t *testing.T) {
	p := seedSQLite(t)
	_, err := NewSQLite("posm", p, "posm").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query posm")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"board"`, quoteIdent("board"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
