package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return mock
}

func TestReplaceTable_Success(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "survey"."board" \("PROFILE_ID" TEXT, "CAPTURE_PHASE" TEXT\)`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`TRUNCATE "survey"."board"`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"survey", "board"}, []string{"PROFILE_ID", "CAPTURE_PHASE"}).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := ReplaceTable(context.Background(), mock, ReplaceConfig{
		Table:   "survey.board",
		Columns: []string{"PROFILE_ID", "CAPTURE_PHASE"},
	}, [][]any{{"R1", "1"}, {"R2", nil}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTable_CopyErrorRollsBack(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "board"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`TRUNCATE "board"`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"board"}, []string{"PROFILE_ID"}).WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err := ReplaceTable(context.Background(), mock, ReplaceConfig{Table: "board", Columns: []string{"PROFILE_ID"}}, [][]any{{"R1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO board")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTable_Validation(t *testing.T) {
	_, err := ReplaceTable(context.Background(), nil, ReplaceConfig{Table: "board"}, nil)
	assert.Error(t, err)

	_, err = ReplaceTable(context.Background(), nil, ReplaceConfig{Columns: []string{"a"}}, nil)
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"board"}, Identifier("board"))
	assert.Equal(t, pgx.Identifier{"survey", "board"}, Identifier("survey.board"))
}
