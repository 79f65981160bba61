package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(db), mock
}

func TestGetGroup_DriverErrorIsWrapped(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("disk I/O error")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + groupColumns + " FROM groups WHERE id = ?")).
		WithArgs("g1").
		WillReturnError(boom)

	_, err := store.GetGroup(context.Background(), "g1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateExpense_RollsBackOnParticipantFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO expenses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO expense_participants").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := store.CreateExpense(context.Background(), &models.Expense{
		GroupID:      "g1",
		Description:  "Dinner",
		Payer:        alice,
		Participants: []string{alice},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert participant")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSyncCursor_DriverError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO sync_cursors").WillReturnError(errors.New("read-only"))

	err := store.SetSyncCursor(context.Background(), "splitme", 5)
	assert.ErrorContains(t, err, "failed to set sync cursor")
	assert.NoError(t, mock.ExpectationsWereMet())
}
