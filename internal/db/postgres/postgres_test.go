package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestSnapshotRepository_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("строки нет", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT document::text FROM points_snapshots`).
			WithArgs(snapshotRowID).
			WillReturnRows(pgxmock.NewRows([]string{"document"}))

		data, err := NewSnapshotRepository(mock).Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("документ найден", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT document::text FROM points_snapshots`).
			WithArgs(snapshotRowID).
			WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(`{"user_points":{"1":20}}`))

		data, err := NewSnapshotRepository(mock).Load(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"user_points":{"1":20}}`, string(data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка базы", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT document::text FROM points_snapshots`).
			WithArgs(snapshotRowID).
			WillReturnError(errors.New("connection reset"))

		_, err := NewSnapshotRepository(mock).Load(ctx)
		assert.Error(t, err)
	})
}

func TestSnapshotRepository_Save(t *testing.T) {
	ctx := context.Background()
	doc := []byte(`{"user_points":{"1":140}}`)

	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO points_snapshots .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(snapshotRowID, string(doc)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewSnapshotRepository(mock).Save(ctx, doc))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(`INSERT INTO points_snapshots`).
		WithArgs(snapshotRowID, string(doc)).
		WillReturnError(errors.New("disk full"))
	assert.Error(t, NewSnapshotRepository(mock).Save(ctx, doc))
}

func TestRunMigrations(t *testing.T) {
	ctx := context.Background()

	t.Run("новая база", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(1).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS points_snapshots`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs(1).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		require.NoError(t, RunMigrations(ctx, mock))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("миграция уже применена", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(1).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		require.NoError(t, RunMigrations(ctx, mock))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка миграции откатывает транзакцию", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(1).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS points_snapshots`).
			WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		assert.Error(t, RunMigrations(ctx, mock))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
