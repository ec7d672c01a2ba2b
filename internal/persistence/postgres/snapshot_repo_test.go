package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinlens/signalcore/internal/domain"
)

func TestSnapshotInsert_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotRepo(db, time.Second)

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO signal_snapshots`).
		WithArgs(sqlmock.AnyArg(), "BTC", at, "BUY").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Insert(context.Background(), domain.SignalSnapshot{
		Symbol:      "BTC",
		GeneratedAt: at,
		SignalRule:  "BUY",
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated id must be a uuid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotInsert_KeepsExplicitID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotRepo(db, time.Second)

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO signal_snapshots`).
		WithArgs("snap-1", "ETH", at, "SELL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Insert(context.Background(), domain.SignalSnapshot{
		ID:          "snap-1",
		Symbol:      "ETH",
		GeneratedAt: at,
		SignalRule:  "SELL",
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFillOutcome(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotRepo(db, time.Second)

	mock.ExpectExec(`UPDATE signal_snapshots`).
		WithArgs("snap-1", 97_000.0, "UP", 2.4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.FillOutcome(context.Background(), "snap-1", 97_000, domain.LabelUp, 2.4)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFillOutcome_AlreadySet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotRepo(db, time.Second)

	mock.ExpectExec(`UPDATE signal_snapshots`).
		WithArgs("snap-1", 97_000.0, "DOWN", -1.1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.FillOutcome(context.Background(), "snap-1", 97_000, domain.LabelDown, -1.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outcome already set")
}

func TestListRealized(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotRepo(db, time.Second)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	mock.ExpectQuery(`FROM signal_snapshots\s+WHERE symbol = \$1 AND price_future IS NOT NULL`).
		WithArgs("BTC", start, end).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "symbol", "generated_at", "signal_rule", "price_future", "label_direction", "label_magnitude",
		}).
			AddRow("a", "BTC", start.Add(time.Hour), "BUY", 97_000.0, "UP", 2.4).
			AddRow("b", "BTC", start.Add(2*time.Hour), "SELL", 95_000.0, nil, nil))

	snaps, err := repo.ListRealized(context.Background(), "BTC", start, end)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "BUY", snaps[0].SignalRule)
	require.NotNil(t, snaps[0].LabelMagnitude)
	assert.Equal(t, 2.4, *snaps[0].LabelMagnitude)
	assert.Nil(t, snaps[1].LabelDirection)
	assert.NoError(t, mock.ExpectationsWereMet())
}
