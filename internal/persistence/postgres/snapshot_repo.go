package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coinlens/signalcore/internal/domain"
)

// SnapshotRepo persists generated signals and their realized outcomes.
type SnapshotRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSnapshotRepo creates a signal snapshot repository.
func NewSnapshotRepo(db *sqlx.DB, timeout time.Duration) *SnapshotRepo {
	return &SnapshotRepo{db: db, timeout: timeout}
}

// Insert writes a freshly generated snapshot. The future price and labels
// stay null until FillOutcome runs. Returns the assigned row id.
func (r *SnapshotRepo) Insert(ctx context.Context, snap domain.SignalSnapshot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	id := snap.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO signal_snapshots (id, symbol, generated_at, signal_rule)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, id, snap.Symbol, snap.GeneratedAt, snap.SignalRule); err != nil {
		return "", fmt.Errorf("failed to insert signal snapshot: %w", err)
	}
	return id, nil
}

// FillOutcome back-fills the realized outcome of a snapshot exactly once;
// rows with an outcome already set are left untouched.
func (r *SnapshotRepo) FillOutcome(ctx context.Context, id string, priceFuture float64, direction domain.Label, magnitudePct float64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE signal_snapshots
		SET price_future = $2, label_direction = $3, label_magnitude = $4
		WHERE id = $1 AND price_future IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, priceFuture, string(direction), magnitudePct)
	if err != nil {
		return fmt.Errorf("failed to fill snapshot outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check outcome update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snapshot %s not found or outcome already set", id)
	}
	return nil
}

// ListRealized returns snapshots for a symbol whose outcome is known,
// inside [start, end], ordered by generation time ascending.
func (r *SnapshotRepo) ListRealized(ctx context.Context, symbol string, start, end time.Time) ([]domain.SignalSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, symbol, generated_at, signal_rule, price_future, label_direction, label_magnitude
		FROM signal_snapshots
		WHERE symbol = $1 AND price_future IS NOT NULL
		  AND generated_at >= $2 AND generated_at <= $3
		ORDER BY generated_at ASC`

	var snaps []domain.SignalSnapshot
	if err := r.db.SelectContext(ctx, &snaps, query, symbol, start, end); err != nil {
		return nil, fmt.Errorf("failed to query realized snapshots: %w", err)
	}
	return snaps, nil
}
