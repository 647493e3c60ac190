package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/service"
)

// ErrNoSnapshot is returned when the cache holds no snapshot.
var ErrNoSnapshot = errors.New("no cached snapshot")

// fetchedAtLayout is fixed width so fetched_at sorts lexically.
const fetchedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveSnapshot stores txs as a new snapshot in a single transaction.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, source string, fetchedAt time.Time, txs []model.Transaction) (*service.SnapshotMeta, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(source, "source"); err != nil {
		return nil, err
	}
	if err := validateFetchedAt(fetchedAt); err != nil {
		return nil, err
	}
	if err := validateTransactions(txs); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (source, fetched_at, tx_count) VALUES (?, ?, ?)`,
		source, fetchedAt.UTC().Format(fetchedAtLayout), len(txs))
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_transactions
			(snapshot_id, position, raw_timestamp, ts_unix_nano, player_name, type, item, category, amount, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range txs {
		var nanos int64
		if txn.HasValidTimestamp() {
			nanos = txn.Timestamp.UnixNano()
		}
		if _, err = stmt.ExecContext(ctx, id, i, txn.RawTimestamp, nanos,
			txn.PlayerName, string(txn.Type), txn.Item, txn.Category, txn.Amount, txn.Price); err != nil {
			return nil, fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return &service.SnapshotMeta{
		ID:        id,
		Source:    source,
		FetchedAt: fetchedAt,
		Count:     len(txs),
	}, nil
}

// LatestSnapshot returns the most recently fetched snapshot and its transactions
// in their original order. It returns ErrNoSnapshot when the cache is empty.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context) (*service.SnapshotMeta, []model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}

	metas, err := s.ListSnapshots(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(metas) == 0 {
		return nil, nil, ErrNoSnapshot
	}
	meta := metas[0]

	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_timestamp, ts_unix_nano, player_name, type, item, category, amount, price
		FROM snapshot_transactions
		WHERE snapshot_id = ?
		ORDER BY position`, meta.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query snapshot transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	txs := make([]model.Transaction, 0, meta.Count)
	for rows.Next() {
		var (
			txn   model.Transaction
			nanos int64
			typ   string
		)
		if err := rows.Scan(&txn.RawTimestamp, &nanos, &txn.PlayerName, &typ,
			&txn.Item, &txn.Category, &txn.Amount, &txn.Price); err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = model.TransactionType(typ)
		if nanos != 0 {
			txn.Timestamp = time.Unix(0, nanos)
		}
		txs = append(txs, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return &meta, txs, nil
}

// ListSnapshots returns snapshot metadata, newest first.
func (s *SQLiteStorage) ListSnapshots(ctx context.Context, limit int) ([]service.SnapshotMeta, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, fetched_at, tx_count
		FROM snapshots
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metas []service.SnapshotMeta
	for rows.Next() {
		meta, err := scanSnapshotMeta(rows)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return metas, nil
}

// PruneSnapshots deletes all but the newest keep snapshots and reports how
// many were removed.
func (s *SQLiteStorage) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stale = `SELECT id FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT -1 OFFSET ?`

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshot_transactions WHERE snapshot_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("failed to delete snapshot transactions: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return int(removed), nil
}

func scanSnapshotMeta(rows *sql.Rows) (service.SnapshotMeta, error) {
	var (
		meta      service.SnapshotMeta
		fetchedAt string
	)
	if err := rows.Scan(&meta.ID, &meta.Source, &fetchedAt, &meta.Count); err != nil {
		return meta, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	ts, err := time.Parse(fetchedAtLayout, fetchedAt)
	if err != nil {
		return meta, fmt.Errorf("failed to parse snapshot time %q: %w", fetchedAt, err)
	}
	meta.FetchedAt = ts
	return meta, nil
}
