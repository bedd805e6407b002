package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"labelspool/internal/label"
)

// Enqueue appends a deferred label. The entry carries the label payload and a
// notification context snapshot so a later drain needs no source round trip.
func (s *Store) Enqueue(ctx context.Context, entry DeferredLabel) (DeferredLabel, error) {
	if entry.OrderID == "" {
		return DeferredLabel{}, errors.New("order id is required")
	}
	if len(entry.Payload) == 0 {
		return DeferredLabel{}, errors.New("label payload is required")
	}

	contextJSON, err := json.Marshal(entry.Context)
	if err != nil {
		return DeferredLabel{}, fmt.Errorf("marshal notification context: %w", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO deferred_labels (order_id, package_id, courier_code, label_data, label_ext, context_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.OrderID,
		entry.PackageID,
		entry.Courier,
		entry.Payload,
		entry.Ext,
		string(contextJSON),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return DeferredLabel{}, fmt.Errorf("enqueue deferred label: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return DeferredLabel{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// DrainAll returns the queue contents in insertion order without removing
// anything; removal is explicit per entry or wholesale via PersistAll.
func (s *Store) DrainAll(ctx context.Context) ([]DeferredLabel, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, order_id, package_id, courier_code, label_data, label_ext, context_json, created_at
         FROM deferred_labels ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list deferred labels: %w", err)
	}
	defer rows.Close()

	var entries []DeferredLabel
	for rows.Next() {
		entry, err := scanDeferred(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeferredOrderIDs returns the distinct order ids that currently have a
// queued label, so polling can skip orders that are already waiting.
func (s *Store) DeferredOrderIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT order_id FROM deferred_labels`)
	if err != nil {
		return nil, fmt.Errorf("list deferred order ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var orderID string
		if err := rows.Scan(&orderID); err != nil {
			return nil, fmt.Errorf("scan deferred order id: %w", err)
		}
		ids[orderID] = struct{}{}
	}
	return ids, rows.Err()
}

// Remove deletes exactly one drained entry after it has been processed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deferred_labels WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove deferred label: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// PersistAll atomically replaces the persisted queue with the given working
// set, so a partially drained tick commits one consistent state. Entry ids
// are preserved to keep insertion order stable across restarts.
func (s *Store) PersistAll(ctx context.Context, entries []DeferredLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM deferred_labels`); err != nil {
		return fmt.Errorf("clear deferred labels: %w", err)
	}

	for _, entry := range entries {
		contextJSON, err := json.Marshal(entry.Context)
		if err != nil {
			return fmt.Errorf("marshal notification context: %w", err)
		}
		createdAt := entry.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO deferred_labels (id, order_id, package_id, courier_code, label_data, label_ext, context_json, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.OrderID,
			entry.PackageID,
			entry.Courier,
			entry.Payload,
			entry.Ext,
			string(contextJSON),
			formatTime(createdAt),
		); err != nil {
			return fmt.Errorf("persist deferred label %d: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist: %w", err)
	}
	return nil
}

// CountDeferred returns the number of queued labels.
func (s *Store) CountDeferred(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM deferred_labels`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count deferred labels: %w", err)
	}
	return count, nil
}

func scanDeferred(rows *sql.Rows) (DeferredLabel, error) {
	var (
		entry       DeferredLabel
		contextJSON string
		createdRaw  string
	)
	if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.PackageID, &entry.Courier, &entry.Payload, &entry.Ext, &contextJSON, &createdRaw); err != nil {
		return DeferredLabel{}, fmt.Errorf("scan deferred label: %w", err)
	}
	if contextJSON != "" {
		var order label.Order
		if err := json.Unmarshal([]byte(contextJSON), &order); err != nil {
			return DeferredLabel{}, fmt.Errorf("decode notification context: %w", err)
		}
		entry.Context = order
	}
	created, err := parseTimeString(createdRaw)
	if err != nil {
		return DeferredLabel{}, fmt.Errorf("parse created_at for entry %d: %w", entry.ID, err)
	}
	entry.CreatedAt = created
	return entry, nil
}
