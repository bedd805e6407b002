package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// IsProcessed reports whether a live processed record exists for the order id.
func (s *Store) IsProcessed(ctx context.Context, orderID string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM printed_orders WHERE order_id = ?`, orderID)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records that an order's label has been handed to the print
// and notify path. Marking an already-marked id only refreshes the timestamp.
func (s *Store) MarkProcessed(ctx context.Context, orderID string, at time.Time) error {
	if orderID == "" {
		return errors.New("order id is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO printed_orders (order_id, printed_at) VALUES (?, ?)
         ON CONFLICT(order_id) DO UPDATE SET printed_at = excluded.printed_at`,
		orderID,
		formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// Prune deletes processed records older than the expiry window, making those
// order ids eligible for reprocessing. Returns the number of records removed.
func (s *Store) Prune(ctx context.Context, now time.Time, expiry time.Duration) (int64, error) {
	cutoff := formatTime(now.Add(-expiry))
	res, err := s.db.ExecContext(ctx, `DELETE FROM printed_orders WHERE printed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune processed records: %w", err)
	}
	return res.RowsAffected()
}

// Processed returns processed records newest first, capped at limit when
// limit is positive.
func (s *Store) Processed(ctx context.Context, limit int) ([]ProcessedRecord, error) {
	query := `SELECT order_id, printed_at FROM printed_orders ORDER BY printed_at DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list processed records: %w", err)
	}
	defer rows.Close()

	var records []ProcessedRecord
	for rows.Next() {
		var (
			orderID string
			raw     string
		)
		if err := rows.Scan(&orderID, &raw); err != nil {
			return nil, fmt.Errorf("scan processed record: %w", err)
		}
		at, err := parseTimeString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse printed_at for order %s: %w", orderID, err)
		}
		records = append(records, ProcessedRecord{OrderID: orderID, PrintedAt: at})
	}
	return records, rows.Err()
}

// CountProcessed returns the number of live processed records.
func (s *Store) CountProcessed(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM printed_orders`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count processed records: %w", err)
	}
	return count, nil
}
