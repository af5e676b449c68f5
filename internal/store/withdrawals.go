package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/sitestock/internal/model"
)

// InsertWithdrawal appends a ledger entry with its line items and returns
// the new ID. ID and CreatedAt are assigned here and written back into w.
func InsertWithdrawal(ctx context.Context, db sqlx.ExecerContext, w *model.Withdrawal) (string, error) {
	w.ID = uuid.New().String()
	w.CreatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO withdrawals (id, withdrawal_date, engineer_name, description, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.WithdrawalDate, w.EngineerName, w.Description, w.Notes, w.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting withdrawal: %w", err)
	}

	for i, it := range w.Items {
		_, err := db.ExecContext(ctx,
			`INSERT INTO withdrawal_items (withdrawal_id, position, equipment_id, equipment_name, quantity, unit)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			w.ID, i, it.EquipmentID, it.EquipmentName, it.QuantityWithdrawn, it.Unit,
		)
		if err != nil {
			return "", fmt.Errorf("inserting withdrawal item: %w", err)
		}
	}

	return w.ID, nil
}

// GetWithdrawal returns a ledger entry by ID, or nil if absent.
func GetWithdrawal(ctx context.Context, db sqlx.QueryerContext, id string) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := sqlx.GetContext(ctx, db, &w,
		`SELECT id, withdrawal_date, engineer_name, description, notes, created_at
		 FROM withdrawals WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting withdrawal: %w", err)
	}

	list := []model.Withdrawal{w}
	if err := attachItems(ctx, db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListWithdrawals returns ledger entries newest first. A non-nil window
// keeps only entries whose withdrawal date falls within it, both ends
// included.
func ListWithdrawals(ctx context.Context, db sqlx.QueryerContext, window *model.DateRange) ([]model.Withdrawal, error) {
	query := `SELECT id, withdrawal_date, engineer_name, description, notes, created_at FROM withdrawals`
	var args []any
	if window != nil {
		query += ` WHERE withdrawal_date >= ? AND withdrawal_date <= ?`
		args = append(args, window.Start, window.End)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	list := []model.Withdrawal{}
	if err := sqlx.SelectContext(ctx, db, &list, query, args...); err != nil {
		return nil, fmt.Errorf("listing withdrawals: %w", err)
	}
	if err := attachItems(ctx, db, list); err != nil {
		return nil, err
	}
	return list, nil
}

func attachItems(ctx context.Context, db sqlx.QueryerContext, list []model.Withdrawal) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i, w := range list {
		ids[i] = w.ID
		index[w.ID] = i
		list[i].Items = []model.LineItem{}
	}

	query, args, err := sqlx.In(
		`SELECT withdrawal_id, equipment_id, equipment_name, quantity, unit
		 FROM withdrawal_items WHERE withdrawal_id IN (?) ORDER BY withdrawal_id, position`, ids)
	if err != nil {
		return fmt.Errorf("building item query: %w", err)
	}

	var rows []struct {
		WithdrawalID string `db:"withdrawal_id"`
		model.LineItem
	}
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return fmt.Errorf("listing withdrawal items: %w", err)
	}
	for _, r := range rows {
		i := index[r.WithdrawalID]
		list[i].Items = append(list[i].Items, r.LineItem)
	}
	return nil
}
