// Package withdrawal records stock withdrawals against one partition.
//
// Every line of a request is checked against current stock before any
// quantity changes. Decrements and the ledger entry are then written in a
// single transaction, so a request either applies completely or leaves the
// partition untouched.
package withdrawal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/store"
)

// Line asks for quantity units of one equipment record.
type Line struct {
	EquipmentID string `json:"equipmentId"`
	Quantity    int    `json:"quantityWithdrawn"`
}

// Request is a withdrawal as submitted by a client.
type Request struct {
	WithdrawalDate string `json:"withdrawalDate"`
	Description    string `json:"description"`
	Notes          string `json:"notes"`
	Items          []Line `json:"items"`
}

// Validate checks the request shape and normalizes the date.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.WithdrawalDate) == "" {
		return apperr.New(apperr.InvalidRequest, "withdrawal date is required")
	}
	date, err := model.ParseDate(strings.TrimSpace(r.WithdrawalDate))
	if err != nil {
		return apperr.New(apperr.InvalidRequest, "%s", err.Error())
	}
	r.WithdrawalDate = date

	if len(r.Items) == 0 {
		return apperr.New(apperr.InvalidRequest, "at least one item is required")
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.EquipmentID) == "" {
			return apperr.New(apperr.InvalidRequest, "item %d: equipment is required", i+1)
		}
		if it.Quantity <= 0 {
			return apperr.New(apperr.InvalidRequest, "item %d: quantity must be a positive integer", i+1)
		}
	}
	return nil
}

// Record validates req against the stock in db, decrements every line and
// appends the ledger entry. The returned withdrawal carries a snapshot of
// each line's equipment name and unit as they were when validated.
func Record(ctx context.Context, db *sqlx.DB, engineerName string, req Request) (*model.Withdrawal, error) {
	if strings.TrimSpace(engineerName) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "engineer name is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot, err := validate(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	for i, it := range req.Items {
		applied, err := store.DecrementQuantity(ctx, tx, it.EquipmentID, it.Quantity)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, insufficient(snapshot[i].EquipmentName)
		}
	}

	w := &model.Withdrawal{
		WithdrawalDate: req.WithdrawalDate,
		EngineerName:   engineerName,
		Description:    req.Description,
		Notes:          req.Notes,
		Items:          snapshot,
	}
	if _, err := store.InsertWithdrawal(ctx, tx, w); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing withdrawal: %w", err)
	}

	slog.Info("withdrawal recorded", "id", w.ID, "engineer", engineerName,
		"date", w.WithdrawalDate, "lines", len(w.Items), "total", w.TotalQuantity())
	return w, nil
}

// validate checks every line before anything is written. Lines naming the
// same equipment are checked against their combined quantity.
func validate(ctx context.Context, q sqlx.QueryerContext, lines []Line) ([]model.LineItem, error) {
	seen := make(map[string]*model.Equipment, len(lines))
	requested := make(map[string]int, len(lines))
	snapshot := make([]model.LineItem, 0, len(lines))

	for _, it := range lines {
		eq, ok := seen[it.EquipmentID]
		if !ok {
			var err error
			eq, err = store.FindEquipment(ctx, q, it.EquipmentID)
			if err != nil {
				return nil, err
			}
			seen[it.EquipmentID] = eq
		}

		// Compare against what is left rather than summing, so huge
		// quantities cannot overflow past the check.
		if it.Quantity > eq.Quantity-requested[it.EquipmentID] {
			return nil, insufficient(eq.Name)
		}
		requested[it.EquipmentID] += it.Quantity

		snapshot = append(snapshot, model.LineItem{
			EquipmentID:       eq.ID,
			EquipmentName:     eq.Name,
			QuantityWithdrawn: it.Quantity,
			Unit:              eq.Unit,
		})
	}
	return snapshot, nil
}

func insufficient(name string) error {
	return apperr.New(apperr.InsufficientStock, "insufficient stock for %s", name)
}
