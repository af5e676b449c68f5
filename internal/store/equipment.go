package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/model"
)

const equipmentColumns = `id, name, category, quantity, unit, location, condition,
	serial_number, photo_mime, created_at, updated_at`

// EquipmentInput carries the writable fields of an equipment record.
type EquipmentInput struct {
	Name         string
	Category     string
	Quantity     int
	Unit         string
	Location     string
	Condition    string
	SerialNumber string
}

// ListEquipment returns every equipment record, newest first.
func ListEquipment(ctx context.Context, db sqlx.QueryerContext) ([]model.Equipment, error) {
	items := []model.Equipment{}
	err := sqlx.SelectContext(ctx, db, &items,
		`SELECT `+equipmentColumns+` FROM equipment ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	return items, nil
}

// GetEquipment returns an equipment record by ID, or nil if absent.
func GetEquipment(ctx context.Context, db sqlx.QueryerContext, id string) (*model.Equipment, error) {
	var eq model.Equipment
	err := sqlx.GetContext(ctx, db, &eq,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment: %w", err)
	}
	return &eq, nil
}

// FindEquipment is GetEquipment that fails with EquipmentNotFound.
func FindEquipment(ctx context.Context, db sqlx.QueryerContext, id string) (*model.Equipment, error) {
	eq, err := GetEquipment(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, apperr.New(apperr.EquipmentNotFound, "equipment %s not found", id)
	}
	return eq, nil
}

func getEquipmentByName(ctx context.Context, db sqlx.QueryerContext, name string) (*model.Equipment, error) {
	var eq model.Equipment
	err := sqlx.GetContext(ctx, db, &eq,
		`SELECT `+equipmentColumns+` FROM equipment WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment by name: %w", err)
	}
	return &eq, nil
}

// UpsertEquipment inserts a record or, when one with the same name exists,
// overwrites its fields. Quantity is replaced, not added. An empty serial
// number keeps the stored one. The boolean reports whether an existing
// record was updated.
func UpsertEquipment(ctx context.Context, db *sqlx.DB, in EquipmentInput) (*model.Equipment, bool, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getEquipmentByName(ctx, tx, in.Name)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	var id string
	if existing != nil {
		id = existing.ID
		serial := in.SerialNumber
		if serial == "" {
			serial = existing.SerialNumber
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE equipment SET category = ?, quantity = ?, unit = ?, location = ?,
			        condition = ?, serial_number = ?, updated_at = ?
			 WHERE id = ?`,
			in.Category, in.Quantity, in.Unit, in.Location, in.Condition, serial, now, id,
		)
		if err != nil {
			return nil, false, fmt.Errorf("updating equipment: %w", err)
		}
	} else {
		id = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO equipment (id, name, category, quantity, unit, location, condition,
			                        serial_number, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, in.Name, in.Category, in.Quantity, in.Unit, in.Location, in.Condition,
			in.SerialNumber, now, now,
		)
		if err != nil {
			return nil, false, fmt.Errorf("inserting equipment: %w", err)
		}
	}

	eq, err := GetEquipment(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing equipment: %w", err)
	}
	return eq, existing != nil, nil
}

// UpdateEquipment overwrites every field of the record with the given ID,
// including its name. Renaming onto another record's name is rejected.
func UpdateEquipment(ctx context.Context, db *sqlx.DB, id string, in EquipmentInput) (*model.Equipment, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := FindEquipment(ctx, tx, id); err != nil {
		return nil, err
	}
	clash, err := getEquipmentByName(ctx, tx, in.Name)
	if err != nil {
		return nil, err
	}
	if clash != nil && clash.ID != id {
		return nil, apperr.New(apperr.InvalidRequest, "equipment named %q already exists", in.Name)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE equipment SET name = ?, category = ?, quantity = ?, unit = ?, location = ?,
		        condition = ?, serial_number = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.Category, in.Quantity, in.Unit, in.Location, in.Condition, in.SerialNumber,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating equipment: %w", err)
	}

	eq, err := GetEquipment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing equipment: %w", err)
	}
	return eq, nil
}

// DeleteEquipment removes a record. Withdrawal history keeps its snapshot.
func DeleteEquipment(ctx context.Context, db sqlx.ExecerContext, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting equipment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting equipment: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.EquipmentNotFound, "equipment %s not found", id)
	}
	return nil
}

// DecrementQuantity subtracts amount from the stored quantity only if
// enough stock remains. It reports whether the decrement was applied.
func DecrementQuantity(ctx context.Context, db sqlx.ExecerContext, id string, amount int) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE equipment SET quantity = quantity - ?, updated_at = ?
		 WHERE id = ? AND quantity >= ?`,
		amount, time.Now().UTC(), id, amount,
	)
	if err != nil {
		return false, fmt.Errorf("decrementing quantity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrementing quantity: %w", err)
	}
	return n == 1, nil
}

// ListLowStock returns records whose quantity is below threshold, scarcest
// first.
func ListLowStock(ctx context.Context, db sqlx.QueryerContext, threshold int) ([]model.Equipment, error) {
	items := []model.Equipment{}
	err := sqlx.SelectContext(ctx, db, &items,
		`SELECT `+equipmentColumns+` FROM equipment WHERE quantity < ? ORDER BY quantity, name`,
		threshold)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	return items, nil
}

// SetEquipmentPhoto stores a record's photo.
func SetEquipmentPhoto(ctx context.Context, db sqlx.ExecerContext, id string, photo []byte, mime string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE equipment SET photo = ?, photo_mime = ?, updated_at = ? WHERE id = ?`,
		photo, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting equipment photo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.EquipmentNotFound, "equipment %s not found", id)
	}
	return nil
}

// GetEquipmentPhoto returns a record's photo and MIME type. Both are empty
// when the record or its photo does not exist.
func GetEquipmentPhoto(ctx context.Context, db sqlx.QueryerContext, id string) ([]byte, string, error) {
	var row struct {
		Photo []byte `db:"photo"`
		MIME  string `db:"photo_mime"`
	}
	err := sqlx.GetContext(ctx, db, &row,
		`SELECT photo, photo_mime FROM equipment WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting equipment photo: %w", err)
	}
	return row.Photo, row.MIME, nil
}
