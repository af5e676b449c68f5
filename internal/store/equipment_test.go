package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/db"
	"github.com/erazemk/sitestock/internal/model"
)

func drill(qty int) EquipmentInput {
	return EquipmentInput{
		Name:      "Drill",
		Category:  "power-tools",
		Quantity:  qty,
		Unit:      "pieces",
		Location:  "Shelf A",
		Condition: "good",
	}
}

func TestUpsertEquipmentReplacesQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, updated, err := UpsertEquipment(ctx, database, drill(10))
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 10, first.Quantity)

	second, updated, err := UpsertEquipment(ctx, database, drill(7))
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, first.ID, second.ID)

	all, err := ListEquipment(ctx, database)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Drill", all[0].Name)
	assert.Equal(t, 7, all[0].Quantity)
}

func TestUpsertEquipmentKeepsSerialNumber(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	in := drill(1)
	in.SerialNumber = "SN-42"
	_, _, err := UpsertEquipment(ctx, database, in)
	require.NoError(t, err)

	eq, _, err := UpsertEquipment(ctx, database, drill(2))
	require.NoError(t, err)
	assert.Equal(t, "SN-42", eq.SerialNumber)
}

func TestUpsertEquipmentNameIsCaseSensitive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, _, err := UpsertEquipment(ctx, database, drill(1))
	require.NoError(t, err)

	lower := drill(1)
	lower.Name = "drill"
	_, updated, err := UpsertEquipment(ctx, database, lower)
	require.NoError(t, err)
	assert.False(t, updated)

	all, _ := ListEquipment(ctx, database)
	assert.Len(t, all, 2)
}

func TestListEquipmentNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		in := drill(1)
		in.Name = name
		_, _, err := UpsertEquipment(ctx, database, in)
		require.NoError(t, err)
	}

	all, err := ListEquipment(ctx, database)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestSiteIsolation(t *testing.T) {
	partitions := db.NewTestPartitions(t)
	ctx := context.Background()

	enam, err := partitions.Get(ctx, "inventory_enam")
	require.NoError(t, err)
	ismp, err := partitions.Get(ctx, "inventory_ismp")
	require.NoError(t, err)

	_, _, err = UpsertEquipment(ctx, enam, drill(5))
	require.NoError(t, err)

	got, err := ListEquipment(ctx, ismp)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, updated, err := UpsertEquipment(ctx, ismp, drill(3))
	require.NoError(t, err)
	assert.False(t, updated, "same name in another partition is a new record")

	enamList, _ := ListEquipment(ctx, enam)
	require.Len(t, enamList, 1)
	assert.Equal(t, 5, enamList[0].Quantity)
}

func TestFindEquipmentNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	eq, err := GetEquipment(context.Background(), database, "missing")
	require.NoError(t, err)
	assert.Nil(t, eq)

	_, err = FindEquipment(context.Background(), database, "missing")
	assert.True(t, apperr.Is(err, apperr.EquipmentNotFound))
}

func TestDecrementQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	eq, _, err := UpsertEquipment(ctx, database, drill(5))
	require.NoError(t, err)

	applied, err := DecrementQuantity(ctx, database, eq.ID, 3)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = DecrementQuantity(ctx, database, eq.ID, 3)
	require.NoError(t, err)
	assert.False(t, applied, "would go negative")

	applied, err = DecrementQuantity(ctx, database, eq.ID, 2)
	require.NoError(t, err)
	assert.True(t, applied)

	got, _ := GetEquipment(ctx, database, eq.ID)
	assert.Equal(t, 0, got.Quantity)
}

func TestUpdateEquipmentRename(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	eq, _, _ := UpsertEquipment(ctx, database, drill(3))
	other := drill(1)
	other.Name = "Saw"
	_, _, err := UpsertEquipment(ctx, database, other)
	require.NoError(t, err)

	renamed := drill(3)
	renamed.Name = "Power Drill"
	got, err := UpdateEquipment(ctx, database, eq.ID, renamed)
	require.NoError(t, err)
	assert.Equal(t, "Power Drill", got.Name)

	clash := drill(3)
	clash.Name = "Saw"
	_, err = UpdateEquipment(ctx, database, eq.ID, clash)
	assert.True(t, apperr.Is(err, apperr.InvalidRequest))

	_, err = UpdateEquipment(ctx, database, "missing", renamed)
	assert.True(t, apperr.Is(err, apperr.EquipmentNotFound))
}

func TestDeleteEquipment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	eq, _, _ := UpsertEquipment(ctx, database, drill(3))
	require.NoError(t, DeleteEquipment(ctx, database, eq.ID))

	all, _ := ListEquipment(ctx, database)
	assert.Empty(t, all)

	err := DeleteEquipment(ctx, database, eq.ID)
	assert.True(t, apperr.Is(err, apperr.EquipmentNotFound))
}

func TestListLowStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for name, qty := range map[string]int{"A": 0, "B": 4, "C": 5, "D": 20} {
		in := drill(qty)
		in.Name = name
		_, _, err := UpsertEquipment(ctx, database, in)
		require.NoError(t, err)
	}

	low, err := ListLowStock(ctx, database, model.LowStockThreshold)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "A", low[0].Name)
	assert.Equal(t, "B", low[1].Name)
}

func TestEquipmentPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	eq, _, _ := UpsertEquipment(ctx, database, drill(1))
	require.NoError(t, SetEquipmentPhoto(ctx, database, eq.ID, []byte("jpeg bytes"), "image/jpeg"))

	data, mime, err := GetEquipmentPhoto(ctx, database, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Equal(t, "image/jpeg", mime)

	got, _ := GetEquipment(ctx, database, eq.ID)
	assert.Equal(t, "image/jpeg", got.PhotoMIME)

	err = SetEquipmentPhoto(ctx, database, "missing", []byte("x"), "image/jpeg")
	assert.True(t, apperr.Is(err, apperr.EquipmentNotFound))

	data, mime, err = GetEquipmentPhoto(ctx, database, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, mime)
}
