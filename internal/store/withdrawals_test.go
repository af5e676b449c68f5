package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sitestock/internal/db"
	"github.com/erazemk/sitestock/internal/model"
)

func newWithdrawal(date, engineer string, items ...model.LineItem) *model.Withdrawal {
	return &model.Withdrawal{
		WithdrawalDate: date,
		EngineerName:   engineer,
		Description:    "site work",
		Items:          items,
	}
}

func TestInsertAndGetWithdrawal(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	w := newWithdrawal("2024-01-10", "Alice",
		model.LineItem{EquipmentID: "e1", EquipmentName: "Cable", QuantityWithdrawn: 10, Unit: "meters"},
		model.LineItem{EquipmentID: "e2", EquipmentName: "Drill", QuantityWithdrawn: 1, Unit: "pieces"},
	)
	id, err := InsertWithdrawal(ctx, database, w)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := GetWithdrawal(ctx, database, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-10", got.WithdrawalDate)
	assert.Equal(t, "Alice", got.EngineerName)
	assert.Equal(t, w.Items, got.Items)

	missing, err := GetWithdrawal(ctx, database, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListWithdrawalsDateWindow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	line := model.LineItem{EquipmentID: "e1", EquipmentName: "Cable", QuantityWithdrawn: 1, Unit: "meters"}
	for _, date := range []string{"2024-01-07", "2024-01-08", "2024-01-14", "2024-01-15"} {
		_, err := InsertWithdrawal(ctx, database, newWithdrawal(date, "Alice", line))
		require.NoError(t, err)
	}

	all, err := ListWithdrawals(ctx, database, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "2024-01-15", all[0].WithdrawalDate, "newest first")

	window, err := model.NewDateRange("2024-01-08", "2024-01-14")
	require.NoError(t, err)
	inside, err := ListWithdrawals(ctx, database, window)
	require.NoError(t, err)
	require.Len(t, inside, 2)
	for _, w := range inside {
		assert.True(t, window.Contains(w.WithdrawalDate))
		assert.Len(t, w.Items, 1)
	}
}

func TestListWithdrawalsEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	list, err := ListWithdrawals(context.Background(), database, nil)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
