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

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, " TestUser ", "Test User", "hash123", model.RoleEngineer)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, model.RoleEngineer, user.Role)

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", got.Username)
}

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "alice", "Alice", "hash", model.RoleEngineer)
	require.NoError(t, err)

	_, err = CreateUser(ctx, database, "ALICE", "Alice Again", "hash", model.RoleEngineer)
	assert.True(t, apperr.Is(err, apperr.DuplicateUser), "got %v", err)
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "alice", "Alice", "hash", model.RoleAdmin)
	require.NoError(t, err)

	user, err := GetUserByUsername(ctx, database, "Alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	missing, err := GetUserByUsername(ctx, database, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListAndCountUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "b", "Bravo", "hash", model.RoleEngineer)
	CreateUser(ctx, database, "a", "Alpha", "hash", model.RoleEngineer)
	CreateUser(ctx, database, "root", "Root", "hash", model.RoleAdmin)

	engineers, err := ListUsers(ctx, database, model.RoleEngineer)
	require.NoError(t, err)
	require.Len(t, engineers, 2)
	assert.Equal(t, "Alpha", engineers[0].Name)

	all, err := ListUsers(ctx, database, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := CountUsers(ctx, database, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "Alice", "old", model.RoleEngineer)
	require.NoError(t, UpdateUserPassword(ctx, database, user.ID, "new"))

	got, _ := GetUser(ctx, database, user.ID)
	assert.Equal(t, "new", got.PasswordHash)
}
