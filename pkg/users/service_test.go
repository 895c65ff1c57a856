package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bookrack/bookrack/pkg/auth"
	"github.com/bookrack/bookrack/pkg/migrations"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// A single in-memory connection keeps every query on the same database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{
		Username:  "alice",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	// The password is stored hashed, never verbatim.
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, auth.CheckPassword("password123", user.PasswordHash))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserOptions{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	// Duplicate check is case-insensitive.
	_, err = svc.Create(ctx, CreateUserOptions{Username: "ALICE", Password: "password123"})
	require.Error(t, err)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{Username: "bob", Password: "password123"})
	require.NoError(t, err)

	user.FirstName = "Bob"
	err = svc.Update(ctx, user, UpdateOptions{Columns: []string{"first_name"}})
	require.NoError(t, err)

	got, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.FirstName)
}

func TestDeactivateUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{Username: "carol", Password: "password123"})
	require.NoError(t, err)

	err = svc.Deactivate(ctx, user.ID)
	require.NoError(t, err)

	got, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3"} {
		_, err := svc.Create(ctx, CreateUserOptions{Username: name, Password: "password123"})
		require.NoError(t, err)
	}

	users, total, err := svc.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 2)
}
