package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bookrack/bookrack/pkg/errcodes"
	"github.com/bookrack/bookrack/pkg/migrations"
	"github.com/bookrack/bookrack/pkg/models"
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

func createTestUser(ctx context.Context, t *testing.T, db *bun.DB, username, password string, isStaff, isActive bool) *models.User {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		IsStaff:      isStaff,
		IsActive:     isActive,
	}
	_, err = db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func newEchoContext(req *http.Request) echo.Context {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestMiddlewareAuthenticate(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "testuser", "password123", false, true)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	c := newEchoContext(req)

	nextCalled := false
	err = middleware.Authenticate(func(c echo.Context) error {
		nextCalled = true
		got := UserFromEchoContext(c)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, nextCalled)
}

func TestMiddlewareAuthenticateMissingCookie(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	c := newEchoContext(req)

	err := middleware.Authenticate(func(_ echo.Context) error {
		t.Fatal("next should not be called")
		return nil
	})(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
}

func TestMiddlewareAuthenticateBadToken(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
	c := newEchoContext(req)

	err := middleware.Authenticate(func(_ echo.Context) error {
		return nil
	})(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
}

func TestMiddlewareAuthenticateInactiveUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "inactive", "password123", false, false)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	c := newEchoContext(req)

	err = middleware.Authenticate(func(_ echo.Context) error {
		return nil
	})(c)
	require.Error(t, err)
}

func TestMiddlewareAuthenticateOptionalAnonymous(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	c := newEchoContext(req)

	nextCalled := false
	err := middleware.AuthenticateOptional(func(c echo.Context) error {
		nextCalled = true
		assert.Nil(t, UserFromEchoContext(c))
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, nextCalled)
}

func TestMiddlewareAuthenticateOptionalWithUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "testuser", "password123", false, true)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	c := newEchoContext(req)

	err = middleware.AuthenticateOptional(func(c echo.Context) error {
		got := UserFromEchoContext(c)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		return nil
	})(c)
	require.NoError(t, err)
}

func TestMiddlewareRequireStaff(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	authService := NewService(db, "test-secret")
	middleware := NewMiddleware(authService)

	// Staff user passes.
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	c := newEchoContext(req)
	c.Set(ContextKeyUser, &models.User{ID: 1, IsStaff: true})

	err := middleware.RequireStaff(func(_ echo.Context) error {
		return nil
	})(c)
	require.NoError(t, err)

	// Non-staff user gets 403.
	c = newEchoContext(req)
	c.Set(ContextKeyUser, &models.User{ID: 2})

	err = middleware.RequireStaff(func(_ echo.Context) error {
		return nil
	})(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusForbidden, codeErr.HTTPCode)
}
