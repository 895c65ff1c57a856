package books

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
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

func createTestUser(ctx context.Context, t *testing.T, db *bun.DB, username string, isStaff bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "hash",
		IsStaff:      isStaff,
		IsActive:     true,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func createTestBook(ctx context.Context, t *testing.T, db *bun.DB, name, authorName, price string, ownerID *int) *models.Book {
	t.Helper()

	book := &models.Book{
		Name:       name,
		AuthorName: authorName,
		Price:      decimal.RequireFromString(price),
		OwnerID:    ownerID,
	}
	_, err := db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)

	return book
}

func createTestRelation(ctx context.Context, t *testing.T, db *bun.DB, userID, bookID int, like bool, rate *int) *models.UserBookRelation {
	t.Helper()

	relation := &models.UserBookRelation{
		UserID: userID,
		BookID: bookID,
		Like:   like,
		Rate:   rate,
	}
	_, err := db.NewInsert().Model(relation).Exec(ctx)
	require.NoError(t, err)

	return relation
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func TestRetrieveBookAggregates(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	owner := createTestUser(ctx, t, db, "owner", false)
	reader1 := createTestUser(ctx, t, db, "reader1", false)
	reader2 := createTestUser(ctx, t, db, "reader2", false)
	reader3 := createTestUser(ctx, t, db, "reader3", false)

	book := createTestBook(ctx, t, db, "Test Book", "Author 1", "25.00", &owner.ID)

	createTestRelation(ctx, t, db, reader1.ID, book.ID, true, intPtr(5))
	createTestRelation(ctx, t, db, reader2.ID, book.ID, true, intPtr(4))
	createTestRelation(ctx, t, db, reader3.ID, book.ID, false, intPtr(5))

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)

	assert.Equal(t, 2, got.LikesCount)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 14.0/3.0, *got.Rating, 0.0001)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "owner", got.Owner.Username)
	assert.Len(t, got.Relations, 3)
}

func TestRatingRendersHalfUpToTwoDecimals(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader1 := createTestUser(ctx, t, db, "reader1", false)
	reader2 := createTestUser(ctx, t, db, "reader2", false)
	reader3 := createTestUser(ctx, t, db, "reader3", false)
	book := createTestBook(ctx, t, db, "Well Rated", "Author", "25.00", nil)

	// Mean of 5, 5, 4 is 4.666..., which rounds up, not down.
	createTestRelation(ctx, t, db, reader1.ID, book.ID, false, intPtr(5))
	createTestRelation(ctx, t, db, reader2.ID, book.ID, false, intPtr(5))
	createTestRelation(ctx, t, db, reader3.ID, book.ID, false, intPtr(4))

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)

	resp := newBookResponse(got)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, "4.67", *resp.Rating)
}

func TestRetrieveBookNoRelations(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := createTestBook(ctx, t, db, "Lonely Book", "Nobody", "10.00", nil)

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)

	assert.Equal(t, 0, got.LikesCount)
	assert.Nil(t, got.Rating)
}

func TestRetrieveBookRatingIgnoresNullRates(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader1 := createTestUser(ctx, t, db, "reader1", false)
	reader2 := createTestUser(ctx, t, db, "reader2", false)
	book := createTestBook(ctx, t, db, "Half Rated", "Author", "12.50", nil)

	createTestRelation(ctx, t, db, reader1.ID, book.ID, true, intPtr(3))
	createTestRelation(ctx, t, db, reader2.ID, book.ID, false, nil)

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)

	require.NotNil(t, got.Rating)
	assert.InDelta(t, 3.0, *got.Rating, 0.0001)
}

func TestRetrieveBookNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: intPtr(9999)})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}

func TestListBooksSearchMatchesNameOrAuthor(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book1 := createTestBook(ctx, t, db, "Book 1", "Author 1", "25.00", nil)
	createTestBook(ctx, t, db, "Book 2", "Author 5", "30.00", nil)
	book3 := createTestBook(ctx, t, db, "Author 1 Biography", "Author 2", "20.00", nil)

	got, err := svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("Author 1")})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, book1.ID, got[0].ID)
	assert.Equal(t, book3.ID, got[1].ID)
}

func TestListBooksSearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := createTestBook(ctx, t, db, "The Go Programming Language", "Donovan", "35.99", nil)
	createTestBook(ctx, t, db, "Another Book", "Someone", "10.00", nil)

	got, err := svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("go programming")})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, book.ID, got[0].ID)
}

func TestListBooksPriceFilter(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	cheap := createTestBook(ctx, t, db, "Cheap", "A", "9.99", nil)
	createTestBook(ctx, t, db, "Pricey", "B", "99.99", nil)

	price := decimal.RequireFromString("9.99")
	got, err := svc.ListBooks(ctx, ListBooksOptions{Price: &price})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, cheap.ID, got[0].ID)
}

func TestListBooksOrdering(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	mid := createTestBook(ctx, t, db, "Mid", "Bob", "20.00", nil)
	low := createTestBook(ctx, t, db, "Low", "Carol", "10.00", nil)
	high := createTestBook(ctx, t, db, "High", "Alice", "30.00", nil)

	got, err := svc.ListBooks(ctx, ListBooksOptions{Ordering: strPtr("price")})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{low.ID, mid.ID, high.ID}, []int{got[0].ID, got[1].ID, got[2].ID})

	got, err = svc.ListBooks(ctx, ListBooksOptions{Ordering: strPtr("-price")})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{high.ID, mid.ID, low.ID}, []int{got[0].ID, got[1].ID, got[2].ID})

	got, err = svc.ListBooks(ctx, ListBooksOptions{Ordering: strPtr("author_name")})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Alice", got[0].AuthorName)
	assert.Equal(t, "Carol", got[2].AuthorName)
}

func TestListBooksUnknownOrdering(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.ListBooks(ctx, ListBooksOptions{Ordering: strPtr("name")})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 400, codeErr.HTTPCode)
}

func TestUpdateBookOnlyTouchesGivenColumns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := createTestBook(ctx, t, db, "Original", "Author", "15.00", nil)

	book.Name = "Renamed"
	book.AuthorName = "Should Not Change"
	err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"name"}})
	require.NoError(t, err)

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "Author", got.AuthorName)
}

func TestDeleteBookCascadesRelations(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader := createTestUser(ctx, t, db, "reader", false)
	book := createTestBook(ctx, t, db, "Doomed", "Author", "5.00", nil)
	createTestRelation(ctx, t, db, reader.ID, book.ID, true, nil)

	err := svc.DeleteBook(ctx, book.ID)
	require.NoError(t, err)

	count, err := db.NewSelect().
		Model((*models.UserBookRelation)(nil)).
		Where("book_id = ?", book.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.Error(t, err)
}

func TestDeleteBookNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.DeleteBook(ctx, 9999)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}
