package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/bookrack/bookrack/pkg/errcodes"
	"github.com/bookrack/bookrack/pkg/models"
)

type RetrieveBookOptions struct {
	ID *int
}

type ListBooksOptions struct {
	Price    *decimal.Decimal
	Search   *string
	Ordering *string
}

type UpdateBookOptions struct {
	Columns []string
}

// orderings maps the public ordering parameter to its SQL expression. The
// leading dash follows the convention of "descending by this column".
var orderings = map[string]string{
	"price":        "b.price ASC",
	"-price":       "b.price DESC",
	"author_name":  "b.author_name ASC",
	"-author_name": "b.author_name DESC",
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// annotate attaches the derived likes_count and rating columns to a book
// select. Both come from a single grouped join over user_book_relations, so
// listing never issues per-book queries.
func annotate(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("b.*").
		ColumnExpr(`count(CASE WHEN r."like" THEN 1 END) AS likes_count`).
		ColumnExpr("avg(r.rate) AS rating").
		Join("LEFT JOIN user_book_relations AS r ON r.book_id = b.id").
		GroupExpr("b.id")
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := annotate(svc.db.NewSelect().Model(book)).
		Relation("Owner").
		Relation("Relations", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("r.id ASC")
		}).
		Relation("Relations.User")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := annotate(svc.db.NewSelect().Model(&books)).
		Relation("Owner")

	if opts.Price != nil {
		q = q.Where("b.price = ?", *opts.Price)
	}
	if opts.Search != nil && *opts.Search != "" {
		// Substring match over either field; SQLite's LIKE is
		// case-insensitive for ASCII.
		pattern := "%" + *opts.Search + "%"
		q = q.Where("(b.name LIKE ? OR b.author_name LIKE ?)", pattern, pattern)
	}
	if opts.Ordering != nil && *opts.Ordering != "" {
		expr, ok := orderings[*opts.Ordering]
		if !ok {
			return nil, errcodes.ValidationError("Unknown ordering " + *opts.Ordering)
		}
		q = q.OrderExpr(expr)
	}
	// Stable tiebreaker so paging and equal sort keys stay deterministic.
	q = q.OrderExpr("b.id ASC")

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	// Update updated_at.
	now := time.Now()
	book.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Relation rows reference the book, so they go first.
		_, err := tx.
			NewDelete().
			Model((*models.UserBookRelation)(nil)).
			Where("book_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		res, err := tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if affected == 0 {
			return errcodes.NotFound("Book")
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}
