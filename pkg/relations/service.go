package relations

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/bookrack/bookrack/pkg/errcodes"
	"github.com/bookrack/bookrack/pkg/models"
)

type UpsertRelationOptions struct {
	Like        *bool
	InBookmarks *bool
	Rate        *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// UpsertRelation patches the relation between user and book, creating the row
// lazily on first touch. The create and the patch run in one transaction so
// two concurrent first touches can't race past the unique (user_id, book_id)
// index.
func (svc *Service) UpsertRelation(ctx context.Context, userID, bookID int, opts UpsertRelationOptions) (*models.UserBookRelation, error) {
	if opts.Rate != nil && (*opts.Rate < models.RateMin || *opts.Rate > models.RateMax) {
		return nil, errcodes.ValidationError(`"rate" must be between 1 and 5`)
	}

	relation := &models.UserBookRelation{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.
			NewSelect().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Book")
		}

		now := time.Now()
		seed := &models.UserBookRelation{
			UserID:    userID,
			BookID:    bookID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = tx.
			NewInsert().
			Model(seed).
			On("CONFLICT (user_id, book_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		err = tx.
			NewSelect().
			Model(relation).
			Where("r.user_id = ?", userID).
			Where("r.book_id = ?", bookID).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Only the fields present in the patch change; everything else
		// keeps its stored value.
		columns := []string{}
		if opts.Like != nil {
			relation.Like = *opts.Like
			columns = append(columns, "like")
		}
		if opts.InBookmarks != nil {
			relation.InBookmarks = *opts.InBookmarks
			columns = append(columns, "in_bookmarks")
		}
		if opts.Rate != nil {
			relation.Rate = opts.Rate
			columns = append(columns, "rate")
		}
		if len(columns) == 0 {
			return nil
		}

		relation.UpdatedAt = now
		columns = append(columns, "updated_at")

		_, err = tx.
			NewUpdate().
			Model(relation).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return relation, nil
}

// RetrieveRelation fetches the relation between user and book, if one exists.
func (svc *Service) RetrieveRelation(ctx context.Context, userID, bookID int) (*models.UserBookRelation, error) {
	relation := &models.UserBookRelation{}
	err := svc.db.
		NewSelect().
		Model(relation).
		Where("r.user_id = ?", userID).
		Where("r.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Relation")
		}
		return nil, errors.WithStack(err)
	}
	return relation, nil
}
