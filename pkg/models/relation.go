package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RateMin and RateMax bound the rating a reader can give a book.
const (
	RateMin = 1
	RateMax = 5
)

// UserBookRelation captures one reader's state for one book. There is at most
// one row per (user, book) pair, enforced by a unique index.
type UserBookRelation struct {
	bun.BaseModel `bun:"table:user_book_relations,alias:r"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      int       `bun:",nullzero" json:"user_id"`
	BookID      int       `bun:",nullzero" json:"book_id"`
	Like        bool      `json:"like"`
	InBookmarks bool      `json:"in_bookmarks"`
	Rate        *int      `json:"rate"`

	// Relations
	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"-"`
}
