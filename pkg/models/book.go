package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID         int             `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Name       string          `bun:",nullzero" json:"name"`
	Price      decimal.Decimal `json:"price"`
	AuthorName string          `json:"author_name"`
	OwnerID    *int            `json:"owner_id,omitempty"`

	// Derived at query time from user_book_relations, never written.
	LikesCount int      `bun:"likes_count,scanonly" json:"likes_count"`
	Rating     *float64 `bun:"rating,scanonly" json:"rating"`

	// Relations
	Owner     *User               `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	Relations []*UserBookRelation `bun:"rel:has-many,join:id=book_id" json:"relations,omitempty"`
}

// OwnerName returns the owner's username, or the empty string for books
// without an owner.
func (b *Book) OwnerName() string {
	if b.Owner == nil {
		return ""
	}
	return b.Owner.Username
}
