package books

import (
	"github.com/shopspring/decimal"

	"github.com/bookrack/bookrack/pkg/models"
)

type ListBooksQuery struct {
	Price    *string `query:"price" json:"price,omitempty"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
	Ordering *string `query:"ordering" json:"ordering,omitempty" validate:"omitempty,oneof=price -price author_name -author_name"`
}

type CreateBookPayload struct {
	Name       string          `json:"name" mod:"trim" validate:"required,max=300"`
	Price      decimal.Decimal `json:"price" validate:"required,dpositive"`
	AuthorName *string         `json:"author_name,omitempty" mod:"trim" validate:"omitempty,max=200"`
}

type UpdateBookPayload struct {
	Name       *string          `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=300"`
	Price      *decimal.Decimal `json:"price,omitempty" validate:"omitempty,dpositive"`
	AuthorName *string          `json:"author_name,omitempty" mod:"trim" validate:"omitempty,max=200"`
}

// BookResponse is the wire shape of a book. Price and rating render as
// fixed-point strings with two fractional digits; rating is null for books
// nobody has rated yet.
type BookResponse struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Price      string  `json:"price"`
	AuthorName string  `json:"author_name"`
	LikesCount int     `json:"likes_count"`
	Rating     *string `json:"rating"`
	OwnerName  string  `json:"owner_name"`
}

// BookDetailResponse adds the reader list to the retrieve endpoint.
type BookDetailResponse struct {
	BookResponse
	Readers []ReaderResponse `json:"readers"`
}

type ReaderResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func newBookResponse(b *models.Book) BookResponse {
	var rating *string
	if b.Rating != nil {
		// Round half-up to two places, e.g. a mean of 4.666... renders
		// as "4.67".
		s := decimal.NewFromFloat(*b.Rating).StringFixed(2)
		rating = &s
	}
	return BookResponse{
		ID:         b.ID,
		Name:       b.Name,
		Price:      b.Price.StringFixed(2),
		AuthorName: b.AuthorName,
		LikesCount: b.LikesCount,
		Rating:     rating,
		OwnerName:  b.OwnerName(),
	}
}

func newBookDetailResponse(b *models.Book) BookDetailResponse {
	readers := make([]ReaderResponse, 0, len(b.Relations))
	for _, rel := range b.Relations {
		if rel.User == nil {
			continue
		}
		readers = append(readers, ReaderResponse{
			FirstName: rel.User.FirstName,
			LastName:  rel.User.LastName,
		})
	}
	return BookDetailResponse{
		BookResponse: newBookResponse(b),
		Readers:      readers,
	}
}
