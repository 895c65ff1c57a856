package relations

import (
	"github.com/bookrack/bookrack/pkg/models"
)

type UpsertRelationPayload struct {
	Like        *bool `json:"like,omitempty"`
	InBookmarks *bool `json:"in_bookmarks,omitempty"`
	Rate        *int  `json:"rate,omitempty" validate:"omitempty,min=1,max=5"`
}

type RelationResponse struct {
	ID          int  `json:"id"`
	UserID      int  `json:"user_id"`
	BookID      int  `json:"book_id"`
	Like        bool `json:"like"`
	InBookmarks bool `json:"in_bookmarks"`
	Rate        *int `json:"rate"`
}

func newRelationResponse(r *models.UserBookRelation) RelationResponse {
	return RelationResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		BookID:      r.BookID,
		Like:        r.Like,
		InBookmarks: r.InBookmarks,
		Rate:        r.Rate,
	}
}
