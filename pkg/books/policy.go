package books

import (
	"github.com/bookrack/bookrack/pkg/models"
)

// CanModify reports whether user may update or delete book. Reads are open to
// everyone, so only mutation goes through this predicate: the actor must be
// authenticated and either own the book or be staff.
func CanModify(user *models.User, book *models.Book) bool {
	if user == nil {
		return false
	}
	if user.IsStaff {
		return true
	}
	return book.OwnerID != nil && *book.OwnerID == user.ID
}
