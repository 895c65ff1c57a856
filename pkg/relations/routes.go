package relations

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/bookrack/bookrack/pkg/auth"
)

// RegisterRoutesWithGroup registers relation routes on a pre-configured group.
// The relation addressed is always the one between the authenticated user and
// the book in the path, so there is no way to touch another user's relation.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		relationService: NewService(db),
	}

	g.PUT("/:bookId", h.upsert, authMiddleware.Authenticate)
	g.PATCH("/:bookId", h.upsert, authMiddleware.Authenticate)
}
