package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/bookrack/bookrack/pkg/auth"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
// Reads are open (annotations included for anonymous callers); mutations
// require authentication, with ownership checked in the handlers.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		bookService: NewService(db),
	}

	g.GET("", h.list, authMiddleware.AuthenticateOptional)
	g.GET("/:id", h.retrieve, authMiddleware.AuthenticateOptional)
	g.POST("", h.create, authMiddleware.Authenticate)
	g.PUT("/:id", h.update, authMiddleware.Authenticate)
	g.PATCH("/:id", h.update, authMiddleware.Authenticate)
	g.DELETE("/:id", h.del, authMiddleware.Authenticate)
}
