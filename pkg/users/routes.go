package users

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/bookrack/bookrack/pkg/auth"
)

// RegisterRoutes registers all user routes. Account management is staff-only.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	users := e.Group("/users")
	users.Use(authMiddleware.Authenticate, authMiddleware.RequireStaff)

	users.GET("", h.list)
	users.GET("/:id", h.retrieve)
	users.POST("", h.create)
	users.PATCH("/:id", h.update)
	users.DELETE("/:id", h.deactivate)

	return userService
}
