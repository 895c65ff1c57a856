package relations

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookrack/bookrack/pkg/auth"
	"github.com/bookrack/bookrack/pkg/errcodes"
)

type handler struct {
	relationService *Service
}

func (h *handler) upsert(c echo.Context) error {
	ctx := c.Request().Context()

	user := auth.UserFromEchoContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// Bind params.
	params := UpsertRelationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	relation, err := h.relationService.UpsertRelation(ctx, user.ID, bookID, UpsertRelationOptions{
		Like:        params.Like,
		InBookmarks: params.InBookmarks,
		Rate:        params.Rate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, newRelationResponse(relation)))
}
