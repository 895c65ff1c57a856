package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/bookrack/bookrack/pkg/auth"
	"github.com/bookrack/bookrack/pkg/errcodes"
	"github.com/bookrack/bookrack/pkg/models"
)

type handler struct {
	bookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListBooksOptions{
		Search:   params.Search,
		Ordering: params.Ordering,
	}
	if params.Price != nil {
		price, err := decimal.NewFromString(*params.Price)
		if err != nil {
			return errcodes.ValidationTypeError(`"price" should be a decimal number`)
		}
		opts.Price = &price
	}

	books, err := h.bookService.ListBooks(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := make([]BookResponse, 0, len(books))
	for _, book := range books {
		resp = append(resp, newBookResponse(book))
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, newBookDetailResponse(book)))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	user := auth.UserFromEchoContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	// Bind params.
	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// The owner is always the requesting actor, never client-supplied.
	book := &models.Book{
		Name:    params.Name,
		Price:   params.Price,
		OwnerID: &user.ID,
	}
	if params.AuthorName != nil {
		book.AuthorName = *params.AuthorName
	}

	if err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}
	book.Owner = user

	return errors.WithStack(c.JSON(http.StatusCreated, newBookResponse(book)))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// Bind params.
	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the book.
	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if !CanModify(auth.UserFromEchoContext(c), book) {
		return errcodes.Forbidden("Modifying a book you don't own")
	}

	// Keep track of what's been changed.
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != book.Name {
		book.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Price != nil && !params.Price.Equal(book.Price) {
		book.Price = *params.Price
		opts.Columns = append(opts.Columns, "price")
	}
	if params.AuthorName != nil && *params.AuthorName != book.AuthorName {
		book.AuthorName = *params.AuthorName
		opts.Columns = append(opts.Columns, "author_name")
	}

	// Update the model.
	err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload the model so derived fields reflect the stored state.
	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, newBookResponse(book)))
}

func (h *handler) del(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if !CanModify(auth.UserFromEchoContext(c), book) {
		return errcodes.Forbidden("Deleting a book you don't own")
	}

	if err := h.bookService.DeleteBook(ctx, book.ID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
