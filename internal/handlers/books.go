package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/services"
	"github.com/openshelf/openshelf/pkg/response"
)

type createBookRequest struct {
	ISBN      string `json:"isbn" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Available *bool  `json:"available"`
}

type updateBookRequest struct {
	ISBN   *string `json:"isbn"`
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Status *string `json:"status" validate:"omitempty,oneof=available unavailable"`
}

// BookHandler exposes catalogue CRUD endpoints.
type BookHandler struct {
	service *services.BookService
}

// NewBookHandler constructs a book handler.
func NewBookHandler(db *gorm.DB) (*BookHandler, error) {
	service, err := services.NewBookService(db)
	if err != nil {
		return nil, err
	}
	return &BookHandler{service: service}, nil
}

// Create adds a book to the catalogue. Books default to available unless
// the payload says otherwise.
func (h *BookHandler) Create(c *gin.Context) {
	var payload createBookRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	available := true
	if payload.Available != nil {
		available = *payload.Available
	}

	book, err := h.service.Create(c.Request.Context(), services.CreateBookInput{
		ISBN:      payload.ISBN,
		Title:     payload.Title,
		Author:    payload.Author,
		Available: available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book)
}

// List returns the full catalogue.
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, books)
}

// Get returns one book by id.
func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.service.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// Update merges the supplied fields onto an existing book.
func (h *BookHandler) Update(c *gin.Context) {
	var payload updateBookRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	book, err := h.service.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), services.UpdateBookInput{
		ISBN:   payload.ISBN,
		Title:  payload.Title,
		Author: payload.Author,
		Status: payload.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// Delete removes a book from the catalogue.
func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Book deleted successfully")
}
