package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/models"
	apperrors "github.com/openshelf/openshelf/pkg/errors"
)

// CreateBookInput captures the attributes required to catalogue a book.
// Available coerces to the status enum the way the public API expects.
type CreateBookInput struct {
	ISBN      string
	Title     string
	Author    string
	Available bool
}

// UpdateBookInput represents mutable book fields. Nil fields are untouched.
type UpdateBookInput struct {
	ISBN   *string
	Title  *string
	Author *string
	Status *string
}

// BookService manages the book catalogue.
type BookService struct {
	db *gorm.DB
}

// NewBookService constructs a BookService.
func NewBookService(db *gorm.DB) (*BookService, error) {
	if db == nil {
		return nil, errors.New("book service: db is required")
	}
	return &BookService{db: db}, nil
}

// Create catalogues a new book.
func (s *BookService) Create(ctx context.Context, input CreateBookInput) (*models.Book, error) {
	ctx = ensureContext(ctx)

	status := models.BookStatusUnavailable
	if input.Available {
		status = models.BookStatusAvailable
	}

	book := models.Book{
		ISBN:   strings.TrimSpace(input.ISBN),
		Title:  strings.TrimSpace(input.Title),
		Author: strings.TrimSpace(input.Author),
		Status: status,
	}

	if err := s.db.WithContext(ctx).Create(&book).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("ISBN already exists")
		}
		return nil, fmt.Errorf("book service: create book: %w", err)
	}

	return &book, nil
}

// List returns the whole catalogue.
func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	ctx = ensureContext(ctx)

	var books []models.Book
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("book service: list books: %w", err)
	}
	return books, nil
}

// Get returns one book by id.
func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	ctx = ensureContext(ctx)

	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Book not found")
		}
		return nil, fmt.Errorf("book service: load book: %w", err)
	}
	return &book, nil
}

// Update applies a partial merge onto an existing book.
func (s *BookService) Update(ctx context.Context, id string, input UpdateBookInput) (*models.Book, error) {
	ctx = ensureContext(ctx)

	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if status != models.BookStatusAvailable && status != models.BookStatusUnavailable {
			return nil, apperrors.NewBadRequest("Status must be available or unavailable")
		}
		book.Status = status
	}
	if input.ISBN != nil {
		book.ISBN = strings.TrimSpace(*input.ISBN)
	}
	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}

	if err := s.db.WithContext(ctx).Save(book).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("ISBN already exists")
		}
		return nil, fmt.Errorf("book service: update book: %w", err)
	}

	return book, nil
}

// Delete removes a book from the catalogue.
func (s *BookService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("book service: delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("Book not found")
	}

	return nil
}
