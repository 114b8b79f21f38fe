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

// CreateReaderInput captures the attributes required to register a reader.
type CreateReaderInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// UpdateReaderInput represents mutable reader fields. Nil fields are untouched.
type UpdateReaderInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// ReaderService manages library members.
type ReaderService struct {
	db *gorm.DB
}

// NewReaderService constructs a ReaderService.
func NewReaderService(db *gorm.DB) (*ReaderService, error) {
	if db == nil {
		return nil, errors.New("reader service: db is required")
	}
	return &ReaderService{db: db}, nil
}

// Create registers a new reader.
func (s *ReaderService) Create(ctx context.Context, input CreateReaderInput) (*models.Reader, error) {
	ctx = ensureContext(ctx)

	reader := models.Reader{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}

	if err := s.db.WithContext(ctx).Create(&reader).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("Email already registered")
		}
		return nil, fmt.Errorf("reader service: create reader: %w", err)
	}

	return &reader, nil
}

// List returns all registered readers.
func (s *ReaderService) List(ctx context.Context) ([]models.Reader, error) {
	ctx = ensureContext(ctx)

	var readers []models.Reader
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&readers).Error; err != nil {
		return nil, fmt.Errorf("reader service: list readers: %w", err)
	}
	return readers, nil
}

// Get returns one reader by id.
func (s *ReaderService) Get(ctx context.Context, id string) (*models.Reader, error) {
	ctx = ensureContext(ctx)

	var reader models.Reader
	if err := s.db.WithContext(ctx).First(&reader, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Reader not found")
		}
		return nil, fmt.Errorf("reader service: load reader: %w", err)
	}
	return &reader, nil
}

// Update applies a partial merge onto an existing reader.
func (s *ReaderService) Update(ctx context.Context, id string, input UpdateReaderInput) (*models.Reader, error) {
	ctx = ensureContext(ctx)

	reader, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		reader.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		reader.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		reader.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		reader.Address = strings.TrimSpace(*input.Address)
	}

	if err := s.db.WithContext(ctx).Save(reader).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("Email already registered")
		}
		return nil, fmt.Errorf("reader service: update reader: %w", err)
	}

	return reader, nil
}

// Delete removes a reader.
func (s *ReaderService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Reader{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("reader service: delete reader: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("Reader not found")
	}

	return nil
}
