package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/models"
	apperrors "github.com/openshelf/openshelf/pkg/errors"
)

// LendingDTO renders a loan for API consumers. Dates are calendar-date
// strings (YYYY-MM-DD) regardless of the time-of-day stored internally.
type LendingDTO struct {
	ID         string         `json:"id"`
	BookID     string         `json:"bookId"`
	ReaderID   string         `json:"readerId"`
	LendDate   string         `json:"lendDate"`
	DueDate    string         `json:"dueDate"`
	ReturnDate *string        `json:"returnDate"`
	Status     string         `json:"status"`
	Book       *models.Book   `json:"book,omitempty"`
	Reader     *models.Reader `json:"reader,omitempty"`
}

// CreateLendingInput captures the attributes required to open a loan.
type CreateLendingInput struct {
	BookID   string
	ReaderID string
	DueDate  time.Time
	LendDate *time.Time
}

// UpdateLendingInput represents a partial merge onto an existing loan.
// Nil fields are left untouched.
type UpdateLendingInput struct {
	BookID     *string
	ReaderID   *string
	LendDate   *time.Time
	DueDate    *time.Time
	ReturnDate *time.Time
	Status     *string
}

// LendingService manages loan lifecycle records. Overdue and return
// transitions are caller-driven through Update; the service does not
// inspect due dates itself.
type LendingService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLendingService constructs a LendingService.
func NewLendingService(db *gorm.DB) (*LendingService, error) {
	if db == nil {
		return nil, errors.New("lending service: db is required")
	}
	return &LendingService{db: db, now: time.Now}, nil
}

// Create opens a loan. LendDate defaults to now and status to active.
func (s *LendingService) Create(ctx context.Context, input CreateLendingInput) (*LendingDTO, error) {
	ctx = ensureContext(ctx)

	if input.BookID == "" || input.ReaderID == "" {
		return nil, apperrors.NewBadRequest("bookId and readerId are required")
	}
	if input.DueDate.IsZero() {
		return nil, apperrors.NewBadRequest("dueDate is required")
	}

	lendDate := s.now()
	if input.LendDate != nil {
		lendDate = *input.LendDate
	}

	record := models.LendingRecord{
		BookID:   input.BookID,
		ReaderID: input.ReaderID,
		LendDate: lendDate,
		DueDate:  input.DueDate,
		Status:   models.LendingStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("lending service: create record: %w", err)
	}

	dto := mapLending(record)
	return &dto, nil
}

// List returns all loans with book and reader references expanded. Expansion
// is an explicit join step at the query boundary: referenced rows are loaded
// in two follow-up queries and attached by id.
func (s *LendingService) List(ctx context.Context) ([]LendingDTO, error) {
	ctx = ensureContext(ctx)

	var records []models.LendingRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("lending service: list records: %w", err)
	}

	books, readers, err := s.loadReferences(ctx, records)
	if err != nil {
		return nil, err
	}

	items := make([]LendingDTO, 0, len(records))
	for _, record := range records {
		dto := mapLending(record)
		if book, ok := books[record.BookID]; ok {
			dto.Book = book
		}
		if reader, ok := readers[record.ReaderID]; ok {
			dto.Reader = reader
		}
		items = append(items, dto)
	}

	return items, nil
}

// Get returns one loan by id without reference expansion.
func (s *LendingService) Get(ctx context.Context, id string) (*LendingDTO, error) {
	ctx = ensureContext(ctx)

	var record models.LendingRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Lending not found")
		}
		return nil, fmt.Errorf("lending service: load record: %w", err)
	}

	dto := mapLending(record)
	return &dto, nil
}

// Update applies a partial field merge with re-validation.
func (s *LendingService) Update(ctx context.Context, id string, input UpdateLendingInput) (*LendingDTO, error) {
	ctx = ensureContext(ctx)

	var record models.LendingRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Lending not found")
		}
		return nil, fmt.Errorf("lending service: load record: %w", err)
	}

	if input.Status != nil && !models.ValidLendingStatus(*input.Status) {
		return nil, apperrors.NewBadRequest("Status must be active, returned, or overdue")
	}

	if input.BookID != nil {
		record.BookID = *input.BookID
	}
	if input.ReaderID != nil {
		record.ReaderID = *input.ReaderID
	}
	if input.LendDate != nil {
		record.LendDate = *input.LendDate
	}
	if input.DueDate != nil {
		record.DueDate = *input.DueDate
	}
	if input.ReturnDate != nil {
		record.ReturnDate = input.ReturnDate
	}
	if input.Status != nil {
		record.Status = *input.Status
	}

	if record.BookID == "" || record.ReaderID == "" {
		return nil, apperrors.NewBadRequest("bookId and readerId are required")
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, fmt.Errorf("lending service: update record: %w", err)
	}

	dto := mapLending(record)
	return &dto, nil
}

// Delete removes a loan record. Exists for generic CRUD parity only; the
// notification core never deletes loans.
func (s *LendingService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.LendingRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("lending service: delete record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("Lending not found")
	}

	return nil
}

func (s *LendingService) loadReferences(ctx context.Context, records []models.LendingRecord) (map[string]*models.Book, map[string]*models.Reader, error) {
	bookIDs := make([]string, 0, len(records))
	readerIDs := make([]string, 0, len(records))
	seenBooks := make(map[string]struct{}, len(records))
	seenReaders := make(map[string]struct{}, len(records))

	for _, record := range records {
		if _, ok := seenBooks[record.BookID]; !ok {
			seenBooks[record.BookID] = struct{}{}
			bookIDs = append(bookIDs, record.BookID)
		}
		if _, ok := seenReaders[record.ReaderID]; !ok {
			seenReaders[record.ReaderID] = struct{}{}
			readerIDs = append(readerIDs, record.ReaderID)
		}
	}

	books := make(map[string]*models.Book, len(bookIDs))
	if len(bookIDs) > 0 {
		var rows []models.Book
		if err := s.db.WithContext(ctx).Where("id IN ?", bookIDs).Find(&rows).Error; err != nil {
			return nil, nil, fmt.Errorf("lending service: expand books: %w", err)
		}
		for i := range rows {
			books[rows[i].ID] = &rows[i]
		}
	}

	readers := make(map[string]*models.Reader, len(readerIDs))
	if len(readerIDs) > 0 {
		var rows []models.Reader
		if err := s.db.WithContext(ctx).Where("id IN ?", readerIDs).Find(&rows).Error; err != nil {
			return nil, nil, fmt.Errorf("lending service: expand readers: %w", err)
		}
		for i := range rows {
			readers[rows[i].ID] = &rows[i]
		}
	}

	return books, readers, nil
}

func mapLending(record models.LendingRecord) LendingDTO {
	return LendingDTO{
		ID:         record.ID,
		BookID:     record.BookID,
		ReaderID:   record.ReaderID,
		LendDate:   formatDate(record.LendDate),
		DueDate:    formatDate(record.DueDate),
		ReturnDate: formatDatePtr(record.ReturnDate),
		Status:     record.Status,
	}
}
