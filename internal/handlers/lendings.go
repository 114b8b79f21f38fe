package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/services"
	appErrors "github.com/openshelf/openshelf/pkg/errors"
	"github.com/openshelf/openshelf/pkg/response"
)

type createLendingRequest struct {
	BookID   string `json:"bookId" validate:"required,uuid4"`
	ReaderID string `json:"readerId" validate:"required,uuid4"`
	LendDate string `json:"lendDate"`
	DueDate  string `json:"dueDate" validate:"required"`
}

type updateLendingRequest struct {
	BookID     *string `json:"bookId" validate:"omitempty,uuid4"`
	ReaderID   *string `json:"readerId" validate:"omitempty,uuid4"`
	LendDate   *string `json:"lendDate"`
	DueDate    *string `json:"dueDate"`
	ReturnDate *string `json:"returnDate"`
	Status     *string `json:"status"`
}

// LendingHandler exposes loan CRUD endpoints.
type LendingHandler struct {
	service *services.LendingService
}

// NewLendingHandler constructs a lending handler.
func NewLendingHandler(db *gorm.DB) (*LendingHandler, error) {
	service, err := services.NewLendingService(db)
	if err != nil {
		return nil, err
	}
	return &LendingHandler{service: service}, nil
}

// Create opens a loan record.
func (h *LendingHandler) Create(c *gin.Context) {
	var payload createLendingRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	dueDate, err := parseDate(payload.DueDate)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("dueDate must be a YYYY-MM-DD date"))
		return
	}

	input := services.CreateLendingInput{
		BookID:   payload.BookID,
		ReaderID: payload.ReaderID,
		DueDate:  dueDate,
	}
	if payload.LendDate != "" {
		lendDate, err := parseDate(payload.LendDate)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("lendDate must be a YYYY-MM-DD date"))
			return
		}
		input.LendDate = &lendDate
	}

	lending, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, lending)
}

// List returns every loan with its book and reader expanded.
func (h *LendingHandler) List(c *gin.Context) {
	lendings, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lendings)
}

// Get returns one loan by id.
func (h *LendingHandler) Get(c *gin.Context) {
	lending, err := h.service.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lending)
}

// Update merges the supplied fields onto an existing loan.
func (h *LendingHandler) Update(c *gin.Context) {
	var payload updateLendingRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.UpdateLendingInput{
		BookID:   payload.BookID,
		ReaderID: payload.ReaderID,
		Status:   payload.Status,
	}

	var err error
	if input.LendDate, err = parseDatePtr(payload.LendDate, "lendDate"); err != nil {
		response.Error(c, err)
		return
	}
	if input.DueDate, err = parseDatePtr(payload.DueDate, "dueDate"); err != nil {
		response.Error(c, err)
		return
	}
	if input.ReturnDate, err = parseDatePtr(payload.ReturnDate, "returnDate"); err != nil {
		response.Error(c, err)
		return
	}

	lending, err := h.service.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lending)
}

// Delete removes a loan record.
func (h *LendingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Lending record deleted successfully")
}

func parseDatePtr(value *string, field string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := parseDate(*value)
	if err != nil {
		return nil, appErrors.NewBadRequest(field + " must be a YYYY-MM-DD date")
	}
	return &parsed, nil
}
