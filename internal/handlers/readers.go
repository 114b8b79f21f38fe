package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/services"
	"github.com/openshelf/openshelf/pkg/response"
)

type createReaderRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type updateReaderRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// ReaderHandler exposes member CRUD endpoints.
type ReaderHandler struct {
	service *services.ReaderService
}

// NewReaderHandler constructs a reader handler.
func NewReaderHandler(db *gorm.DB) (*ReaderHandler, error) {
	service, err := services.NewReaderService(db)
	if err != nil {
		return nil, err
	}
	return &ReaderHandler{service: service}, nil
}

// Create registers a library member.
func (h *ReaderHandler) Create(c *gin.Context) {
	var payload createReaderRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	reader, err := h.service.Create(c.Request.Context(), services.CreateReaderInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Address: payload.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, reader)
}

// List returns every registered member.
func (h *ReaderHandler) List(c *gin.Context) {
	readers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, readers)
}

// Get returns one member by id.
func (h *ReaderHandler) Get(c *gin.Context) {
	reader, err := h.service.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, reader)
}

// Update merges the supplied fields onto an existing member.
func (h *ReaderHandler) Update(c *gin.Context) {
	var payload updateReaderRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	reader, err := h.service.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), services.UpdateReaderInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Address: payload.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, reader)
}

// Delete removes a member.
func (h *ReaderHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Reader deleted successfully")
}
