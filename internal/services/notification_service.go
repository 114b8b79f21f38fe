package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/models"
	apperrors "github.com/openshelf/openshelf/pkg/errors"
	"github.com/openshelf/openshelf/pkg/logger"
	"github.com/openshelf/openshelf/pkg/mail"
	"github.com/openshelf/openshelf/pkg/metrics"
)

// OverdueBookRef identifies one overdue title in a notification request.
// ReaderID is optional; the first non-empty value in a request seeds the
// ledger row's reader reference.
type OverdueBookRef struct {
	ReaderID  string `json:"readerId"`
	BookTitle string `json:"bookTitle"`
}

// SendOverdueInput is the payload for a single overdue notification.
type SendOverdueInput struct {
	To           string           `json:"to"`
	ReaderName   string           `json:"readerName"`
	Subject      string           `json:"subject"`
	Message      string           `json:"message"`
	OverdueBooks []OverdueBookRef `json:"overdueBooks"`
}

// SendOutcome mirrors the gateway result for one dispatch attempt. Delivery
// failure is data, not a transport error.
type SendOutcome struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BulkSummary partitions a bulk request's per-item outcomes.
type BulkSummary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// BulkOutcome aggregates a bulk send: per-item results in input order plus a summary.
type BulkOutcome struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Results []SendOutcome `json:"results"`
	Summary BulkSummary   `json:"summary"`
}

// NotificationDTO is the API representation of one ledger row.
type NotificationDTO struct {
	ID           string    `json:"id"`
	ReaderID     string    `json:"readerId"`
	ReaderName   string    `json:"readerName"`
	ReaderEmail  string    `json:"readerEmail"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	BookTitles   []string  `json:"bookTitles"`
	Status       string    `json:"status"`
	SentAt       time.Time `json:"sentAt"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// StatsData aggregates ledger counts for the dashboard.
type StatsData struct {
	TotalSent           int64             `json:"totalSent"`
	TotalFailed         int64             `json:"totalFailed"`
	SentToday           int64             `json:"sentToday"`
	RecentNotifications []NotificationDTO `json:"recentNotifications"`
}

// HistoryData is one page of the ledger, newest first.
type HistoryData struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int64             `json:"total"`
	Page          int               `json:"page"`
	TotalPages    int               `json:"totalPages"`
}

// NotificationService orchestrates validation, email dispatch and ledger
// writes for overdue notifications. It holds no state across requests.
type NotificationService struct {
	db      *gorm.DB
	gateway mail.Gateway
	now     func() time.Time
	log     *zap.Logger
}

// NotificationOption customises a NotificationService.
type NotificationOption func(*NotificationService)

// WithClock overrides the service clock, primarily for tests.
func WithClock(now func() time.Time) NotificationOption {
	return func(s *NotificationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, gateway mail.Gateway, opts ...NotificationOption) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("notification service: mail gateway is required")
	}

	svc := &NotificationService{
		db:      db,
		gateway: gateway,
		now:     time.Now,
		log:     logger.WithModule("notifications"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SendOverdue validates the payload, dispatches exactly one email and
// persists one ledger row recording the outcome. The returned outcome
// mirrors the gateway result; delivery failure is not an error.
func (s *NotificationService) SendOverdue(ctx context.Context, input SendOverdueInput) (SendOutcome, error) {
	ctx = ensureContext(ctx)

	if !validDispatchInput(input) {
		return SendOutcome{}, apperrors.NewBadRequest("Missing required fields")
	}

	outcome, record := s.dispatch(ctx, input)

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return SendOutcome{}, fmt.Errorf("notification service: create ledger row: %w", err)
	}

	return outcome, nil
}

// SendBulk processes items sequentially, in order. A malformed item yields a
// failed result entry and no ledger row; it never aborts the batch. Ledger
// rows for well-formed items are persisted in a single batch write after the
// full pass, preserving input order.
func (s *NotificationService) SendBulk(ctx context.Context, items []SendOverdueInput) (BulkOutcome, error) {
	ctx = ensureContext(ctx)

	if len(items) == 0 {
		return BulkOutcome{}, apperrors.NewBadRequest("No notifications provided")
	}

	results := make([]SendOutcome, 0, len(items))
	records := make([]*models.Notification, 0, len(items))

	for _, item := range items {
		if !validDispatchInput(item) {
			results = append(results, SendOutcome{Success: false, Error: "Missing required fields"})
			continue
		}

		outcome, record := s.dispatch(ctx, item)
		results = append(results, outcome)
		records = append(records, record)
	}

	if len(records) > 0 {
		if err := s.db.WithContext(ctx).Create(records).Error; err != nil {
			return BulkOutcome{}, fmt.Errorf("notification service: batch create ledger rows: %w", err)
		}
	}

	summary := BulkSummary{Total: len(results)}
	for _, result := range results {
		if result.Success {
			summary.Sent++
		} else {
			summary.Failed++
		}
	}

	return BulkOutcome{
		Success: summary.Sent > 0,
		Message: fmt.Sprintf("%d of %d notifications sent successfully", summary.Sent, summary.Total),
		Results: results,
		Summary: summary,
	}, nil
}

// Retry re-dispatches a stored notification using its persisted recipient,
// subject and message, then overwrites the row's status, sentAt and
// errorMessage in place. Prior failure history is not retained.
func (s *NotificationService) Retry(ctx context.Context, id string) (SendOutcome, error) {
	ctx = ensureContext(ctx)

	if uuid.Validate(id) != nil {
		return SendOutcome{}, apperrors.NewBadRequest("Invalid notification ID")
	}

	var record models.Notification
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SendOutcome{}, apperrors.NewNotFound("Notification not found")
		}
		return SendOutcome{}, fmt.Errorf("notification service: load notification: %w", err)
	}

	result := s.gateway.Send(ctx, record.ReaderEmail, record.Subject, htmlBreaks(record.Message))
	status := statusFromResult(result)
	sentAt := s.now()
	metrics.NotificationsDispatched.WithLabelValues(status).Inc()

	if err := s.db.WithContext(ctx).Model(&record).Updates(map[string]any{
		"status":        status,
		"sent_at":       sentAt,
		"error_message": result.Error,
	}).Error; err != nil {
		return SendOutcome{}, fmt.Errorf("notification service: update notification: %w", err)
	}

	return outcomeFromResult(result), nil
}

// SendTest dispatches a fixed template to verify email configuration. Test
// sends are not recorded in the ledger.
func (s *NotificationService) SendTest(ctx context.Context, to, name string) SendOutcome {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(name) == "" {
		name = "there"
	}

	body := fmt.Sprintf(`<h1>Test Email from OpenShelf</h1>
<p>Hello %s,</p>
<p>This is a test email to verify that the email notification system is working correctly.</p>
<p>If you received this email, it means the system is properly configured.</p>
<p>Best regards,<br>OpenShelf Library Management</p>`, name)

	result := s.gateway.Send(ctx, to, "Test Email - OpenShelf Library Management", body)
	return outcomeFromResult(result)
}

// Stats runs four independent ledger queries. No snapshot consistency is
// required across them; concurrent writes may skew individual counts.
func (s *NotificationService) Stats(ctx context.Context) (*StatsData, error) {
	ctx = ensureContext(ctx)

	var stats StatsData

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("status = ?", models.NotificationStatusSent).
		Count(&stats.TotalSent).Error; err != nil {
		return nil, fmt.Errorf("notification service: count sent: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("status = ?", models.NotificationStatusFailed).
		Count(&stats.TotalFailed).Error; err != nil {
		return nil, fmt.Errorf("notification service: count failed: %w", err)
	}

	midnight := startOfDay(s.now())
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("status = ? AND sent_at >= ?", models.NotificationStatusSent, midnight).
		Count(&stats.SentToday).Error; err != nil {
		return nil, fmt.Errorf("notification service: count sent today: %w", err)
	}

	var recent []models.Notification
	if err := s.db.WithContext(ctx).
		Order("sent_at DESC").
		Limit(10).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("notification service: load recent: %w", err)
	}
	stats.RecentNotifications = mapNotificationRows(recent)

	return &stats, nil
}

// History returns one ledger page sorted by sentAt descending.
func (s *NotificationService) History(ctx context.Context, page, limit int) (*HistoryData, error) {
	ctx = ensureContext(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Order("sent_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: load history: %w", err)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("notification service: count history: %w", err)
	}

	return &HistoryData{
		Notifications: mapNotificationRows(rows),
		Total:         total,
		Page:          page,
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Delete removes one ledger row by id.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	if uuid.Validate(id) != nil {
		return apperrors.NewBadRequest("Invalid notification ID")
	}

	result := s.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("Notification not found")
	}

	return nil
}

// dispatch is the single send path shared by SendOverdue and SendBulk: one
// gateway invocation plus one staged ledger row. The caller decides when the
// row is persisted.
func (s *NotificationService) dispatch(ctx context.Context, input SendOverdueInput) (SendOutcome, *models.Notification) {
	result := s.gateway.Send(ctx, input.To, input.Subject, htmlBreaks(input.Message))
	status := statusFromResult(result)
	metrics.NotificationsDispatched.WithLabelValues(status).Inc()

	if !result.Success {
		s.log.Warn("email dispatch failed",
			zap.String("to", input.To),
			zap.String("error", result.Error),
		)
	}

	readerID := strings.TrimSpace(input.OverdueBooks[0].ReaderID)
	if readerID == "" {
		readerID = uuid.NewString()
	}

	titles := make([]string, 0, len(input.OverdueBooks))
	for _, book := range input.OverdueBooks {
		titles = append(titles, book.BookTitle)
	}
	titlesJSON, _ := json.Marshal(titles)

	record := &models.Notification{
		ReaderID:     readerID,
		ReaderName:   input.ReaderName,
		ReaderEmail:  input.To,
		Subject:      input.Subject,
		Message:      input.Message,
		BookTitles:   datatypes.JSON(titlesJSON),
		Status:       status,
		SentAt:       s.now(),
		ErrorMessage: result.Error,
	}

	return outcomeFromResult(result), record
}

func validDispatchInput(input SendOverdueInput) bool {
	return strings.TrimSpace(input.To) != "" &&
		strings.TrimSpace(input.ReaderName) != "" &&
		strings.TrimSpace(input.Subject) != "" &&
		strings.TrimSpace(input.Message) != "" &&
		len(input.OverdueBooks) > 0
}

// htmlBreaks converts newlines into HTML line breaks to form the email body.
// The raw message is what gets persisted; conversion happens at send time.
func htmlBreaks(message string) string {
	return strings.ReplaceAll(message, "\n", "<br>")
}

func statusFromResult(result mail.Result) string {
	if result.Success {
		return models.NotificationStatusSent
	}
	return models.NotificationStatusFailed
}

func outcomeFromResult(result mail.Result) SendOutcome {
	return SendOutcome{
		Success:   result.Success,
		MessageID: result.MessageID,
		Error:     result.Error,
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func mapNotificationRows(rows []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items
}

func mapNotification(row models.Notification) NotificationDTO {
	titles := []string{}
	if len(row.BookTitles) > 0 {
		_ = json.Unmarshal(row.BookTitles, &titles)
	}

	return NotificationDTO{
		ID:           row.ID,
		ReaderID:     row.ReaderID,
		ReaderName:   row.ReaderName,
		ReaderEmail:  row.ReaderEmail,
		Subject:      row.Subject,
		Message:      row.Message,
		BookTitles:   titles,
		Status:       row.Status,
		SentAt:       row.SentAt,
		ErrorMessage: row.ErrorMessage,
	}
}
