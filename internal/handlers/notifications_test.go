package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/database/testutil"
	"github.com/openshelf/openshelf/internal/models"
	"github.com/openshelf/openshelf/pkg/mail"
)

type stubGateway struct {
	calls int
	fail  bool
}

func (g *stubGateway) Send(_ context.Context, _, _, _ string) mail.Result {
	g.calls++
	if g.fail {
		return mail.Result{Success: false, Error: "relay unavailable"}
	}
	return mail.Result{Success: true, MessageID: fmt.Sprintf("<%s@test>", uuid.NewString())}
}

func setupNotificationRouter(t *testing.T, gateway mail.Gateway) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	handler, err := NewNotificationHandler(db, gateway)
	require.NoError(t, err)

	r := gin.New()
	group := r.Group("/api/notifications")
	group.POST("/send-overdue", handler.SendOverdue)
	group.POST("/send-bulk-overdue", handler.SendBulk)
	group.POST("/test-email", handler.SendTest)
	group.GET("/stats", handler.Stats)
	group.GET("/history", handler.History)
	group.DELETE("/:id", handler.Delete)
	group.POST("/retry/:id", handler.Retry)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func overduePayload(to string) map[string]any {
	return map[string]any{
		"to":         to,
		"readerName": "Ada Lovelace",
		"subject":    "Overdue books reminder",
		"message":    "Please return your books.",
		"overdueBooks": []map[string]any{
			{"readerId": uuid.NewString(), "bookTitle": "The Go Programming Language"},
		},
	}
}

func TestSendOverdueEndpointReturnsOutcome(t *testing.T) {
	gateway := &stubGateway{}
	r, _ := setupNotificationRouter(t, gateway)

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-overdue", overduePayload("ada@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["messageId"])
	require.NotContains(t, body, "error")
}

func TestSendOverdueEndpointDeliveryFailureStillHTTP200(t *testing.T) {
	gateway := &stubGateway{fail: true}
	r, _ := setupNotificationRouter(t, gateway)

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-overdue", overduePayload("ada@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "relay unavailable", body["error"])
}

func TestSendOverdueEndpointRejectsMissingFields(t *testing.T) {
	r, _ := setupNotificationRouter(t, &stubGateway{})

	payload := overduePayload("ada@example.com")
	delete(payload, "subject")

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-overdue", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
}

func TestSendBulkEndpoint(t *testing.T) {
	gateway := &stubGateway{}
	r, _ := setupNotificationRouter(t, gateway)

	malformed := overduePayload("missing@example.com")
	delete(malformed, "readerName")

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-bulk-overdue", map[string]any{
		"notifications": []map[string]any{
			overduePayload("a@example.com"),
			malformed,
			overduePayload("b@example.com"),
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Results []struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		} `json:"results"`
		Summary struct {
			Total  int `json:"total"`
			Sent   int `json:"sent"`
			Failed int `json:"failed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "2 of 3 notifications sent successfully", body.Message)
	require.Equal(t, 3, body.Summary.Total)
	require.Equal(t, 2, body.Summary.Sent)
	require.Equal(t, 1, body.Summary.Failed)
	require.Len(t, body.Results, 3)
	require.Equal(t, "Missing required fields", body.Results[1].Error)
}

func TestSendBulkEndpointEmptyBatch(t *testing.T) {
	r, _ := setupNotificationRouter(t, &stubGateway{})

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-bulk-overdue", map[string]any{
		"notifications": []map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestEmailEndpoint(t *testing.T) {
	gateway := &stubGateway{}
	r, db := setupNotificationRouter(t, gateway)

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/test-email", map[string]any{"to": "ops@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, "Test email sent successfully", body["message"])

	// Test sends never reach the ledger.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestTestEmailEndpointGatewayFailure(t *testing.T) {
	r, _ := setupNotificationRouter(t, &stubGateway{fail: true})

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/test-email", map[string]any{"to": "ops@example.com"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Failed to send test email", body["message"])
	require.Equal(t, "relay unavailable", body["error"])
}

func TestStatsAndHistoryEndpoints(t *testing.T) {
	gateway := &stubGateway{}
	r, _ := setupNotificationRouter(t, gateway)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-overdue", overduePayload(fmt.Sprintf("r%d@example.com", i)))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/notifications/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Success bool `json:"success"`
		Data    struct {
			TotalSent int64 `json:"totalSent"`
			SentToday int64 `json:"sentToday"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.True(t, stats.Success)
	require.EqualValues(t, 3, stats.Data.TotalSent)
	require.EqualValues(t, 3, stats.Data.SentToday)

	rec = doJSON(t, r, http.MethodGet, "/api/notifications/history?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []map[string]any `json:"notifications"`
			Total         int64            `json:"total"`
			Page          int              `json:"page"`
			TotalPages    int              `json:"totalPages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.True(t, history.Success)
	require.Len(t, history.Data.Notifications, 2)
	require.EqualValues(t, 3, history.Data.Total)
	require.Equal(t, 2, history.Data.TotalPages)

	// Garbage pagination values fall back to defaults.
	rec = doJSON(t, r, http.MethodGet, "/api/notifications/history?page=abc&limit=xyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Equal(t, 1, history.Data.Page)
}

func TestDeleteAndRetryEndpoints(t *testing.T) {
	gateway := &stubGateway{fail: true}
	r, db := setupNotificationRouter(t, gateway)

	rec := doJSON(t, r, http.MethodPost, "/api/notifications/send-overdue", overduePayload("ada@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)

	var row models.Notification
	require.NoError(t, db.First(&row).Error)

	// Retry after the relay recovers.
	gateway.fail = false
	rec = doJSON(t, r, http.MethodPost, "/api/notifications/retry/"+row.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	require.Equal(t, true, outcome["success"])

	rec = doJSON(t, r, http.MethodPost, "/api/notifications/retry/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/notifications/"+row.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var deleted map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	require.Equal(t, "Notification deleted successfully", deleted["message"])

	rec = doJSON(t, r, http.MethodDelete, "/api/notifications/"+row.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
