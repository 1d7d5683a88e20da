package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulink_backend/internal/auth"
	"edulink_backend/internal/config"
	"edulink_backend/internal/services/dto"
	"edulink_backend/internal/validator"
	"edulink_backend/pkg/apperrors"
)

// stubNotificationService records the arguments of each call and returns
// whatever the test primed it with.
type stubNotificationService struct {
	listUserID string
	listLimit  int
	listCursor string
	listResult *dto.NotificationListResponse
	listErr    error

	markReadUserID string
	markReadID     string
	markReadErr    error

	markAllUserID string

	deleteID  string
	deleteErr error

	createReq    *dto.CreateNotificationRequest
	createResult *dto.NotificationResponse

	unreadCount int64
}

func (s *stubNotificationService) CreateNotification(req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	s.createReq = req
	if s.createResult != nil {
		return s.createResult, nil
	}
	return &dto.NotificationResponse{
		ID:        "n-1",
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}, nil
}

func (s *stubNotificationService) MarkAsRead(userID, notificationID string) error {
	s.markReadUserID = userID
	s.markReadID = notificationID
	return s.markReadErr
}

func (s *stubNotificationService) MarkAllAsRead(userID string) error {
	s.markAllUserID = userID
	return nil
}

func (s *stubNotificationService) DeleteNotification(userID, notificationID string) error {
	s.deleteID = notificationID
	return s.deleteErr
}

func (s *stubNotificationService) ListNotifications(userID string, limit int, cursor string) (*dto.NotificationListResponse, error) {
	s.listUserID = userID
	s.listLimit = limit
	s.listCursor = cursor
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.listResult != nil {
		return s.listResult, nil
	}
	return &dto.NotificationListResponse{Notifications: []*dto.NotificationResponse{}}, nil
}

func (s *stubNotificationService) GetUnreadCount(userID string) (int64, error) {
	return s.unreadCount, nil
}

func setupNotificationRouter(t *testing.T) (*gin.Engine, *stubNotificationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if config.AppConfig == nil {
		config.AppConfig = &config.Config{}
	}
	config.AppConfig.JWT.Secret = "test-secret"
	config.AppConfig.JWT.TTL = 60

	stub := &stubNotificationService{}
	handler := NewNotificationHandler(NewBaseHandler(validator.New()), stub)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, stub
}

func bearerToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path, authHeader, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Code
}

func TestNotificationHandler_ListPassesQueryThrough(t *testing.T) {
	router, stub := setupNotificationRouter(t)
	stub.listResult = &dto.NotificationListResponse{
		Notifications: []*dto.NotificationResponse{{ID: "n-1", UserID: "u-1", Type: "system", Title: "Welcome"}},
		NextCursor:    "cursor-2",
	}

	rec := doRequest(router, http.MethodGet, "/api/v1/notifications?limit=5&cursor=cursor-1", bearerToken(t, "u-1", "student"), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", stub.listUserID)
	assert.Equal(t, 5, stub.listLimit)
	assert.Equal(t, "cursor-1", stub.listCursor)

	var page dto.NotificationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "n-1", page.Notifications[0].ID)
	assert.Equal(t, "cursor-2", page.NextCursor)
}

func TestNotificationHandler_RequiresToken(t *testing.T) {
	router, stub := setupNotificationRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/notifications", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, stub.listUserID)
}

func TestNotificationHandler_MarkReadNotFound(t *testing.T) {
	router, stub := setupNotificationRouter(t)
	stub.markReadErr = apperrors.NotFound("notifications", "Notification not found")

	rec := doRequest(router, http.MethodPut, "/api/v1/notifications/n-missing/read", bearerToken(t, "u-1", "student"), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(apperrors.CodeNotFound), decodeErrorCode(t, rec.Body.Bytes()))
	assert.Equal(t, "u-1", stub.markReadUserID)
	assert.Equal(t, "n-missing", stub.markReadID)
}

func TestNotificationHandler_MarkAllUsesTokenIdentity(t *testing.T) {
	router, stub := setupNotificationRouter(t)

	rec := doRequest(router, http.MethodPut, "/api/v1/notifications/read-all", bearerToken(t, "u-7", "student"), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-7", stub.markAllUserID)
}

func TestNotificationHandler_DeleteReturnsNoContent(t *testing.T) {
	router, stub := setupNotificationRouter(t)

	rec := doRequest(router, http.MethodDelete, "/api/v1/notifications/n-3", bearerToken(t, "u-1", "student"), "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "n-3", stub.deleteID)
}

func TestNotificationHandler_CreateRequiresTeacherRole(t *testing.T) {
	router, stub := setupNotificationRouter(t)
	body := `{"user_id":"u-2","type":"announcement","title":"Exam moved"}`

	rec := doRequest(router, http.MethodPost, "/api/v1/notifications", bearerToken(t, "u-1", "student"), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, stub.createReq)

	rec = doRequest(router, http.MethodPost, "/api/v1/notifications", bearerToken(t, "t-1", "teacher"), body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.createReq)
	assert.Equal(t, "u-2", stub.createReq.UserID)
	assert.Equal(t, "Exam moved", stub.createReq.Title)
}

func TestNotificationHandler_CreateRejectsInvalidBody(t *testing.T) {
	router, stub := setupNotificationRouter(t)

	// user_id and title are required; the service must never see the request.
	rec := doRequest(router, http.MethodPost, "/api/v1/notifications", bearerToken(t, "t-1", "teacher"), `{"type":"announcement"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apperrors.CodeValidationFailed), decodeErrorCode(t, rec.Body.Bytes()))
	assert.Nil(t, stub.createReq)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	router, stub := setupNotificationRouter(t)
	stub.unreadCount = 12

	rec := doRequest(router, http.MethodGet, "/api/v1/notifications/unread-count", bearerToken(t, "u-1", "student"), "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		UnreadCount int64 `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.UnreadCount)
}
