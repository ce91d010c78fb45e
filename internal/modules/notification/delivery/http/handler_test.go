package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/modules/notification/dto"
	notification "anoa.com/collegetrack/internal/modules/notification/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items []entity.Notification
}

func (m *memRepo) Create(_ context.Context, n *entity.Notification) error {
	n.ID = uuid.New()
	m.items = append(m.items, *n)
	return nil
}

func (m *memRepo) GetByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]entity.Notification, error) {
	var out []entity.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memRepo) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return false, nil }

func (m *memRepo) MarkAllAsRead(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (m *memRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(m.items)), nil
}

type noParents struct{}

func (noParents) FindParentIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) { return nil, nil }

func setup(t *testing.T, userID uuid.UUID) (*gin.Engine, notification.NotificationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := notification.NewNotificationService(&memRepo{}, noParents{}, rdb)
	h := NewNotificationHandler(svc, rdb, []string{"http://localhost:3000"})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("user_role", string(entity.RoleStudent))
		c.Next()
	})
	r.GET("/notifications", h.GetNotifications)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.PUT("/notifications/:id/read", h.MarkAsRead)
	r.GET("/notifications/ws", h.HandleWebSocket)
	return r, svc
}

func TestGetNotificationsAndCount(t *testing.T) {
	userID := uuid.New()
	r, svc := setup(t, userID)
	require.NoError(t, svc.CreateNotification(context.Background(), &entity.Notification{UserID: userID, Title: "hello"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Notifications []dto.NotificationResponse `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "hello", body.Notifications[0].Title)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil))
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAsRead_UnknownIsNotFound(t *testing.T) {
	r, _ := setup(t, uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/"+uuid.NewString()+"/read", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/nope/read", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebSocket_ForwardsPublishedNotifications(t *testing.T) {
	userID := uuid.New()
	r, svc := setup(t, userID)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications/ws"
	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	// The handler subscribes after the handshake, so keep publishing until one arrives.
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	received := make(chan []byte, 1)
	go func() {
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
	}()

	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case data := <-received:
			var got dto.NotificationResponse
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, "Status changed", got.Title)
			return
		case <-tick.C:
			require.NoError(t, svc.CreateNotification(context.Background(), &entity.Notification{UserID: userID, Title: "Status changed"}))
		case <-deadline:
			t.Fatal("websocket did not receive the notification")
		}
	}
}

func TestHandleWebSocket_RejectsForeignOrigin(t *testing.T) {
	r, _ := setup(t, uuid.New())
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
