package ws

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"edulink_backend/internal/live"
	"edulink_backend/internal/logger"
	"edulink_backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the frontend host list is fixed
	},
}

type WebSocketHandler struct {
	publisher *live.Publisher
}

func NewWebSocketHandler(publisher *live.Publisher) *WebSocketHandler {
	return &WebSocketHandler{publisher: publisher}
}

// ServeWS upgrades the connection and opens one live subscription per
// requested feed, e.g. /ws?feeds=notifications,realtime_updates&limit=20.
// Each change pushes the feed's full window as a JSON frame.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	feeds := parseFeeds(c.Query("feeds"))
	if len(feeds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one feed is required, e.g. ?feeds=notifications"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := newClient(userID, conn)

	for _, feed := range feeds {
		feed := feed
		sub, err := h.publisher.Subscribe(userID, feed, limit,
			func(snapshot interface{}) {
				client.enqueue(feedMessage{Feed: string(feed), Snapshot: snapshot})
			},
			func(subErr error) {
				client.enqueue(feedMessage{Feed: string(feed), Error: subErr.Error()})
			},
		)
		if err != nil {
			logger.Warn("websocket subscription rejected",
				"user_id", userID, "feed", string(feed), "error", err)
			client.shutdown()
			return
		}
		client.subscriptions = append(client.subscriptions, sub)
	}

	logger.Debug("websocket client connected", "user_id", userID, "feeds", c.Query("feeds"))

	go client.writePump()
	go client.readPump()
}

func parseFeeds(raw string) []live.Feed {
	var feeds []live.Feed
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case string(live.FeedNotifications):
			feeds = append(feeds, live.FeedNotifications)
		case string(live.FeedRealtimeUpdates):
			feeds = append(feeds, live.FeedRealtimeUpdates)
		}
	}
	return feeds
}
