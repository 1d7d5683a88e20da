package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edulink_backend/internal/live"
)

func TestParseFeeds(t *testing.T) {
	cases := []struct {
		raw  string
		want []live.Feed
	}{
		{"notifications", []live.Feed{live.FeedNotifications}},
		{"notifications,realtime_updates", []live.Feed{live.FeedNotifications, live.FeedRealtimeUpdates}},
		{" realtime_updates , notifications ", []live.Feed{live.FeedRealtimeUpdates, live.FeedNotifications}},
		{"", nil},
		{"bogus", nil},
		{"bogus,notifications", []live.Feed{live.FeedNotifications}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, parseFeeds(tc.raw), "raw=%q", tc.raw)
	}
}
