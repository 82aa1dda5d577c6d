package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getvisid/visid/pkg/config"
)

// stubFeed accepts websocket clients and pushes one grant event to each.
func stubFeed(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		frame := `{"event":"consent.changed","categories":["C0002"]}`
		if err := conn.Write(r.Context(), websocket.MessageText, []byte(frame)); err != nil {
			return
		}
		// Keep the feed open; the engine owns the connection lifetime.
		time.Sleep(2 * time.Second)
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConsentFeedDrivesLocalState(t *testing.T) {
	feed := stubFeed(t)
	feedURL := "ws" + strings.TrimPrefix(feed.URL, "http")
	base := startServer(t, func(c *config.Config) { c.ConsentFeed = feedURL })

	// Discovery probes immediately, so the grant should land well within
	// the polling budget.
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(base + "/state")
		require.NoError(t, err)
		var vb visitorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&vb))
		_ = resp.Body.Close()

		if vb.Tracked {
			assert.Len(t, vb.VisitorID, 16)
			assert.Contains(t, vb.Categories, "C0002")
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("feed grant never reached local state")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
