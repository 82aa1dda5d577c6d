package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getvisid/visid/pkg/config"
	"github.com/getvisid/visid/pkg/engine"
)

// startServer runs a visid server on an ephemeral port and tears it down
// with the test.
func startServer(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	cfg := config.Default()
	cfg.Listen = "127.0.0.1:0"
	cfg.Domain = "example.com" // fixed scope: test requests arrive via 127.0.0.1
	if mutate != nil {
		mutate(cfg)
	}
	srv, err := engine.New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return "http://" + srv.Addr()
}

type visitorBody struct {
	VisitorID  string   `json:"visitorId"`
	Tracked    bool     `json:"tracked"`
	Categories []string `json:"categories"`
}

func doJSON(t *testing.T, method, url, cookieHeader string, body any) (*http.Response, visitorBody) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var vb visitorBody
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		_ = json.NewDecoder(resp.Body).Decode(&vb)
	}
	return resp, vb
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestOptInLifecycle(t *testing.T) {
	base := startServer(t, nil)

	// 1. First visit: no consent recorded, opt-in default denies tracking.
	resp, vb := doJSON(t, http.MethodGet, base+"/visitor", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, vb.Tracked)
	assert.Empty(t, vb.VisitorID)
	assert.Nil(t, findCookie(resp, "visitorid"))

	// 2. The CMP banner posts a grant including the performance category.
	resp, vb = doJSON(t, http.MethodPost, base+"/consent", "",
		map[string][]string{"categories": {"C0002", "C0003"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, vb.Tracked)
	require.Len(t, vb.VisitorID, 16)

	vc := findCookie(resp, "visitorid")
	require.NotNil(t, vc, "visitorid cookie must be set on grant")
	assert.Equal(t, vb.VisitorID, vc.Value)
	assert.Equal(t, "example.com", vc.Domain)
	assert.Equal(t, "/", vc.Path)
	assert.True(t, vc.Secure)
	pc := findCookie(resp, "otpreferences")
	require.NotNil(t, pc, "otpreferences cookie must be set on grant")

	// 3. Returning visitor keeps the same identifier.
	cookieHeader := fmt.Sprintf("visitorid=%s; otpreferences=C0002,C0003", vc.Value)
	resp, vb = doJSON(t, http.MethodGet, base+"/visitor", cookieHeader, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, vb.Tracked)
	assert.Equal(t, vc.Value, vb.VisitorID)
	assert.Nil(t, findCookie(resp, "visitorid"), "no rewrite for a returning visitor")

	// 4. Consent withdrawal evicts the identifier.
	resp, vb = doJSON(t, http.MethodPost, base+"/consent", cookieHeader,
		map[string][]string{"categories": {}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, vb.Tracked)
	evicted := findCookie(resp, "visitorid")
	require.NotNil(t, evicted)
	assert.Empty(t, evicted.Value)
	assert.True(t, evicted.Expires.Before(time.Now()), "eviction must expire the cookie in the past")
}

func TestNoOptInRequired(t *testing.T) {
	optIn := false
	base := startServer(t, func(c *config.Config) { c.OptInRequired = &optIn })

	resp, vb := doJSON(t, http.MethodGet, base+"/visitor", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, vb.Tracked, "absence of consent defaults to allowed when opt-in is not required")
	require.NotNil(t, findCookie(resp, "visitorid"))

	// A recorded opt-out still wins over the permissive default.
	resp, vb = doJSON(t, http.MethodGet, base+"/visitor", "otpreferences=C0001", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, vb.Tracked)
}

func TestCustomCookieNames(t *testing.T) {
	base := startServer(t, func(c *config.Config) {
		c.VisitorCookie = "vid"
		c.PreferencesCookie = "cmp_prefs"
	})

	resp, vb := doJSON(t, http.MethodPost, base+"/consent", "",
		map[string][]string{"categories": {"C0002"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, vb.Tracked)
	assert.NotNil(t, findCookie(resp, "vid"))
	assert.NotNil(t, findCookie(resp, "cmp_prefs"))
	assert.Nil(t, findCookie(resp, "visitorid"))
}

func TestHealthz(t *testing.T) {
	base := startServer(t, nil)
	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
