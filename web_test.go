/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Seednode/whotyped/games/whotyped"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()

	cfg.log = newLogger(cfg, io.Discard)
	hub := whotyped.NewHub(whotyped.DefaultSettings(), 0, zerolog.Nop())

	srv := httptest.NewServer(newRouter(cfg, hub))
	t.Cleanup(srv.Close)

	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &Config{port: 8080, readingTime: time.Second})

	resp, body := get(t, srv.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ok\nclients: 0\nrooms: 0\n", string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t, &Config{})

	_, body := get(t, srv.URL+"/version")

	assert.Equal(t, "whotyped v"+releaseVersion+"\n", string(body))
}

func TestRobots(t *testing.T) {
	srv := newTestServer(t, &Config{})

	resp, body := get(t, srv.URL+"/robots.txt")

	assert.Equal(t, robots, string(body))
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
}

func TestPrefix(t *testing.T) {
	srv := newTestServer(t, &Config{prefix: "/party"})

	resp, _ := get(t, srv.URL+"/party/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQRCode(t *testing.T) {
	srv := newTestServer(t, &Config{})

	resp, body := get(t, srv.URL+"/room/abc123/qr")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG\r\n\x1a\n")))
}

func TestQRCodeRejectsBadCode(t *testing.T) {
	srv := newTestServer(t, &Config{})

	for _, code := range []string{"abc", "ABC1234", "ABC_12", "%3Cscript%3E"} {
		resp, _ := get(t, srv.URL+"/room/"+code+"/qr")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, code)
	}
}

func TestInviteURL(t *testing.T) {
	cfg := &Config{prefix: "/party"}

	r := httptest.NewRequest(http.MethodGet, "http://games.example/party/room/ABC123/qr", nil)
	assert.Equal(t, "http://games.example/party/?room=ABC123", inviteURL(cfg, r, "ABC123"))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://games.example/party/?room=ABC123", inviteURL(cfg, r, "ABC123"))

	r.Header.Set("X-Forwarded-Proto", "javascript")
	assert.Equal(t, "http://games.example/party/?room=ABC123", inviteURL(cfg, r, "ABC123"))
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1:5555", realIP(r))

	r.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7:5555", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:5555", realIP(r))
}
