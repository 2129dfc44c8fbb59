/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Seednode/whotyped/games/whotyped"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, hub *whotyped.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errorf(cfg, "SERVE: Websocket upgrade for %s: %v", realIP(r), err)
			return
		}

		logf(cfg, "SERVE: Websocket opened by %s", realIP(r))

		hub.Serve(conn)

		logf(cfg, "SERVE: Websocket closed by %s", realIP(r))
	}
}

// inviteURL is the address a player scans to join code.
func inviteURL(cfg *Config, r *http.Request, code string) string {
	scheme := cfg.scheme()
	if r.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto {
	case "http", "https":
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"room": {code}}.Encode(),
	}

	return u.String()
}

// serveQR returns a PNG QR code pointing at the invite link for a room.
func serveQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := strings.ToUpper(ps.ByName("code"))
		if !whotyped.ValidRoomCode(code) {
			http.Error(w, "invalid room code", http.StatusBadRequest)
			return
		}

		png, err := qrcode.Encode(inviteURL(cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			errorf(cfg, "SERVE: QR code for %s: %v", code, err)
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

func registerGame(cfg *Config, hub *whotyped.Hub, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, hub))

	mux.GET(cfg.prefix+"/room/:code/qr", serveQR(cfg))
}
