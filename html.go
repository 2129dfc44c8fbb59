/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Seednode/whotyped/games/whotyped"
	"github.com/julienschmidt/httprouter"
)

const robots = `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := io.WriteString(w, newPage("whotyped", "whotyped v"+releaseVersion+": connect to "+cfg.prefix+"/ws to play."))
		if err != nil {
			errorf(cfg, "SERVE: Home page to %s: %v", realIP(r), err)
		}
	}
}

func serveHealthCheck(cfg *Config, hub *whotyped.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		clients, rooms := hub.Stats()

		_, err := fmt.Fprintf(w, "Ok\nclients: %d\nrooms: %d\n", clients, rooms)
		if err != nil {
			errorf(cfg, "SERVE: Health check to %s: %v", realIP(r), err)
		}
	}
}

func serveRobots(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(robots)))
		securityHeaders(cfg, w)

		_, err := io.WriteString(w, robots)
		if err != nil {
			errorf(cfg, "SERVE: robots.txt to %s: %v", realIP(r), err)
		}
	}
}
