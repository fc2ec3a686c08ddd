package main

import (
	"log"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/dojoworks/dojotrack/internal/config"
	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/web"
)

func main() {
	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("db init: %v", err)
	}

	handler := web.Router(cfg.TemplatesDir, cfg.MediaDir)

	// All state-changing forms carry the token injected by the renderer.
	protect := csrf.Protect(
		[]byte(cfg.CSRFKey),
		csrf.Secure(false), // enable when serving behind TLS
		csrf.Path("/"),
	)

	log.Printf("Dojotrack listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, protect(handler)); err != nil {
		log.Fatal(err)
	}
}
