package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/eringen/folio"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := folio.SiteConfig{
		Name:        folio.EnvOr("SITE_NAME", "Blog"),
		URL:         strings.TrimRight(folio.EnvOr("SITE_URL", "http://localhost:3000"), "/"),
		Description: folio.EnvOr("SITE_DESCRIPTION", ""),
		Author:      folio.EnvOr("SITE_AUTHOR", ""),

		Addr:         folio.EnvOr("ADDR", ":3000"),
		DatabasePath: folio.EnvOr("DATABASE_PATH", "data/blog.db"),

		AdminPassword: folio.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: folio.MustEnv("ADMIN_SESSION_SECRET"),
		CookieSecure:  folio.EnvOr("COOKIE_SECURE", "false") == "true",
	}

	app := folio.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatalf("folio: %v", err)
	}
}
