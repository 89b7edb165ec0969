// Package folio is a blog content engine built with Go, Echo, and goldmark.
// It provides the content store, markdown rendering, paginated listings,
// RSS/sitemap syndication, and a session-gated admin API out of the box.
//
// Pages are served as minimal HTML shells plus a JSON API; users who want
// their own templates register them with WithCustomRoutes.
package folio

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/markdown"
)

// App is the central folio application. It wires together the store, cache,
// renderer, listing service, handlers, and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Listing  *Listing
	Markdown *markdown.Renderer

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, middleware, and routes, then starts
// the server. It blocks until the server stops.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("folio: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.Listing = NewListing(a.Store, a.Config.PageSize)
	a.Markdown = markdown.New()
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/rss/:kind", a.handleFeed)

	// HTML pages
	e.GET("/", a.handleHome)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/:slug/", a.handlePostPage)

	// Public JSON API
	e.GET("/api/posts", a.handleListPosts)
	e.GET("/api/posts/:slug", a.handleGetPost)
	e.GET("/api/categories", a.handleCategories)
	e.GET("/api/tags", a.handleTags)

	// Admin session endpoints
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)
	e.GET("/admin/session/", a.handleAdminSession)

	// Admin JSON API; every handler re-checks the session itself.
	g := e.Group("/admin/api")
	g.GET("/posts", a.handleAdminListPosts)
	g.POST("/posts", a.handleAdminCreatePost)
	g.GET("/posts/:slug", a.handleAdminGetPost)
	g.PUT("/posts/:slug", a.handleAdminUpdatePost)
	g.DELETE("/posts/:slug", a.handleAdminDeletePost)
	g.PUT("/authors", a.handleAdminSaveAuthor)
	g.GET("/media", a.handleMediaList)
	g.POST("/media", a.handleMediaUpload)
	g.DELETE("/media/:filename", a.handleMediaDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("folio: required environment variable %s is not set", key)
	}
	return v
}
