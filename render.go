package folio

import (
	"context"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// postPage wraps a rendered post body in a minimal HTML shell with title,
// description, and JSON-LD metadata.
func postPage(cfg SiteConfig, post Post, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8"/>`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		b.WriteString("<title>" + html.EscapeString(post.Title) + " — " + html.EscapeString(cfg.Name) + "</title>")
		if post.Description != "" {
			b.WriteString(`<meta name="description" content="` + html.EscapeString(post.Description) + `"/>`)
		}
		b.WriteString(`<link rel="alternate" type="application/rss+xml" href="/rss/blog"/>`)
		b.WriteString(`<script type="application/ld+json">` + BlogPostingJsonLD(post, cfg) + `</script>`)
		b.WriteString(`</head><body><main><article>`)
		b.WriteString("<h1>" + html.EscapeString(post.Title) + "</h1>")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</article></main></body></html>`)
		return err
	})
}

// homePage lists published posts as a plain linked index.
func homePage(cfg SiteConfig, posts []Post) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8"/>`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		b.WriteString("<title>" + html.EscapeString(cfg.Name) + "</title>")
		if cfg.Description != "" {
			b.WriteString(`<meta name="description" content="` + html.EscapeString(cfg.Description) + `"/>`)
		}
		b.WriteString(`<link rel="alternate" type="application/rss+xml" href="/rss/blog"/>`)
		b.WriteString(`<script type="application/ld+json">` + WebsiteJsonLD(cfg) + `</script>`)
		b.WriteString(`</head><body><main><h1>` + html.EscapeString(cfg.Name) + `</h1><ul>`)
		for _, p := range posts {
			b.WriteString(`<li><a href="` + p.Link() + `/">` + html.EscapeString(p.Title) + `</a>`)
			if p.PublishedAt != nil {
				b.WriteString(` <time datetime="` + p.PublishedAt.Format("2006-01-02") + `">` +
					p.PublishedAt.Format("2006-01-02") + `</time>`)
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul></main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
