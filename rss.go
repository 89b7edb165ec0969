package folio

import (
	"context"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Feed kinds served under /rss/:kind. "blog" carries every published
// post; "projects" only those in the projects category.
const (
	FeedBlog     = "blog"
	FeedProjects = "projects"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// feedPosts resolves a feed kind to its published posts, newest first.
// Unknown kinds are ErrNotFound.
func (a *App) feedPosts(ctx context.Context, kind string) ([]Post, error) {
	switch kind {
	case FeedBlog:
		return a.Cache.Posts(ctx)
	case FeedProjects:
		return a.Cache.PostsByCategory(ctx, FeedProjects)
	default:
		return nil, ErrNotFound
	}
}

// buildRSS assembles the feed document. Every item link is absolute,
// built from the configured site URL; ordering follows the input slice
// (published date descending from the cache).
func buildRSS(cfg SiteConfig, posts []Post) rssXML {
	base := cfg.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if p.PublishedAt != nil {
			pubDate = p.PublishedAt.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Description,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        base,
			Description: cfg.Description,
			Items:       items,
		},
	}
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.feedPosts(c.Request().Context(), c.Param("kind"))
	if err != nil {
		return err
	}
	feed := buildRSS(a.Config, posts)
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
