package folio

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/markdown"
)

// postView is the single-post API payload: the post plus its rendered
// document and related posts by shared tag.
type postView struct {
	Post     Post               `json:"post"`
	Document *markdown.Document `json:"document"`
	Related  []Post             `json:"related"`
}

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.Posts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, homePage(a.Config, posts))
}

// handleListPosts serves the paginated published listing as JSON. Query
// params: page, page_size, category, tag, q, sort=title|published.
func (a *App) handleListPosts(c echo.Context) error {
	page := intParam(c.QueryParam("page"), 1)
	size := intParam(c.QueryParam("page_size"), 0)
	sort := SortPublishedDesc
	if c.QueryParam("sort") == "title" {
		sort = SortTitleAsc
	}
	filter := PostFilter{
		Status:   StatusPublished,
		Category: c.QueryParam("category"),
		Tag:      c.QueryParam("tag"),
		Search:   c.QueryParam("q"),
	}
	result, err := a.Listing.GetPage(c.Request().Context(), page, size, filter, sort)
	if err != nil {
		return err
	}
	// Listings carry metadata only; the body ships with the single-post
	// endpoint.
	for i := range result.Items {
		result.Items[i].Body = ""
	}
	return c.JSON(http.StatusOK, result)
}

func (a *App) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	doc, err := a.Markdown.Render(post.Body)
	if err != nil {
		return err
	}
	posts, err := a.Cache.Posts(ctx)
	if err != nil {
		return err
	}
	related := RelatedPosts(post, posts)
	for i := range related {
		related[i].Body = ""
	}
	return c.JSON(http.StatusOK, postView{Post: post, Document: doc, Related: related})
}

func (a *App) handleCategories(c echo.Context) error {
	cats, err := a.Cache.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []Category{}
	}
	return c.JSON(http.StatusOK, cats)
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Cache.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []Tag{}
	}
	return c.JSON(http.StatusOK, tags)
}

// handlePostPage serves a single post as rendered HTML.
func (a *App) handlePostPage(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return Render(c, postPage(a.Config, post, a.Markdown.Component(post.Body)))
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// httpErrorHandler maps the error taxonomy to JSON responses: expected
// conditions become 4xx with a message, everything else is logged and
// surfaced as a generic 500 without internal detail.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var verrs validation.Errors
	switch {
	case errors.Is(err, ErrNotFound):
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, ErrUnauthorized):
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, ErrSlugExists):
		_ = c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
	case errors.As(err, &verrs):
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verrs})
	default:
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		if code >= 500 {
			c.Logger().Errorf("server error: %v", err)
			_ = c.JSON(code, echo.Map{"error": "internal server error"})
			return
		}
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return fallback
		}
	}
	return n
}
