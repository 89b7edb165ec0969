package folio

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Password string `json:"password" form:"password"`
}

// handleAdminLogin authenticates with the configured admin password. Failed
// attempts are rate-limited per IP; the comparison is constant-time.
func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		return ErrUnauthorized
	}

	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// handleAdminListPosts lists posts of every status, drafts included.
func (a *App) handleAdminListPosts(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	page := intParam(c.QueryParam("page"), 1)
	size := intParam(c.QueryParam("page_size"), 0)
	filter := PostFilter{
		Status: PostStatus(c.QueryParam("status")),
		Search: c.QueryParam("q"),
	}
	result, err := a.Listing.GetPage(c.Request().Context(), page, size, filter, SortPublishedDesc)
	if err != nil {
		return err
	}
	for i := range result.Items {
		result.Items[i].Body = ""
	}
	return c.JSON(http.StatusOK, result)
}

func (a *App) handleAdminGetPost(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	post, err := a.Store.GetPostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminCreatePost(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if err := in.Validate(); err != nil {
		return err
	}
	post, err := a.Store.CreatePost(c.Request().Context(), in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handleAdminUpdatePost(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	slug := c.Param("slug")
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	// Absent slug in the payload means "keep the current one".
	if in.Slug == "" {
		in.Slug = slug
	}
	if err := in.Validate(); err != nil {
		return err
	}
	post, err := a.Store.UpdatePost(c.Request().Context(), slug, in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	if err := a.Store.DeletePost(c.Request().Context(), c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleAdminSaveAuthor(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var author Author
	if err := c.Bind(&author); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	saved, err := a.Store.SaveAuthor(c.Request().Context(), author)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, saved)
}

func (a *App) handleAdminSession(c echo.Context) error {
	s := AdminFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": s != nil && s.Authenticated,
		"csrf":          CsrfToken(c),
	})
}
