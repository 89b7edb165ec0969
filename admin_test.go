package folio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func adminContext(t *testing.T, a *App, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	c.Set(adminSessionKey, &AdminSession{Authenticated: true})
	return c, rec
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := requireAdmin(c); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("no session: expected ErrUnauthorized, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(adminSessionKey, &AdminSession{Authenticated: true})
	if err := requireAdmin(c); err != nil {
		t.Errorf("authenticated session: expected nil, got %v", err)
	}
}

func TestAdminHandlersRejectWithoutSession(t *testing.T) {
	a := testApp(t)
	a.Listing = NewListing(a.Store, a.Config.PageSize)

	handlers := map[string]echo.HandlerFunc{
		"list":   a.handleAdminListPosts,
		"get":    a.handleAdminGetPost,
		"create": a.handleAdminCreatePost,
		"update": a.handleAdminUpdatePost,
		"delete": a.handleAdminDeletePost,
		"author": a.handleAdminSaveAuthor,
		"media":  a.handleMediaList,
	}
	for name, h := range handlers {
		c := a.Echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if err := h(c); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized without a session, got %v", name, err)
		}
	}
}

func TestAdminCreatePost(t *testing.T) {
	a := testApp(t)
	a.Listing = NewListing(a.Store, a.Config.PageSize)

	// warm the cache so invalidation is observable
	if _, err := a.Cache.Posts(context.Background()); err != nil {
		t.Fatalf("cache warm failed: %v", err)
	}

	body := `{"title":"My First Post","body":"hello","status":"published"}`
	c, rec := adminContext(t, a, http.MethodPost, "/admin/api/posts", body)
	if err := a.handleAdminCreatePost(c); err != nil {
		t.Fatalf("handleAdminCreatePost failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var created Post
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("response is not a post: %v", err)
	}
	if created.Slug != "my-first-post" {
		t.Errorf("slug = %q, want derived my-first-post", created.Slug)
	}

	// the write must be visible immediately through the cache
	posts, err := a.Cache.Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("cache should see the new post after create, got %v", posts)
	}
}

func TestAdminCreatePostValidationError(t *testing.T) {
	a := testApp(t)
	a.Listing = NewListing(a.Store, a.Config.PageSize)

	c, _ := adminContext(t, a, http.MethodPost, "/admin/api/posts", `{"body":"no title"}`)
	err := a.handleAdminCreatePost(c)
	if err == nil {
		t.Fatal("expected a validation error for a post with no title")
	}
}

func TestAdminUpdateAndDeletePost(t *testing.T) {
	a := testApp(t)
	a.Listing = NewListing(a.Store, a.Config.PageSize)
	ctx := context.Background()

	if _, err := a.Store.CreatePost(ctx, publishedInput("keep-slug", "Keep Slug", time.Now().UTC())); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	// update without a slug in the payload keeps the current one
	c, rec := adminContext(t, a, http.MethodPut, "/admin/api/posts/keep-slug",
		`{"title":"New Title","status":"published"}`)
	c.SetParamNames("slug")
	c.SetParamValues("keep-slug")
	if err := a.handleAdminUpdatePost(c); err != nil {
		t.Fatalf("handleAdminUpdatePost failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("update status = %d, want 200", rec.Code)
	}
	got, err := a.Store.GetPostBySlug(ctx, "keep-slug")
	if err != nil {
		t.Fatalf("GetPostBySlug failed: %v", err)
	}
	if got.Title != "New Title" {
		t.Errorf("Title = %q, want New Title", got.Title)
	}

	c, rec = adminContext(t, a, http.MethodDelete, "/admin/api/posts/keep-slug", "")
	c.SetParamNames("slug")
	c.SetParamValues("keep-slug")
	if err := a.handleAdminDeletePost(c); err != nil {
		t.Fatalf("handleAdminDeletePost failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	c, _ = adminContext(t, a, http.MethodDelete, "/admin/api/posts/keep-slug", "")
	c.SetParamNames("slug")
	c.SetParamValues("keep-slug")
	if err := a.handleAdminDeletePost(c); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting a missing slug should be ErrNotFound, got %v", err)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	a := testApp(t)
	a.Config.AdminPassword = "correct-horse"
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/admin/login/",
		strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := a.Echo.NewContext(req, httptest.NewRecorder())

	if err := a.handleAdminLogin(c); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password: expected ErrUnauthorized, got %v", err)
	}
}

func TestAdminLoginRateLimited(t *testing.T) {
	a := testApp(t)
	a.Config.AdminPassword = "correct-horse"
	a.loginLimiter = NewLoginLimiter(1, time.Minute)
	a.loginLimiter.Record("192.0.2.1")

	req := httptest.NewRequest(http.MethodPost, "/admin/login/",
		strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "192.0.2.1:4000"
	c := a.Echo.NewContext(req, httptest.NewRecorder())

	err := a.handleAdminLogin(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after exceeding the limit, got %v", err)
	}
}
