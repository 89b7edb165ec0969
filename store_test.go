package folio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func publishedInput(slug, title string, when time.Time) PostInput {
	return PostInput{
		Slug:        slug,
		Title:       title,
		Description: "about " + title,
		Body:        "# " + title + "\n\nbody of " + title,
		Status:      StatusPublished,
		PublishedAt: &when,
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := PostInput{
		Slug:        "test-post",
		Title:       "Test Post",
		Description: "A test post",
		Body:        "# Hello\n\ncontent",
		Status:      StatusPublished,
		Featured:    true,
		Categories:  []string{"Projects"},
		Tags:        []string{"Go", "testing"},
	}
	created, err := s.CreatePost(ctx, in)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if created.ID == "" {
		t.Error("created post should have an ID")
	}
	if created.PublishedAt == nil {
		t.Error("publishing without an explicit date should stamp PublishedAt")
	}

	got, err := s.GetPostBySlug(ctx, "test-post")
	if err != nil {
		t.Fatalf("GetPostBySlug failed: %v", err)
	}
	if got.Title != in.Title {
		t.Errorf("Title = %q, want %q", got.Title, in.Title)
	}
	if got.Body != in.Body {
		t.Errorf("Body = %q, want %q", got.Body, in.Body)
	}
	if !got.Featured {
		t.Error("Featured should be true")
	}
	if got.Link() != "/blog/test-post" {
		t.Errorf("Link = %q, want /blog/test-post", got.Link())
	}
	if len(got.Categories) != 1 || got.Categories[0].Slug != "projects" {
		t.Errorf("Categories = %v, want one with slug projects", got.Categories)
	}
	if len(got.Tags) != 2 {
		t.Errorf("Tags count = %d, want 2", len(got.Tags))
	}
}

func TestCreatePostDraftHasNoPublishedAt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePost(ctx, PostInput{Slug: "draft", Title: "Draft", Status: StatusDraft})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	got, err := s.GetPostBySlug(ctx, "draft")
	if err != nil {
		t.Fatalf("GetPostBySlug failed: %v", err)
	}
	if got.PublishedAt != nil {
		t.Errorf("draft should have nil PublishedAt, got %v", got.PublishedAt)
	}
}

func TestCreatePostValidation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   PostInput
	}{
		{"missing title", PostInput{Slug: "ok-slug", Status: StatusDraft}},
		{"bad slug", PostInput{Slug: "Not A Slug!", Title: "T", Status: StatusDraft}},
		{"bad status", PostInput{Slug: "ok-slug", Title: "T", Status: "archived"}},
	}
	for _, tc := range cases {
		_, err := s.CreatePost(ctx, tc.in)
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			t.Errorf("%s: expected validation.Errors, got %v", tc.name, err)
		}
	}
}

func TestCreatePostSlugConflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, PostInput{Slug: "dup", Title: "First", Status: StatusDraft}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	_, err := s.CreatePost(ctx, PostInput{Slug: "dup", Title: "Second", Status: StatusDraft})
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("expected ErrSlugExists, got %v", err)
	}
}

func TestUpdatePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePost(ctx, PostInput{
		Slug: "original", Title: "Original", Status: StatusPublished,
		Tags: []string{"old"},
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	firstPub := created.PublishedAt

	updated, err := s.UpdatePost(ctx, "original", PostInput{
		Slug: "renamed", Title: "Renamed", Status: StatusPublished,
		Tags: []string{"new", "extra"},
	})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if updated.Slug != "renamed" {
		t.Errorf("Slug = %q, want renamed", updated.Slug)
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(*firstPub) {
		t.Errorf("republishing should keep the original PublishedAt, got %v want %v",
			updated.PublishedAt, firstPub)
	}
	if len(updated.Tags) != 2 {
		t.Errorf("Tags count = %d, want 2 after replacement", len(updated.Tags))
	}

	if _, err := s.GetPostBySlug(ctx, "original"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old slug should be gone, got %v", err)
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.UpdatePost(context.Background(), "missing",
		PostInput{Slug: "missing", Title: "T", Status: StatusDraft})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePostUnpublishClearsDate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, PostInput{Slug: "p", Title: "P", Status: StatusPublished}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	got, err := s.UpdatePost(ctx, "p", PostInput{Slug: "p", Title: "P", Status: StatusDraft})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if got.PublishedAt != nil {
		t.Errorf("unpublished post should have nil PublishedAt, got %v", got.PublishedAt)
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, PostInput{
		Slug: "to-delete", Title: "To Delete", Status: StatusPublished,
		Tags: []string{"x"}, Categories: []string{"y"},
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if err := s.DeletePost(ctx, "to-delete"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPostBySlug(ctx, "to-delete"); !errors.Is(err, ErrNotFound) {
		t.Errorf("post should be gone after delete, got %v", err)
	}
	if err := s.DeletePost(ctx, "to-delete"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestListPostsFilters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seed := []PostInput{
		{Slug: "go-post", Title: "Go Post", Status: StatusPublished,
			Categories: []string{"projects"}, Tags: []string{"go"},
			PublishedAt: timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		{Slug: "rust-post", Title: "Rust Post", Status: StatusPublished,
			Tags:        []string{"rust"},
			PublishedAt: timePtr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))},
		{Slug: "draft-post", Title: "Secret Draft", Status: StatusDraft, Tags: []string{"go"}},
	}
	for _, in := range seed {
		if _, err := s.CreatePost(ctx, in); err != nil {
			t.Fatalf("CreatePost(%s) failed: %v", in.Slug, err)
		}
	}

	published, err := s.ListPosts(ctx, PostFilter{Status: StatusPublished}, SortPublishedDesc, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if published.TotalCount != 2 {
		t.Errorf("published count = %d, want 2", published.TotalCount)
	}
	if published.Items[0].Slug != "rust-post" {
		t.Errorf("newest first: got %s, want rust-post", published.Items[0].Slug)
	}

	byTag, err := s.ListPosts(ctx, PostFilter{Status: StatusPublished, Tag: "go"}, SortPublishedDesc, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts by tag failed: %v", err)
	}
	if byTag.TotalCount != 1 || byTag.Items[0].Slug != "go-post" {
		t.Errorf("tag filter = %v, want just go-post", byTag.Items)
	}

	byCat, err := s.ListPosts(ctx, PostFilter{Category: "projects"}, SortPublishedDesc, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts by category failed: %v", err)
	}
	if byCat.TotalCount != 1 || byCat.Items[0].Slug != "go-post" {
		t.Errorf("category filter = %v, want just go-post", byCat.Items)
	}

	search, err := s.ListPosts(ctx, PostFilter{Search: "rust"}, SortPublishedDesc, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts search failed: %v", err)
	}
	if search.TotalCount != 1 || search.Items[0].Slug != "rust-post" {
		t.Errorf("search filter = %v, want just rust-post", search.Items)
	}

	all, err := s.ListPosts(ctx, PostFilter{}, SortPublishedDesc, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if all.TotalCount != 3 {
		t.Errorf("unfiltered count = %d, want 3 (drafts included)", all.TotalCount)
	}
}

func TestListPostsSortTitle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"banana", "Apple", "cherry"} {
		if _, err := s.CreatePost(ctx, PostInput{
			Slug: Slugify(title), Title: title, Status: StatusPublished,
		}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	got, err := s.ListPosts(ctx, PostFilter{}, SortTitleAsc, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	want := []string{"Apple", "banana", "cherry"}
	for i, w := range want {
		if got.Items[i].Title != w {
			t.Errorf("Items[%d].Title = %q, want %q", i, got.Items[i].Title, w)
		}
	}
}

func TestListPostsPagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		when := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		if _, err := s.CreatePost(ctx, publishedInput(
			Slugify(string(rune('a'+i))+"-post"), string(rune('a'+i))+" post", when)); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	page, err := s.ListPosts(ctx, PostFilter{}, SortPublishedDesc, 2, 2)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if page.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", page.TotalCount)
	}
	if len(page.Items) != 2 {
		t.Errorf("Items = %d, want 2", len(page.Items))
	}
	// newest first; offset 2 skips May and April
	if page.Items[0].Slug != "c-post" {
		t.Errorf("Items[0].Slug = %q, want c-post", page.Items[0].Slug)
	}
}

func TestListCategoriesAndTagsOnlyPublished(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, PostInput{
		Slug: "pub", Title: "Pub", Status: StatusPublished,
		Categories: []string{"Projects"}, Tags: []string{"Go"},
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := s.CreatePost(ctx, PostInput{
		Slug: "dra", Title: "Dra", Status: StatusDraft,
		Categories: []string{"Hidden"}, Tags: []string{"secret"},
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "projects" {
		t.Errorf("Categories = %v, want just projects", cats)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Slug != "go" {
		t.Errorf("Tags = %v, want just go", tags)
	}
}

func TestTermsDedupeBySlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, PostInput{
		Slug: "one", Title: "One", Status: StatusPublished, Tags: []string{"GoLang"},
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := s.CreatePost(ctx, PostInput{
		Slug: "two", Title: "Two", Status: StatusPublished, Tags: []string{"golang"},
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("tags sharing a slug should collapse to one term, got %v", tags)
	}
}

func TestSaveAndGetAuthor(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveAuthor(ctx, Author{Name: "Jane Doe", GitHub: "janedoe"})
	if err != nil {
		t.Fatalf("SaveAuthor failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved author should have an ID")
	}

	saved.Bio = "writes Go"
	again, err := s.SaveAuthor(ctx, saved)
	if err != nil {
		t.Fatalf("SaveAuthor update failed: %v", err)
	}
	if again.ID != saved.ID {
		t.Errorf("upsert should keep the ID, got %q want %q", again.ID, saved.ID)
	}

	got, err := s.GetAuthor(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if got.Bio != "writes Go" {
		t.Errorf("Bio = %q, want updated value", got.Bio)
	}

	// posts referencing the author load it back
	if _, err := s.CreatePost(ctx, PostInput{
		Slug: "by-jane", Title: "By Jane", Status: StatusPublished, AuthorID: saved.ID,
	}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	post, err := s.GetPostBySlug(ctx, "by-jane")
	if err != nil {
		t.Fatalf("GetPostBySlug failed: %v", err)
	}
	if post.Author == nil || post.Author.Name != "Jane Doe" {
		t.Errorf("Author = %v, want Jane Doe", post.Author)
	}
}

func TestMediaRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveMedia(ctx, Media{
		Filename: "photo.jpg", URL: "/public/uploads/photo.jpg",
		Size: 1234, Type: "image/jpeg", Width: 800, Height: 600,
	})
	if err != nil {
		t.Fatalf("SaveMedia failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("saved media should have an ID")
	}

	list, err := s.ListMedia(ctx)
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(list) != 1 || list[0].Filename != "photo.jpg" {
		t.Errorf("ListMedia = %v, want one photo.jpg", list)
	}

	if err := s.DeleteMedia(ctx, "photo.jpg"); err != nil {
		t.Fatalf("DeleteMedia failed: %v", err)
	}
	if err := s.DeleteMedia(ctx, "photo.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteMedia should be ErrNotFound, got %v", err)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
