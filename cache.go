package folio

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory cache of published posts, categories, and tags
// with a TTL. Admin writes call Invalidate so listings and feeds never
// serve stale data past the next read.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	cats    []Category
	tags    []Tag
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.cats = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	page, err := c.store.ListPosts(ctx, PostFilter{Status: StatusPublished}, SortPublishedDesc, 0, 0)
	if err != nil {
		return err
	}
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return err
	}
	posts := page.Items
	if posts == nil {
		posts = []Post{}
	}
	c.posts = posts
	c.cats = cats
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded refreshes the cache if needed. It tries a read lock first;
// only takes a write lock when a reload is due.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]Post, []Category, []Tag, error) {
	c.mu.RLock()
	if c.valid() {
		posts, cats, tags := c.posts, c.cats, c.tags
		c.mu.RUnlock()
		return posts, cats, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, nil, err
	}
	return c.posts, c.cats, c.tags, nil
}

// Posts returns all published posts, newest first.
func (c *PostCache) Posts(ctx context.Context) ([]Post, error) {
	posts, _, _, err := c.ensureLoaded(ctx)
	return posts, err
}

// PostsByCategory returns published posts in the category with the given
// slug, newest first.
func (c *PostCache) PostsByCategory(ctx context.Context, slug string) ([]Post, error) {
	posts, _, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	filtered := []Post{}
	for _, p := range posts {
		for _, cat := range p.Categories {
			if cat.Slug == slug {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// PostsByTag returns published posts carrying the tag with the given slug.
func (c *PostCache) PostsByTag(ctx context.Context, slug string) ([]Post, error) {
	posts, _, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	filtered := []Post{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if t.Slug == slug {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// Categories returns categories attached to published posts.
func (c *PostCache) Categories(ctx context.Context) ([]Category, error) {
	_, cats, _, err := c.ensureLoaded(ctx)
	return cats, err
}

// Tags returns tags attached to published posts.
func (c *PostCache) Tags(ctx context.Context) ([]Tag, error) {
	_, _, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string) (Post, error) {
	posts, _, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}
