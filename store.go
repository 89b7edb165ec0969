package folio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides CRUD operations for posts,
// authors, categories, tags, and media. Concurrent writes to the same slug
// are resolved last-write-wins; every mutation runs in a transaction that
// also covers the join tables, so readers never observe a post with
// half-updated associations.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS authors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    bio TEXT NOT NULL DEFAULT '',
    twitter TEXT NOT NULL DEFAULT '',
    github TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
    featured INTEGER NOT NULL DEFAULT 0,
    author_id TEXT REFERENCES authors(id),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    published_at TEXT
);
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS post_categories (
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    PRIMARY KEY (post_id, category_id)
);
CREATE TABLE IF NOT EXISTS post_tags (
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (post_id, tag_id)
);
CREATE TABLE IF NOT EXISTS media (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL UNIQUE,
    url TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    type TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_status_published ON posts(status, published_at);
`)
	return err
}

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Status   PostStatus // exact status match
	Category string     // category slug membership
	Tag      string     // tag slug membership
	Search   string     // substring match on title or description
}

// PostSort selects the listing order.
type PostSort int

const (
	// SortPublishedDesc orders newest published first; drafts (no publish
	// date) sort last by creation date. This is the default.
	SortPublishedDesc PostSort = iota
	// SortTitleAsc orders by title, case-insensitive.
	SortTitleAsc
)

// PostPage is one slice of a filtered listing together with the total
// number of matching posts, so callers can compute page counts.
type PostPage struct {
	Items      []Post
	TotalCount int
}

// PostInput is the payload for creating or updating a post. Slug must be
// URL-safe; handlers derive it from the title when the client omits it.
type PostInput struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body"`
	Status      PostStatus `json:"status"`
	Featured    bool       `json:"featured"`
	AuthorID    string     `json:"author_id"`
	Categories  []string   `json:"categories"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validate checks the input before any row is touched.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 500)),
		validation.Field(&in.Status, validation.Required, validation.In(StatusDraft, StatusPublished)),
	)
}

const timeFormat = time.RFC3339

func buildPostFilter(f PostFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, string(f.Status))
	}
	if f.Category != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = p.id AND c.slug = ?)`)
		args = append(args, f.Category)
	}
	if f.Tag != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = ?)`)
		args = append(args, f.Tag)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		conds = append(conds, `(p.title LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

const postColumns = `p.id, p.slug, p.title, p.description, p.body, p.status,
	p.featured, p.author_id, p.created_at, p.updated_at, p.published_at`

// ListPosts returns the filtered, sorted slice [offset, offset+limit) plus
// the total match count. limit <= 0 means no limit.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, sort PostSort, limit, offset int) (PostPage, error) {
	where, args := buildPostFilter(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts p"+where, args...).Scan(&total); err != nil {
		return PostPage{}, fmt.Errorf("store: count posts: %w", err)
	}
	if total == 0 {
		return PostPage{}, nil
	}

	order := " ORDER BY p.published_at IS NULL, p.published_at DESC, p.created_at DESC"
	if sort == SortTitleAsc {
		order = " ORDER BY p.title COLLATE NOCASE ASC"
	}
	q := "SELECT " + postColumns + " FROM posts p" + where + order
	if limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return PostPage{}, fmt.Errorf("store: list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return PostPage{}, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return PostPage{}, fmt.Errorf("store: list posts: %w", err)
	}
	if err := s.loadRelations(ctx, posts); err != nil {
		return PostPage{}, err
	}
	return PostPage{Items: posts, TotalCount: total}, nil
}

// GetPostBySlug returns a single post with its author, categories, and
// tags. Returns ErrNotFound when the slug does not exist.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.slug = ?", slug)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	posts := []Post{p}
	if err := s.loadRelations(ctx, posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// CreatePost inserts a new post and its category/tag associations in one
// transaction. Publishing a post with no explicit publish date stamps it
// with the current time, keeping the published-implies-timestamp invariant.
func (s *Store) CreatePost(ctx context.Context, in PostInput) (Post, error) {
	if err := in.Validate(); err != nil {
		return Post{}, err
	}
	now := time.Now().UTC()
	pub := publishedAt(in, nil, now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Post{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO posts
		(id, slug, title, description, body, status, featured, author_id, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Slug, in.Title, in.Description, in.Body, string(in.Status), boolInt(in.Featured),
		nullString(in.AuthorID), now.Format(timeFormat), now.Format(timeFormat), nullTime(pub))
	if err != nil {
		if isUniqueViolation(err) {
			return Post{}, ErrSlugExists
		}
		return Post{}, fmt.Errorf("store: insert post: %w", err)
	}
	if err := s.saveTerms(ctx, tx, id, in.Categories, in.Tags); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, fmt.Errorf("store: commit: %w", err)
	}
	return s.GetPostBySlug(ctx, in.Slug)
}

// UpdatePost replaces the post identified by slug with the given input,
// including its associations, atomically. Concurrent updates to the same
// slug are last-write-wins. Returns ErrNotFound for a missing slug.
func (s *Store) UpdatePost(ctx context.Context, slug string, in PostInput) (Post, error) {
	if err := in.Validate(); err != nil {
		return Post{}, err
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Post{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	var prevPub sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT id, published_at FROM posts WHERE slug = ?", slug).Scan(&id, &prevPub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, fmt.Errorf("store: find post: %w", err)
	}

	var existing *time.Time
	if prevPub.Valid {
		if t, err := time.Parse(timeFormat, prevPub.String); err == nil {
			existing = &t
		}
	}
	pub := publishedAt(in, existing, now)

	_, err = tx.ExecContext(ctx, `UPDATE posts SET
		slug = ?, title = ?, description = ?, body = ?, status = ?, featured = ?,
		author_id = ?, updated_at = ?, published_at = ?
		WHERE id = ?`,
		in.Slug, in.Title, in.Description, in.Body, string(in.Status), boolInt(in.Featured),
		nullString(in.AuthorID), now.Format(timeFormat), nullTime(pub), id)
	if err != nil {
		if isUniqueViolation(err) {
			return Post{}, ErrSlugExists
		}
		return Post{}, fmt.Errorf("store: update post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_categories WHERE post_id = ?", id); err != nil {
		return Post{}, fmt.Errorf("store: clear categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = ?", id); err != nil {
		return Post{}, fmt.Errorf("store: clear tags: %w", err)
	}
	if err := s.saveTerms(ctx, tx, id, in.Categories, in.Tags); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, fmt.Errorf("store: commit: %w", err)
	}
	return s.GetPostBySlug(ctx, in.Slug)
}

// DeletePost hard-removes a post and its join rows in one transaction.
// Returns ErrNotFound when the slug does not exist, so callers can tell
// "already gone" from "deleted".
func (s *Store) DeletePost(ctx context.Context, slug string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM posts WHERE slug = ?", slug).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("store: find post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_categories WHERE post_id = ?", id); err != nil {
		return fmt.Errorf("store: delete categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = ?", id); err != nil {
		return fmt.Errorf("store: delete tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id); err != nil {
		return fmt.Errorf("store: delete post: %w", err)
	}
	return tx.Commit()
}

// publishedAt resolves the publish timestamp for a write: explicit input
// wins, then the previous value, then now. Drafts never carry one.
func publishedAt(in PostInput, existing *time.Time, now time.Time) *time.Time {
	if in.Status != StatusPublished {
		return nil
	}
	if in.PublishedAt != nil {
		t := in.PublishedAt.UTC()
		return &t
	}
	if existing != nil {
		return existing
	}
	return &now
}

// saveTerms resolves category and tag names to rows (creating missing
// ones, keyed by slug) and writes the join rows, all inside tx.
func (s *Store) saveTerms(ctx context.Context, tx *sql.Tx, postID string, categories, tags []string) error {
	catIDs, err := upsertTerms(ctx, tx, "categories", categories)
	if err != nil {
		return err
	}
	for _, cid := range catIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO post_categories (post_id, category_id) VALUES (?, ?)", postID, cid); err != nil {
			return fmt.Errorf("store: link category: %w", err)
		}
	}
	tagIDs, err := upsertTerms(ctx, tx, "tags", tags)
	if err != nil {
		return err
	}
	for _, tid := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)", postID, tid); err != nil {
			return fmt.Errorf("store: link tag: %w", err)
		}
	}
	return nil
}

func upsertTerms(ctx context.Context, tx *sql.Tx, table string, names []string) ([]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := Slugify(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		var id string
		err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE slug = ?", slug).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			id = uuid.NewString()
			_, err = tx.ExecContext(ctx,
				"INSERT INTO "+table+" (id, name, slug, description) VALUES (?, ?, ?, '')", id, name, slug)
		}
		if err != nil {
			return nil, fmt.Errorf("store: upsert %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListCategories returns categories attached to at least one published
// post, ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.name, c.slug, c.description FROM categories c
		WHERE EXISTS (SELECT 1 FROM post_categories pc JOIN posts p ON p.id = pc.post_id
			WHERE pc.category_id = c.id AND p.status = 'published')
		ORDER BY c.name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ListTags returns tags attached to at least one published post, ordered
// by name.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.name, t.slug, t.description FROM tags t
		WHERE EXISTS (SELECT 1 FROM post_tags pt JOIN posts p ON p.id = pt.post_id
			WHERE pt.tag_id = t.id AND p.status = 'published')
		ORDER BY t.name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("store: list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Description); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SaveAuthor upserts an author, assigning an id when missing.
func (s *Store) SaveAuthor(ctx context.Context, a Author) (Author, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if strings.TrimSpace(a.Name) == "" {
		return Author{}, validation.Errors{"name": errors.New("cannot be blank")}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO authors (id, name, image, bio, twitter, github)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, image = excluded.image,
			bio = excluded.bio, twitter = excluded.twitter, github = excluded.github`,
		a.ID, a.Name, a.Image, a.Bio, a.Twitter, a.GitHub)
	if err != nil {
		return Author{}, fmt.Errorf("store: save author: %w", err)
	}
	return a, nil
}

// GetAuthor returns an author by id, or ErrNotFound.
func (s *Store) GetAuthor(ctx context.Context, id string) (Author, error) {
	var a Author
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, image, bio, twitter, github FROM authors WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.Image, &a.Bio, &a.Twitter, &a.GitHub)
	if errors.Is(err, sql.ErrNoRows) {
		return Author{}, ErrNotFound
	}
	if err != nil {
		return Author{}, fmt.Errorf("store: get author: %w", err)
	}
	return a, nil
}

// --- row scanning and relation loading ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (Post, error) {
	var p Post
	var status string
	var featured int
	var authorID, published sql.NullString
	var created, updated string
	if err := r.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Body, &status,
		&featured, &authorID, &created, &updated, &published); err != nil {
		return Post{}, err
	}
	p.Status = PostStatus(status)
	p.Featured = featured == 1
	if authorID.Valid {
		p.Author = &Author{ID: authorID.String}
	}
	var err error
	if p.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
		return Post{}, fmt.Errorf("store: bad created_at for %s: %w", p.Slug, err)
	}
	if p.UpdatedAt, err = time.Parse(timeFormat, updated); err != nil {
		return Post{}, fmt.Errorf("store: bad updated_at for %s: %w", p.Slug, err)
	}
	if published.Valid {
		t, err := time.Parse(timeFormat, published.String)
		if err != nil {
			return Post{}, fmt.Errorf("store: bad published_at for %s: %w", p.Slug, err)
		}
		p.PublishedAt = &t
	}
	return p, nil
}

// loadRelations attaches categories, tags, and authors to the given posts
// with one batched query per relation.
func (s *Store) loadRelations(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]*Post, len(posts))
	ids := make([]any, 0, len(posts))
	for i := range posts {
		posts[i].Categories = []Category{}
		posts[i].Tags = []Tag{}
		index[posts[i].ID] = &posts[i]
		ids = append(ids, posts[i].ID)
	}
	ph := placeholders(len(ids))

	rows, err := s.db.QueryContext(ctx, `SELECT pc.post_id, c.id, c.name, c.slug, c.description
		FROM post_categories pc JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id IN (`+ph+`) ORDER BY c.name COLLATE NOCASE`, ids...)
	if err != nil {
		return fmt.Errorf("store: load categories: %w", err)
	}
	for rows.Next() {
		var postID string
		var c Category
		if err := rows.Scan(&postID, &c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			rows.Close()
			return err
		}
		if p, ok := index[postID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT pt.post_id, t.id, t.name, t.slug, t.description
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+ph+`) ORDER BY t.name COLLATE NOCASE`, ids...)
	if err != nil {
		return fmt.Errorf("store: load tags: %w", err)
	}
	for rows.Next() {
		var postID string
		var t Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.Description); err != nil {
			rows.Close()
			return err
		}
		if p, ok := index[postID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	authorIDs := make([]any, 0)
	seen := make(map[string]struct{})
	for i := range posts {
		if posts[i].Author != nil {
			if _, ok := seen[posts[i].Author.ID]; !ok {
				seen[posts[i].Author.ID] = struct{}{}
				authorIDs = append(authorIDs, posts[i].Author.ID)
			}
		}
	}
	if len(authorIDs) == 0 {
		return nil
	}
	rows, err = s.db.QueryContext(ctx, `SELECT id, name, image, bio, twitter, github
		FROM authors WHERE id IN (`+placeholders(len(authorIDs))+`)`, authorIDs...)
	if err != nil {
		return fmt.Errorf("store: load authors: %w", err)
	}
	defer rows.Close()
	authors := make(map[string]Author)
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Image, &a.Bio, &a.Twitter, &a.GitHub); err != nil {
			return err
		}
		authors[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range posts {
		if posts[i].Author != nil {
			if a, ok := authors[posts[i].Author.ID]; ok {
				posts[i].Author = &a
			}
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeFormat)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
