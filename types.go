package folio

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Post is the core content type stored in SQLite. A published post always
// carries a non-nil PublishedAt; drafts never appear on public surfaces.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body,omitempty"`
	Status      PostStatus `json:"status"`
	Featured    bool       `json:"featured"`
	Author      *Author    `json:"author,omitempty"`
	Categories  []Category `json:"categories"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Link returns the site-relative path of the post page.
func (p Post) Link() string {
	return "/blog/" + p.Slug
}

// Author is referenced by posts, never embedded in them.
type Author struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	GitHub  string `json:"github,omitempty"`
}

// Category groups posts by topic area. Slug is unique among categories.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form label. Slug is unique among tags.
type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Media is an uploaded file tracked in the media table. The bytes live on
// disk under the uploads directory; URL is the public path.
type Media struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
