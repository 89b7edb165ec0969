package folio

import "context"

// Page is one screenful of a post listing.
type Page struct {
	Items       []Post `json:"items"`
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	TotalPages  int    `json:"total_pages"`
	TotalCount  int    `json:"total_count"`
}

// Listing composes store queries into page-sized result sets.
type Listing struct {
	store    *Store
	pageSize int
}

// NewListing creates a Listing with the given default page size.
func NewListing(s *Store, defaultPageSize int) *Listing {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &Listing{store: s, pageSize: defaultPageSize}
}

// GetPage returns the 1-indexed page of the filtered listing. Page numbers
// below 1 are clamped to 1; pages past the end return an empty slice, not
// an error. With zero matching posts, TotalPages is 0 and Items is empty.
func (l *Listing) GetPage(ctx context.Context, pageNumber, pageSize int, f PostFilter, sort PostSort) (Page, error) {
	if pageSize <= 0 {
		pageSize = l.pageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	offset := (pageNumber - 1) * pageSize

	res, err := l.store.ListPosts(ctx, f, sort, pageSize, offset)
	if err != nil {
		return Page{}, err
	}
	items := res.Items
	if items == nil {
		items = []Post{}
	}
	return Page{
		Items:       items,
		CurrentPage: pageNumber,
		PageSize:    pageSize,
		TotalPages:  (res.TotalCount + pageSize - 1) / pageSize,
		TotalCount:  res.TotalCount,
	}, nil
}
