package presenter

import "bookshelf/pkg/domain"

// BookView is the display binding a UI layer renders directly.
type BookView struct {
	ID         string
	Title      string
	Author     string
	Available  bool
	Pages      int
	Year       int
	Rating     float32
	MediaLabel string
	Publisher  string
	CoverURL   string
}

// FromDomain converts a domain book into its display binding.
func FromDomain(b domain.Book) BookView {
	return BookView{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Available:  b.Available,
		Pages:      b.Pages,
		Year:       b.Year,
		Rating:     b.Rating,
		MediaLabel: mediaLabel(b.MediaType),
		Publisher:  b.Publisher.Name,
		CoverURL:   b.CoverURL,
	}
}

func mediaLabel(t domain.MediaType) string {
	switch t {
	case domain.MediaEbook:
		return "E-book"
	default:
		return "Paper"
	}
}
