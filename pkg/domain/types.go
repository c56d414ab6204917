package domain

import "strings"

// MediaType distinguishes physical and electronic editions.
type MediaType string

const (
	MediaPaper MediaType = "paper"
	MediaEbook MediaType = "ebook"
)

// Publisher is the imprint a book was released under.
type Publisher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Book is a catalog entry owned by a single user.
//
// An empty ID means the book has not been persisted yet; the store assigns
// the ID exactly once, on first save. UserID is always taken from the
// authenticated session, never from caller input. CoverURL is either a
// remote download URL or a file:// reference to a local image that still
// needs uploading.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Available bool      `json:"available"`
	Pages     int       `json:"pages"`
	Year      int       `json:"year"`
	Rating    float32   `json:"rating"`
	MediaType MediaType `json:"mediaType"`
	Publisher Publisher `json:"publisher"`
	CoverURL  string    `json:"coverUrl"`
	UserID    string    `json:"userId"`
}

// LocalCoverScheme marks a cover image that lives on the local filesystem
// and has not been uploaded yet.
const LocalCoverScheme = "file://"

// HasPendingCover reports whether the cover still points at a local file.
func (b Book) HasPendingCover() bool {
	return strings.HasPrefix(b.CoverURL, LocalCoverScheme)
}

// LocalCoverPath strips the file:// scheme from a pending cover reference.
func (b Book) LocalCoverPath() string {
	return strings.TrimPrefix(b.CoverURL, LocalCoverScheme)
}
