// Package books orchestrates the document store, blob store, and identity
// provider into the book lifecycle: save (with conditional cover upload),
// live loading, and removal.
package books

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bookshelf/pkg/blob"
	"bookshelf/pkg/docstore"
	"bookshelf/pkg/domain"
	"bookshelf/pkg/identity"
	"bookshelf/pkg/stream"
)

// Collection is the document collection holding book records.
const Collection = "books"

const (
	fieldID       = "id"
	fieldUserID   = "userId"
	fieldCoverURL = "coverUrl"
)

// Repository composes the storage boundaries into domain-level operations.
// It owns the decision of when a cover photo needs (re-)uploading.
type Repository struct {
	docs   docstore.Store
	blobs  blob.Store
	ident  identity.Provider
	covers *CoverProcessor
	log    *slog.Logger
}

// NewRepository wires a repository over the given boundaries.
func NewRepository(docs docstore.Store, blobs blob.Store, ident identity.Provider, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{
		docs:   docs,
		blobs:  blobs,
		ident:  ident,
		covers: NewCoverProcessor(),
		log:    log,
	}
}

// SetCoverProcessor overrides the default cover pipeline settings.
func (r *Repository) SetCoverProcessor(p *CoverProcessor) {
	if p != nil {
		r.covers = p
	}
}

// Save persists the book. A book without an id is created and receives the
// id the store allocates, exactly once; a book with an id is merge-upserted.
// If the cover still points at a local file it is compressed, uploaded
// keyed by the book id, and the document's coverUrl is patched to the
// remote URL; only then is the local file removed. Document write failures
// surface as ErrSaveFailed, cover pipeline failures as ErrCoverUpload —
// the record itself may already be durably saved when the latter fires.
func (r *Repository) Save(ctx context.Context, book *domain.Book) error {
	userID, ok := r.ident.CurrentUserID()
	if !ok {
		return domain.ErrUnauthorized
	}

	if book.ID == "" {
		id, err := r.docs.CreateOrMerge(ctx, Collection, "", toDocument(*book))
		if err != nil {
			return fmt.Errorf("create book: %w: %v", domain.ErrSaveFailed, err)
		}
		book.ID = id
		book.UserID = userID
		// Second write: the stored document must carry the allocated id
		// and the session's owner identity.
		_, err = r.docs.CreateOrMerge(ctx, Collection, id, docstore.Document{
			fieldID:     id,
			fieldUserID: userID,
		})
		if err != nil {
			return fmt.Errorf("assign book identity: %w: %v", domain.ErrSaveFailed, err)
		}
	} else {
		book.UserID = userID
		if _, err := r.docs.CreateOrMerge(ctx, Collection, book.ID, toDocument(*book)); err != nil {
			return fmt.Errorf("update book %s: %w: %v", book.ID, domain.ErrSaveFailed, err)
		}
	}

	if book.HasPendingCover() {
		if err := r.uploadCover(ctx, book); err != nil {
			return err
		}
	}
	r.log.Debug("book saved", "id", book.ID)
	return nil
}

// uploadCover runs strictly after the document write: it needs the
// allocated id for the blob key.
func (r *Repository) uploadCover(ctx context.Context, book *domain.Book) error {
	local := book.LocalCoverPath()
	if err := r.covers.Compress(local); err != nil {
		return fmt.Errorf("compress cover: %w: %v", domain.ErrCoverUpload, err)
	}

	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("open cover: %w: %v", domain.ErrCoverUpload, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat cover: %w: %v", domain.ErrCoverUpload, err)
	}
	url, err := r.blobs.Upload(ctx, CoverKey(book.ID), f, info.Size(), "image/jpeg")
	f.Close()
	if err != nil {
		return fmt.Errorf("upload cover: %w: %w: %v", domain.ErrCoverUpload, domain.ErrUploadFailed, err)
	}

	if _, err := r.docs.CreateOrMerge(ctx, Collection, book.ID, docstore.Document{fieldCoverURL: url}); err != nil {
		return fmt.Errorf("record cover url: %w: %v", domain.ErrCoverUpload, err)
	}
	book.CoverURL = url

	// The local file goes away only after the remote URL is durably
	// recorded in the document.
	if err := os.Remove(local); err != nil {
		r.log.Warn("stale local cover left behind", "path", local, "error", err)
	}
	return nil
}

// LoadBooks is a live list of all books owned by the current session's
// user. With no session the owner filter matches nothing, so the stream
// emits an empty list rather than failing.
func (r *Repository) LoadBooks(ctx context.Context) *stream.Subscription[[]domain.Book] {
	userID, _ := r.ident.CurrentUserID()
	src := r.docs.SubscribeCollection(ctx, Collection, fieldUserID, userID)

	out := stream.NewConflated[[]domain.Book]()
	go func() {
		for docs := range src.C() {
			list := make([]domain.Book, 0, len(docs))
			for _, d := range docs {
				b, err := bookFromDocument("", d)
				if err != nil {
					src.Cancel()
					out.Fail(fmt.Errorf("decode book list: %w", err))
					return
				}
				list = append(list, b)
			}
			out.Send(list)
		}
		if err := src.Err(); err != nil {
			out.Fail(err)
			return
		}
		out.Close()
	}()
	return stream.NewSubscription(out, src.Cancel)
}

// LoadBook is a live single-book feed. A nil emission means the book does
// not exist or has been deleted.
func (r *Repository) LoadBook(ctx context.Context, id string) *stream.Subscription[*domain.Book] {
	src := r.docs.SubscribeDocument(ctx, Collection, id)

	out := stream.NewConflated[*domain.Book]()
	go func() {
		for snap := range src.C() {
			if !snap.Exists {
				out.Send(nil)
				continue
			}
			b, err := bookFromDocument(id, snap.Data)
			if err != nil {
				src.Cancel()
				out.Fail(fmt.Errorf("decode book %s: %w", id, err))
				return
			}
			out.Send(&b)
		}
		if err := src.Err(); err != nil {
			out.Fail(err)
			return
		}
		out.Close()
	}()
	return stream.NewSubscription(out, src.Cancel)
}

// Remove deletes the book document and, when a cover URL is recorded, the
// associated blob. A blob-delete failure fails the call even though the
// document is already gone.
func (r *Repository) Remove(ctx context.Context, book domain.Book) error {
	if err := r.docs.Delete(ctx, Collection, book.ID); err != nil {
		return fmt.Errorf("remove book %s: %w", book.ID, err)
	}
	if book.CoverURL != "" {
		if err := r.blobs.Delete(ctx, CoverKey(book.ID)); err != nil {
			return fmt.Errorf("remove cover %s: %w: %v", book.ID, domain.ErrStoreUnavailable, err)
		}
	}
	r.log.Debug("book removed", "id", book.ID)
	return nil
}

// CoverKey is the blob key for a book's cover image.
func CoverKey(bookID string) string {
	return Collection + "/" + bookID
}
