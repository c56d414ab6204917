// Package presenter projects repository results into view state a UI layer
// can render without knowing anything about the storage backends.
package presenter

import (
	"context"
	"log/slog"
	"sync"

	"bookshelf/pkg/domain"
	"bookshelf/pkg/stream"
)

// Status is the phase of a view state.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ViewState is the tri-state view model for a single book. Err
// distinguishes "not found" (domain.ErrNotFound) from transport failures,
// so the UI can choose between a retry affordance and a dead end.
type ViewState struct {
	Status Status
	Book   *BookView
	Err    error
}

// BookLoader is the slice of the repository the presenter needs.
type BookLoader interface {
	LoadBook(ctx context.Context, id string) *stream.Subscription[*domain.Book]
}

// BookDetailsPresenter subscribes to one book's live feed and exposes the
// latest view state through an observable single-slot value. State
// persists across subscription restarts until explicitly replaced, and no
// error from the stream ever escapes to the caller.
type BookDetailsPresenter struct {
	loader BookLoader
	log    *slog.Logger
	state  *stream.Value[ViewState]

	mu        sync.Mutex
	currentID string
	current   *stream.Subscription[*domain.Book]
}

// NewBookDetailsPresenter builds a presenter with empty state.
func NewBookDetailsPresenter(loader BookLoader, log *slog.Logger) *BookDetailsPresenter {
	if log == nil {
		log = slog.Default()
	}
	return &BookDetailsPresenter{
		loader: loader,
		log:    log,
		state:  stream.NewValue[ViewState](),
	}
}

// State returns the latest view state, if any has been published.
func (p *BookDetailsPresenter) State() (ViewState, bool) {
	return p.state.Get()
}

// Updates is a conflated channel of view-state changes.
func (p *BookDetailsPresenter) Updates() <-chan ViewState {
	return p.state.Watch()
}

// LoadBook switches the presenter to the given book. Requesting the id
// already being displayed is a no-op: no resubscription, no new LOADING
// emission. Otherwise the previous subscription is cancelled before the
// new one starts, so stale emissions cannot reach a view that moved on.
func (p *BookDetailsPresenter) LoadBook(ctx context.Context, id string) {
	p.mu.Lock()
	if id == p.currentID {
		p.mu.Unlock()
		return
	}
	if p.current != nil {
		p.current.Cancel()
	}
	p.currentID = id
	p.state.Set(ViewState{Status: StatusLoading})
	sub := p.loader.LoadBook(ctx, id)
	p.current = sub
	p.mu.Unlock()

	go p.pump(sub)
}

func (p *BookDetailsPresenter) pump(sub *stream.Subscription[*domain.Book]) {
	for book := range sub.C() {
		if !p.isCurrent(sub) {
			return
		}
		if book == nil {
			p.state.Set(ViewState{Status: StatusError, Err: domain.ErrNotFound})
			continue
		}
		view := FromDomain(*book)
		p.state.Set(ViewState{Status: StatusSuccess, Book: &view})
	}
	err := sub.Err()
	if err == nil || !p.isCurrent(sub) {
		return
	}
	p.log.Debug("book feed failed", "error", err)
	p.state.Set(ViewState{Status: StatusError, Err: err})
}

func (p *BookDetailsPresenter) isCurrent(sub *stream.Subscription[*domain.Book]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current == sub
}

// Close detaches the active feed. The last published state remains
// observable.
func (p *BookDetailsPresenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.Cancel()
		p.current = nil
	}
	p.currentID = ""
}
