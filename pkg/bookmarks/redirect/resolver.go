package redirect

import (
	"context"
	"errors"

	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"github.com/mikepea/bookmarks/pkg/bookmarks/shortcode"
	"github.com/mikepea/bookmarks/pkg/bookmarks/store"
)

const msgNotFound = "Item not found"

// VisitCounter bumps a bookmark's visit count by short code
type VisitCounter interface {
	IncrementVisits(ctx context.Context, code string) (*models.Bookmark, error)
}

// Resolver maps short codes to target URLs. Every successful resolution
// counts as one visit, whoever the caller is.
type Resolver struct {
	visits VisitCounter
}

// NewResolver creates a resolver backed by visits
func NewResolver(visits VisitCounter) *Resolver {
	return &Resolver{visits: visits}
}

// Resolve returns the URL for code after recording the visit.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, error) {
	const op = "redirect.Resolve"

	if !shortcode.Valid(code) {
		return "", errx.New(op, errx.NotFound, msgNotFound)
	}

	bookmark, err := r.visits.IncrementVisits(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", errx.New(op, errx.NotFound, msgNotFound)
		}
		return "", errx.E(op, errx.Internal, err)
	}
	return bookmark.URL, nil
}
