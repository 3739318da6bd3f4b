package bookmarks

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"github.com/mikepea/bookmarks/pkg/bookmarks/shortcode"
	"github.com/mikepea/bookmarks/pkg/bookmarks/store"
)

const (
	MaxURLLength            = 2048
	DefaultShortCodeRetries = 5

	msgNotFound   = "Item not found"
	msgInvalidURL = "Enter a valid url"
	msgURLExists  = "URL already exists"
)

// Repository is the bookmark store the service depends on
type Repository interface {
	Create(ctx context.Context, bookmark *models.Bookmark) error
	GetForOwner(ctx context.Context, ownerID, id uint) (*models.Bookmark, error)
	UpdateForOwner(ctx context.Context, ownerID, id uint, url, body string) (*models.Bookmark, error)
	DeleteForOwner(ctx context.Context, ownerID, id uint) error
	ListByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]models.Bookmark, int64, error)
	AllByOwner(ctx context.Context, ownerID uint) ([]models.Bookmark, error)
}

// Stat is the per-bookmark visit summary
type Stat struct {
	ID        uint
	URL       string
	ShortCode string
	Visits    uint
}

// Service enforces ownership and validation for bookmark operations
type Service struct {
	repo    Repository
	codes   shortcode.Generator
	retries int
}

// NewService creates a bookmark service. A nil generator defaults to base62 codes.
func NewService(repo Repository, codes shortcode.Generator) *Service {
	if codes == nil {
		codes = shortcode.NewBase62(shortcode.DefaultLength)
	}
	return &Service{
		repo:    repo,
		codes:   codes,
		retries: DefaultShortCodeRetries,
	}
}

// Create validates rawURL and stores a new bookmark with a fresh short code.
// Code collisions are retried; a URL bookmarked by anyone is a conflict.
func (s *Service) Create(ctx context.Context, ownerID uint, rawURL, body string) (*models.Bookmark, error) {
	const op = "bookmarks.Create"

	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		return nil, errx.New(op, errx.Invalid, msgInvalidURL)
	}

	for range s.retries {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}

		bookmark := &models.Bookmark{
			UserID:    ownerID,
			URL:       rawURL,
			ShortCode: code,
			Body:      body,
		}
		err = s.repo.Create(ctx, bookmark)
		switch {
		case err == nil:
			return bookmark, nil
		case errors.Is(err, store.ErrURLTaken):
			return nil, errx.New(op, errx.Conflict, msgURLExists)
		case errors.Is(err, store.ErrShortCodeTaken):
			continue
		default:
			return nil, errx.E(op, errx.Internal, err)
		}
	}

	return nil, errx.New(op, errx.Internal, "could not generate a unique short code")
}

// List returns one page of the owner's bookmarks in creation order.
// Pages past the end are empty rather than an error.
func (s *Service) List(ctx context.Context, ownerID uint, page, perPage int) (Page, error) {
	const op = "bookmarks.List"

	page, perPage = normalizePage(page, perPage)
	items, total, err := s.repo.ListByOwner(ctx, ownerID, pageOffset(page, perPage), perPage)
	if err != nil {
		return Page{}, errx.E(op, errx.Internal, err)
	}
	return Page{
		Items: items,
		Meta:  newMeta(page, perPage, total),
	}, nil
}

// Get returns an owned bookmark. Missing and foreign ids look the same.
func (s *Service) Get(ctx context.Context, ownerID, id uint) (*models.Bookmark, error) {
	const op = "bookmarks.Get"

	bookmark, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	return bookmark, nil
}

// Update replaces url and body of an owned bookmark. The short code and
// visit count are left untouched.
func (s *Service) Update(ctx context.Context, ownerID, id uint, rawURL, body string) (*models.Bookmark, error) {
	const op = "bookmarks.Update"

	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		return nil, errx.New(op, errx.Invalid, msgInvalidURL)
	}

	bookmark, err := s.repo.UpdateForOwner(ctx, ownerID, id, rawURL, body)
	if err != nil {
		return nil, storeError(op, err)
	}
	return bookmark, nil
}

// Delete removes an owned bookmark. Deleting twice is NotFound the second time.
func (s *Service) Delete(ctx context.Context, ownerID, id uint) error {
	const op = "bookmarks.Delete"

	if err := s.repo.DeleteForOwner(ctx, ownerID, id); err != nil {
		return storeError(op, err)
	}
	return nil
}

// Stats returns the visit counts of every bookmark the owner has.
func (s *Service) Stats(ctx context.Context, ownerID uint) ([]Stat, error) {
	const op = "bookmarks.Stats"

	all, err := s.repo.AllByOwner(ctx, ownerID)
	if err != nil {
		return nil, errx.E(op, errx.Internal, err)
	}
	stats := make([]Stat, len(all))
	for i, b := range all {
		stats[i] = Stat{
			ID:        b.ID,
			URL:       b.URL,
			ShortCode: b.ShortCode,
			Visits:    b.Visits,
		}
	}
	return stats, nil
}

// pageOffset saturates instead of overflowing, so huge pages land past the end.
func pageOffset(page, perPage int) int {
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

func storeError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errx.New(op, errx.NotFound, msgNotFound)
	case errors.Is(err, store.ErrURLTaken):
		return errx.New(op, errx.Conflict, msgURLExists)
	default:
		return errx.E(op, errx.Internal, err)
	}
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return errors.New("url too long")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" || strings.ContainsAny(parsedURL.Host, " \t") {
		return errors.New("url must include host")
	}
	return nil
}
