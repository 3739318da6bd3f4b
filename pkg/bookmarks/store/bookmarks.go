package store

import (
	"context"

	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"gorm.io/gorm"
)

// BookmarkStore persists bookmarks. Every owner-scoped lookup filters on
// user_id so a foreign bookmark is indistinguishable from a missing one.
type BookmarkStore struct {
	db *gorm.DB
}

// NewBookmarkStore creates a bookmark store backed by db
func NewBookmarkStore(db *gorm.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

// Create inserts bookmark. It returns ErrURLTaken when the URL is already
// bookmarked by anyone and ErrShortCodeTaken when only the code collided.
func (s *BookmarkStore) Create(ctx context.Context, bookmark *models.Bookmark) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := urlTaken(tx, bookmark.URL, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrURLTaken
		}
		return tx.Create(bookmark).Error
	})
	if err != nil && isUniqueViolation(err) {
		return s.conflictFor(ctx, bookmark.URL, 0)
	}
	return err
}

// conflictFor runs after the failed transaction has been rolled back.
func (s *BookmarkStore) conflictFor(ctx context.Context, url string, excludeID uint) error {
	taken, err := urlTaken(s.db.WithContext(ctx), url, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrURLTaken
	}
	return ErrShortCodeTaken
}

func urlTaken(tx *gorm.DB, url string, excludeID uint) (bool, error) {
	query := tx.Model(&models.Bookmark{}).Where("url = ?", url)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetForOwner returns the bookmark with id if ownerID owns it, otherwise ErrNotFound.
func (s *BookmarkStore) GetForOwner(ctx context.Context, ownerID, id uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&bookmark).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &bookmark, nil
}

// UpdateForOwner replaces url and body of an owned bookmark.
// The short code, owner and visit count are never written here.
func (s *BookmarkStore) UpdateForOwner(ctx context.Context, ownerID, id uint, url, body string) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&bookmark).Error; err != nil {
			return notFound(err)
		}
		if url != bookmark.URL {
			taken, err := urlTaken(tx, url, bookmark.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrURLTaken
			}
		}
		if err := tx.Model(&bookmark).Updates(map[string]interface{}{
			"url":  url,
			"body": body,
		}).Error; err != nil {
			return err
		}
		return tx.First(&bookmark, bookmark.ID).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrURLTaken
		}
		return nil, err
	}
	return &bookmark, nil
}

// DeleteForOwner removes an owned bookmark. Deleting a missing or foreign id returns ErrNotFound.
func (s *BookmarkStore) DeleteForOwner(ctx context.Context, ownerID, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns one page of ownerID's bookmarks in creation order,
// along with the total number of bookmarks the owner has.
func (s *BookmarkStore) ListByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]models.Bookmark, int64, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&models.Bookmark{}).Where("user_id = ?", ownerID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	bookmarks := []models.Bookmark{}
	if total == 0 || offset < 0 || int64(offset) >= total {
		return bookmarks, total, nil
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&bookmarks).Error
	if err != nil {
		return nil, 0, err
	}
	return bookmarks, total, nil
}

// AllByOwner returns every bookmark ownerID owns in creation order.
func (s *BookmarkStore) AllByOwner(ctx context.Context, ownerID uint) ([]models.Bookmark, error) {
	bookmarks := []models.Bookmark{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// IncrementVisits atomically bumps the visit counter of the bookmark with code
// and returns the updated record. Unknown codes return ErrNotFound.
func (s *BookmarkStore) IncrementVisits(ctx context.Context, code string) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// UpdateColumn leaves updated_at alone: a visit is not an edit.
		result := tx.Model(&models.Bookmark{}).
			Where("short_code = ?", code).
			UpdateColumn("visits", gorm.Expr("visits + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("short_code = ?", code).First(&bookmark).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &bookmark, nil
}
