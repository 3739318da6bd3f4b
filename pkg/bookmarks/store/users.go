package store

import (
	"context"

	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"gorm.io/gorm"
)

// UserStore is the credential store.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store backed by db
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts user. A duplicate email or username yields ErrEmailTaken or ErrUsernameTaken,
// whether it was caught by the pre-check or by the unique index under a concurrent insert.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserAvailable(tx, user.Email, user.Username); err != nil {
			return err
		}
		return tx.Create(user).Error
	})
	if err != nil && isUniqueViolation(err) {
		return s.conflictFor(ctx, user)
	}
	return err
}

// conflictFor works out which unique column a failed insert collided on.
// It runs outside the failed transaction, which postgres has already aborted.
func (s *UserStore) conflictFor(ctx context.Context, user *models.User) error {
	if err := checkUserAvailable(s.db.WithContext(ctx), user.Email, user.Username); err != nil {
		return err
	}
	return ErrEmailTaken
}

func checkUserAvailable(tx *gorm.DB, email, username string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}

// GetByEmail returns the user with email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByID returns the user with id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
