package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bugsCreator/bugscreator-wishes/internal/models"
)

// GORMWishRepository is a GORM implementation of WishRepository.
type GORMWishRepository struct {
	db *gorm.DB
}

// NewGORMWishRepository creates a new instance of GORMWishRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func NewGORMWishRepository(db *gorm.DB) *GORMWishRepository {
	return &GORMWishRepository{
		db: db,
	}
}

// FindBySlug retrieves a single wish by its slug.
func (r *GORMWishRepository) FindBySlug(slug string) (*models.Wish, error) {
	var wish models.Wish
	if err := r.db.First(&wish, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("slug %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wish by slug %q: %w", slug, err)
	}
	return &wish, nil
}

// CreateUnique inserts the wish, relying on the slug unique index to reject
// a concurrent writer that claimed the same slug first.
func (r *GORMWishRepository) CreateUnique(wish *models.Wish) error {
	if wish.ID == "" {
		wish.ID = uuid.New().String()
	}
	if err := r.db.Create(wish).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("slug %q: %w", wish.Slug, ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to create wish: %w", err)
	}
	return nil
}

// ListSlugs returns up to limit slugs, newest first. Used by the sitemap.
func (r *GORMWishRepository) ListSlugs(limit int) ([]string, error) {
	var slugs []string
	err := r.db.Model(&models.Wish{}).
		Order("created_at DESC").
		Limit(limit).
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slugs: %w", err)
	}
	return slugs, nil
}
