package repositories

import (
	"errors"

	"github.com/bugsCreator/bugscreator-wishes/internal/models"
)

var (
	// ErrNotFound is returned when no wish exists under the requested slug.
	ErrNotFound = errors.New("wish not found")
	// ErrDuplicateSlug is returned by CreateUnique when the slug is already
	// taken. The store's uniqueness constraint is the authority; callers
	// treat this as a retryable collision.
	ErrDuplicateSlug = errors.New("slug already exists")
)

// WishRepository defines the interface for wish data access.
type WishRepository interface {
	FindBySlug(slug string) (*models.Wish, error)
	CreateUnique(wish *models.Wish) error
	ListSlugs(limit int) ([]string, error)
}
