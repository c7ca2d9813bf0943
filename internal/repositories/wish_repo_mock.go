package repositories

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bugsCreator/bugscreator-wishes/internal/models"
)

// MockWishRepository is an in-memory implementation of WishRepository.
// It enforces slug uniqueness under its own lock so concurrent allocation
// behaves like a real store with a unique index.
type MockWishRepository struct {
	wishes map[string]models.Wish // keyed by slug
	mu     sync.RWMutex
}

// NewMockWishRepository creates a new instance of MockWishRepository.
func NewMockWishRepository() *MockWishRepository {
	return &MockWishRepository{
		wishes: make(map[string]models.Wish),
	}
}

// FindBySlug returns a wish by its slug.
func (r *MockWishRepository) FindBySlug(slug string) (*models.Wish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wish, ok := r.wishes[slug]
	if !ok {
		return nil, fmt.Errorf("slug %q: %w", slug, ErrNotFound)
	}
	return &wish, nil
}

// CreateUnique stores the wish, rejecting an already-claimed slug.
func (r *MockWishRepository) CreateUnique(wish *models.Wish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.wishes[wish.Slug]; taken {
		return fmt.Errorf("slug %q: %w", wish.Slug, ErrDuplicateSlug)
	}
	if wish.ID == "" {
		wish.ID = uuid.New().String()
	}
	r.wishes[wish.Slug] = *wish
	return nil
}

// ListSlugs returns up to limit slugs in lexical order.
func (r *MockWishRepository) ListSlugs(limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]string, 0, len(r.wishes))
	for slug := range r.wishes {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	if limit > 0 && len(slugs) > limit {
		slugs = slugs[:limit]
	}
	return slugs, nil
}
