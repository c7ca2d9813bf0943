package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/bugsCreator/bugscreator-wishes/internal/models"
	"github.com/bugsCreator/bugscreator-wishes/internal/repositories"
	"github.com/bugsCreator/bugscreator-wishes/internal/wish"
)

// MaxImageBytes bounds the decoded size of an attached image (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

// maxSlugProbes caps the suffix probe sequence. When every candidate up to
// base-1000 is taken the request fails instead of risking a duplicate slug.
const maxSlugProbes = 1000

var (
	ErrNameRequired       = errors.New("name is required")
	ErrImageNotDataURL    = errors.New("only data URLs supported when not using multipart")
	ErrImageTooLarge      = errors.New("image too large (max 5MB)")
	ErrSlugSpaceExhausted = errors.New("no free slug found for base")
)

// EventPublisher publishes wish lifecycle events. *rabbitmq.Client
// satisfies it; a nil publisher disables events.
type EventPublisher interface {
	PublishWishCreated(event map[string]interface{}) error
}

// CreateWishInput carries the raw creation request after transport-level
// decoding. ImageDataURL, when set, must be a data: URL (the handler
// converts an uploaded file into one before calling the service).
type CreateWishInput struct {
	Name         string
	Tone         string
	Emoji        string
	From         string
	Notes        string
	DesiredSlug  string
	ImageDataURL string
}

// WishService handles business logic for creating and reading wishes.
type WishService struct {
	repo      repositories.WishRepository
	publisher EventPublisher
}

// NewWishService creates a new WishService. publisher may be nil.
func NewWishService(repo repositories.WishRepository, publisher EventPublisher) *WishService {
	return &WishService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetWishBySlug retrieves a single wish by its slug.
func (s *WishService) GetWishBySlug(slug string) (*models.Wish, error) {
	return s.repo.FindBySlug(slug)
}

// ListSlugs returns up to limit stored slugs, for sitemap generation.
func (s *WishService) ListSlugs(limit int) ([]string, error) {
	return s.repo.ListSlugs(limit)
}

// CreateWish validates the input, composes the message text once, reserves
// a unique slug and persists the record. The slug is probed sequentially
// (base, base-1, base-2, ...); the pre-check via FindBySlug only skips
// obviously taken candidates, the store's unique index is the authority.
// A duplicate-key rejection from the store advances the suffix and retries,
// so two concurrent requests with the same base both succeed with distinct
// slugs.
func (s *WishService) CreateWish(in CreateWishInput) (*models.Wish, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	tone := wish.NormalizeTone(in.Tone)
	emoji := in.Emoji
	if emoji == "" {
		emoji = wish.DefaultEmoji
	}
	from := strings.TrimSpace(in.From)

	content := wish.Generate(name, wish.Options{Tone: tone, Emoji: emoji, From: from})

	base := wish.DeriveSlugBase(in.DesiredSlug, name)
	for attempt := 0; attempt <= maxSlugProbes; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		if _, err := s.repo.FindBySlug(slug); err == nil {
			continue // taken, try next suffix
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to check slug %q: %w", slug, err)
		}

		record := &models.Wish{
			ID:       uuid.New().String(),
			Slug:     slug,
			Name:     name,
			Tone:     string(tone),
			Emoji:    emoji,
			From:     from,
			Notes:    strings.TrimSpace(in.Notes),
			ImageURL: strings.TrimSpace(in.ImageDataURL),
			Content:  content,
		}

		err := s.repo.CreateUnique(record)
		if err == nil {
			s.publishCreated(record)
			return record, nil
		}
		if errors.Is(err, repositories.ErrDuplicateSlug) {
			continue // lost a race for this slug, try next suffix
		}
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}

	return nil, fmt.Errorf("%w %q after %d attempts", ErrSlugSpaceExhausted, base, maxSlugProbes)
}

// publishCreated emits a wish.created event. Failures are logged, never
// surfaced: the record is already persisted.
func (s *WishService) publishCreated(record *models.Wish) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"slug": record.Slug,
		"name": record.Name,
		"tone": record.Tone,
	}
	if err := s.publisher.PublishWishCreated(event); err != nil {
		log.Printf("Warning: Failed to publish wish created event for %s: %v", record.Slug, err)
	}
}

// ValidateImageDataURL checks a client-supplied image string: it must be a
// data: URL whose estimated decoded size stays within MaxImageBytes. An
// empty string is valid (no image). Images uploaded as multipart files are
// size-checked against the raw file instead.
func ValidateImageDataURL(image string) error {
	if image == "" {
		return nil
	}
	if !strings.HasPrefix(image, "data:") {
		return ErrImageNotDataURL
	}
	if DataURLDecodedSize(image) > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// DataURLDecodedSize estimates the decoded byte size of a base64 data URL
// from its length and padding.
func DataURLDecodedSize(dataURL string) int {
	size := (len(dataURL)*3 + 3) / 4
	if strings.HasSuffix(dataURL, "==") {
		size -= 2
	} else if strings.HasSuffix(dataURL, "=") {
		size -= 1
	}
	return size
}
