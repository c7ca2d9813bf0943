package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bugsCreator/bugscreator-wishes/internal/config"
	"github.com/bugsCreator/bugscreator-wishes/internal/repositories"
	"github.com/bugsCreator/bugscreator-wishes/internal/services"
)

// WishHandler handles HTTP requests for wishes.
type WishHandler struct {
	service  *services.WishService
	cfg      config.Config
	validate *validator.Validate
}

// NewWishHandler creates a new WishHandler.
func NewWishHandler(service *services.WishService, cfg config.Config) *WishHandler {
	return &WishHandler{
		service:  service,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the wish routes with the Fiber app.
func (h *WishHandler) RegisterRoutes(router fiber.Router) {
	wishRoutes := router.Group("/wishes")
	wishRoutes.Post("/", h.HandleCreateWish)
	wishRoutes.Get("/:slug", h.HandleGetWishBySlug)
}

// createWishRequest is the creation payload, accepted as JSON or as
// multipart form fields. Image arrives either as the form file part or
// as a data URL string in Image.
type createWishRequest struct {
	Name  string `json:"name" form:"name" validate:"required"`
	Tone  string `json:"tone" form:"tone" validate:"omitempty,max=20"`
	Emoji string `json:"emoji" form:"emoji" validate:"omitempty,max=16"`
	From  string `json:"from" form:"from" validate:"omitempty,max=100"`
	Notes string `json:"notes" form:"notes" validate:"omitempty,max=1000"`
	Slug  string `json:"slug" form:"slug" validate:"omitempty,max=64"`
	Image string `json:"image" form:"image"`
}

// HandleCreateWish creates a new wish and returns its slug and canonical URL.
func (h *WishHandler) HandleCreateWish(c *fiber.Ctx) error {
	contentType := c.Get(fiber.HeaderContentType)

	var req createWishRequest
	var file *multipart.FileHeader

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing wish request body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing wish form: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid form data",
			})
		}
		if f, err := c.FormFile("image"); err == nil {
			file = f
			req.Image = ""
		}
	default:
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Unsupported content type",
		})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Validation failed",
		})
	}

	imageDataURL := strings.TrimSpace(req.Image)
	if file == nil {
		if err := services.ValidateImageDataURL(imageDataURL); err != nil {
			status := fiber.StatusBadRequest
			if errors.Is(err, services.ErrImageTooLarge) {
				status = fiber.StatusRequestEntityTooLarge
			}
			return c.Status(status).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}
	if file != nil {
		dataURL, err := fileToDataURL(file)
		if err != nil {
			if errors.Is(err, services.ErrImageTooLarge) {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": services.ErrImageTooLarge.Error(),
				})
			}
			log.Printf("Error reading uploaded image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not read uploaded image",
			})
		}
		imageDataURL = dataURL
	}

	created, err := h.service.CreateWish(services.CreateWishInput{
		Name:         req.Name,
		Tone:         req.Tone,
		Emoji:        req.Emoji,
		From:         req.From,
		Notes:        req.Notes,
		DesiredSlug:  req.Slug,
		ImageDataURL: imageDataURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNameRequired), errors.Is(err, services.ErrImageNotDataURL):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, services.ErrImageTooLarge):
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			log.Printf("Error creating wish: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create wish",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"slug": created.Slug,
		"url":  h.cfg.WishURL(created.Slug),
	})
}

// HandleGetWishBySlug returns the stored record for a slug.
func (h *WishHandler) HandleGetWishBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	wish, err := h.service.GetWishBySlug(slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Wish %q not found", slug),
			})
		}
		log.Printf("Error getting wish by slug %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve wish",
		})
	}
	return c.JSON(wish)
}

// fileToDataURL converts an uploaded image into a base64 data URL,
// enforcing the decoded-size cap before reading the file into memory.
func fileToDataURL(file *multipart.FileHeader) (string, error) {
	if file.Size > services.MaxImageBytes {
		return "", services.ErrImageTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	mime := file.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf), nil
}
