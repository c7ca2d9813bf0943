package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bugsCreator/bugscreator-wishes/internal/config"
	"github.com/bugsCreator/bugscreator-wishes/internal/preview"
	"github.com/bugsCreator/bugscreator-wishes/internal/repositories"
	"github.com/bugsCreator/bugscreator-wishes/internal/services"
)

// SiteHandler serves the wish page and the site-level endpoints: the
// social preview image, web manifest, robots.txt and sitemap.
type SiteHandler struct {
	service *services.WishService
	cfg     config.Config
	page    *template.Template
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(service *services.WishService, cfg config.Config) *SiteHandler {
	return &SiteHandler{
		service: service,
		cfg:     cfg,
		page:    template.Must(template.New("wish").Parse(wishPageTemplate)),
	}
}

// RegisterRoutes registers the site routes on the app root.
func (h *SiteHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/wish/:slug", h.HandleWishPage)
	router.Get("/og.png", h.HandlePreviewImage)
	router.Get("/manifest.webmanifest", h.HandleManifest)
	router.Get("/robots.txt", h.HandleRobots)
	router.Get("/sitemap.xml", h.HandleSitemap)
}

type wishPageData struct {
	Title         string
	Description   string
	OGDescription string
	CanonicalURL  string
	PreviewURL    string
	Name          string
	Emoji         string
	Notes         string
	ImageURL      template.URL
	Content       string
}

const wishPageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<link rel="canonical" href="{{.CanonicalURL}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.OGDescription}}">
<meta property="og:url" content="{{.CanonicalURL}}">
<meta property="og:image" content="{{.PreviewURL}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.OGDescription}}">
<meta name="twitter:image" content="{{.PreviewURL}}">
<style>
body{margin:0;font-family:"Segoe UI",Arial,sans-serif;background:linear-gradient(135deg,#f472b6,#a78bfa);min-height:100vh;display:flex;align-items:center;justify-content:center}
main{background:#fff;border-radius:16px;padding:40px;max-width:640px;margin:24px;box-shadow:0 20px 60px rgba(0,0,0,.25)}
h1{margin-top:0}
img{max-width:100%;border-radius:12px}
.content{white-space:pre-line;font-size:1.1rem;line-height:1.6}
.notes{color:#6b7280;font-style:italic}
</style>
</head>
<body>
<main>
<h1>{{.Title}} {{.Emoji}}</h1>
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="Birthday wish for {{.Name}}">{{end}}
<div class="content">{{.Content}}</div>
{{if .Notes}}<p class="notes">{{.Notes}}</p>{{end}}
</main>
</body>
</html>
`

// HandleWishPage renders the shareable wish page with its social metadata.
func (h *SiteHandler) HandleWishPage(c *fiber.Ctx) error {
	slug := c.Params("slug")
	wish, err := h.service.GetWishBySlug(slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return c.Status(fiber.StatusNotFound).SendString("<!doctype html><title>Wish not found</title><div style=\"padding:24px\">Wish not found.</div>")
		}
		log.Printf("Error loading wish page for slug %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong.")
	}

	data := wishPageData{
		Title:         fmt.Sprintf("Happy Birthday, %s!", wish.Name),
		Description:   truncateRunes(wish.Content, 140),
		OGDescription: truncateRunes(wish.Content, 200),
		CanonicalURL:  h.cfg.WishURL(wish.Slug),
		PreviewURL:    h.cfg.BaseURL + "/og.png?name=" + url.QueryEscape(wish.Name),
		Name:          wish.Name,
		Emoji:         wish.Emoji,
		Notes:         wish.Notes,
		ImageURL:      template.URL(wish.ImageURL),
		Content:       wish.Content,
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		log.Printf("Error rendering wish page for slug %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong.")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// HandlePreviewImage serves the social preview card as SVG.
func (h *SiteHandler) HandlePreviewImage(c *fiber.Ctx) error {
	name := c.Query("name")
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400, immutable")
	return c.Send(preview.Card(name, h.cfg.SiteName, h.cfg.SiteDescription))
}

// HandleManifest serves the web app manifest.
func (h *SiteHandler) HandleManifest(c *fiber.Ctx) error {
	manifest := map[string]interface{}{
		"name":             h.cfg.SiteName,
		"short_name":       h.cfg.SiteShortName,
		"start_url":        "/",
		"display":          "standalone",
		"background_color": "#ffffff",
		"theme_color":      "#111827",
		"icons": []map[string]string{
			{"src": "/android-chrome-192x192.png", "sizes": "192x192", "type": "image/png"},
			{"src": "/android-chrome-512x512.png", "sizes": "512x512", "type": "image/png"},
		},
	}
	body, err := json.Marshal(manifest)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong.")
	}
	c.Set(fiber.HeaderContentType, "application/manifest+json")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600, must-revalidate")
	return c.Send(body)
}

// HandleRobots serves robots.txt, keeping crawlers out of the API.
func (h *SiteHandler) HandleRobots(c *fiber.Ctx) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n\n")
	b.WriteString("Sitemap: " + h.cfg.BaseURL + "/sitemap.xml\n")
	b.WriteString("Host: " + h.cfg.BaseURL + "\n")
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(b.String())
}

// sitemapSlugLimit caps how many wish URLs the sitemap lists.
const sitemapSlugLimit = 500

// HandleSitemap serves a sitemap with the landing page and recent wishes.
func (h *SiteHandler) HandleSitemap(c *fiber.Ctx) error {
	slugs, err := h.service.ListSlugs(sitemapSlugLimit)
	if err != nil {
		log.Printf("Error listing slugs for sitemap: %v", err)
		slugs = nil // still serve the static part
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	writeSitemapURL(&b, h.cfg.BaseURL, now, "weekly", "1.0")
	for _, slug := range slugs {
		writeSitemapURL(&b, h.cfg.WishURL(slug), now, "weekly", "0.7")
	}
	b.WriteString("</urlset>\n")

	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(b.String())
}

func writeSitemapURL(b *strings.Builder, loc, lastmod, changefreq, priority string) {
	b.WriteString("  <url>\n")
	fmt.Fprintf(b, "    <loc>%s</loc>\n", loc)
	fmt.Fprintf(b, "    <lastmod>%s</lastmod>\n", lastmod)
	fmt.Fprintf(b, "    <changefreq>%s</changefreq>\n", changefreq)
	fmt.Fprintf(b, "    <priority>%s</priority>\n", priority)
	b.WriteString("  </url>\n")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
