package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/bugsCreator/bugscreator-wishes/internal/config"
	"github.com/bugsCreator/bugscreator-wishes/internal/handlers"
	"github.com/bugsCreator/bugscreator-wishes/internal/models"
	"github.com/bugsCreator/bugscreator-wishes/internal/repositories"
	"github.com/bugsCreator/bugscreator-wishes/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app backed by an isolated in-memory SQLite
// database. Each test gets its own database, named after the test.
func setupApp(t *testing.T) (*fiber.App, config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open in-memory database")

	require.NoError(t, db.AutoMigrate(&models.Wish{}), "failed to migrate database")

	cfg := config.Config{
		AppPort:         ":0",
		BaseURL:         "http://wishes.test",
		SiteName:        "Birthday Wish",
		SiteShortName:   "BdayWish",
		SiteDescription: "Create and share personalized birthday wishes instantly with beautiful messages.",
	}

	wishRepo := repositories.NewGORMWishRepository(db)
	wishService := services.NewWishService(wishRepo, nil) // nil for the event publisher

	wishHandler := handlers.NewWishHandler(wishService, cfg)
	siteHandler := handlers.NewSiteHandler(wishService, cfg)

	app := fiber.New(fiber.Config{BodyLimit: 8 * 1024 * 1024})

	apiV1 := app.Group("/api/v1")
	wishHandler.RegisterRoutes(apiV1)
	siteHandler.RegisterRoutes(app)

	return app, cfg
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func postJSON(t *testing.T, app *fiber.App, payload map[string]string) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishes/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateWishJSON(t *testing.T) {
	app, cfg := setupApp(t)

	resp := postJSON(t, app, map[string]string{
		"name": "Ana", "tone": "fun", "emoji": "🎂", "from": "Sam",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ana", body["slug"])
	assert.Equal(t, cfg.BaseURL+"/wish/ana", body["url"])
}

func TestCreateWishCollisionGetsSuffix(t *testing.T) {
	app, _ := setupApp(t)

	first := postJSON(t, app, map[string]string{"name": "Ana"})
	assert.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Equal(t, "ana", decodeBody(t, first)["slug"])

	second := postJSON(t, app, map[string]string{"name": "Ana"})
	assert.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, "ana-1", decodeBody(t, second)["slug"])

	third := postJSON(t, app, map[string]string{"name": "Ana"})
	assert.Equal(t, fiber.StatusCreated, third.StatusCode)
	assert.Equal(t, "ana-2", decodeBody(t, third)["slug"])
}

func TestCreateWishMissingName(t *testing.T) {
	app, _ := setupApp(t)

	for _, payload := range []map[string]string{
		{},
		{"name": "   "},
	} {
		resp := postJSON(t, app, payload)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Name is required", decodeBody(t, resp)["error"])
	}
}

func TestCreateWishUnsupportedContentType(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishes/", strings.NewReader("name=Ana"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, "Unsupported content type", decodeBody(t, resp)["error"])
}

func TestCreateWishRejectsNonDataURLImage(t *testing.T) {
	app, _ := setupApp(t)

	resp := postJSON(t, app, map[string]string{
		"name":  "Ana",
		"image": "https://example.com/cake.png",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "data URL")
}

func TestCreateWishRejectsOversizedImageAndPersistsNothing(t *testing.T) {
	app, _ := setupApp(t)

	oversized := "data:image/png;base64," + strings.Repeat("A", 7*1024*1024)
	resp := postJSON(t, app, map[string]string{
		"name":  "Ana",
		"image": oversized,
	})
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "too large")

	// Failed creation must leave no record behind.
	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/wishes/ana", nil)
	getResp, err := app.Test(getReq, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, getResp.StatusCode)
}

func TestCreateWishMultipartWithImage(t *testing.T) {
	app, _ := setupApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Ana"))
	require.NoError(t, w.WriteField("tone", "poetic"))
	require.NoError(t, w.WriteField("from", "Sam"))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="cake.png"`)
	header.Set("Content-Type", "image/png")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishes/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	slug := decodeBody(t, resp)["slug"]
	assert.Equal(t, "ana", slug)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/wishes/"+slug, nil)
	getResp, err := app.Test(getReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	var stored models.Wish
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&stored))
	getResp.Body.Close()
	assert.True(t, strings.HasPrefix(stored.ImageURL, "data:image/png;base64,"), "uploaded file must be stored as a data URL")
	assert.Equal(t, "poetic", stored.Tone)
	assert.Contains(t, stored.Content, "With love,\nSam")
}

func TestGetWishBySlug(t *testing.T) {
	app, _ := setupApp(t)

	resp := postJSON(t, app, map[string]string{"name": "Jo Ann", "notes": "see you at 7"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	slug := decodeBody(t, resp)["slug"]
	assert.Equal(t, "jo-ann", slug)

	fetch := func() models.Wish {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wishes/"+slug, nil)
		r, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, r.StatusCode)
		var w models.Wish
		require.NoError(t, json.NewDecoder(r.Body).Decode(&w))
		r.Body.Close()
		return w
	}

	first := fetch()
	second := fetch()

	// Content is stored at creation, not recomputed on read.
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, "Jo Ann", first.Name)
	assert.Equal(t, "see you at 7", first.Notes)
}

func TestGetWishNotFound(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishes/nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWishPageRendersMetadata(t *testing.T) {
	app, cfg := setupApp(t)

	resp := postJSON(t, app, map[string]string{"name": "Ana", "from": "Sam"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	slug := decodeBody(t, resp)["slug"]

	req := httptest.NewRequest(http.MethodGet, "/wish/"+slug, nil)
	pageResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, pageResp.StatusCode)
	assert.Contains(t, pageResp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(pageResp.Body)
	require.NoError(t, err)
	pageResp.Body.Close()
	page := string(body)

	assert.Contains(t, page, "Happy Birthday, Ana!")
	assert.Contains(t, page, `property="og:title"`)
	assert.Contains(t, page, cfg.WishURL(slug))
	assert.Contains(t, page, "/og.png?name=Ana")
	assert.Contains(t, page, "With love,")
}

func TestWishPageNotFound(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/wish/nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "Wish not found")
}

func TestPreviewImageEndpoint(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/og.png?name=Ana", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "max-age=86400")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "Happy Birthday, Ana!")
}

func TestManifestEndpoint(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/manifest.webmanifest", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/manifest+json", resp.Header.Get("Content-Type"))

	var manifest map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&manifest))
	resp.Body.Close()
	assert.Equal(t, "Birthday Wish", manifest["name"])
	assert.Equal(t, "BdayWish", manifest["short_name"])
}

func TestRobotsEndpoint(t *testing.T) {
	app, cfg := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	robots := string(body)

	assert.Contains(t, robots, "Disallow: /api/")
	assert.Contains(t, robots, "Sitemap: "+cfg.BaseURL+"/sitemap.xml")
}

func TestSitemapListsWishes(t *testing.T) {
	app, cfg := setupApp(t)

	resp := postJSON(t, app, map[string]string{"name": "Ana"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	mapResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, mapResp.StatusCode)
	assert.Equal(t, "application/xml", mapResp.Header.Get("Content-Type"))

	body, err := io.ReadAll(mapResp.Body)
	require.NoError(t, err)
	mapResp.Body.Close()
	sitemap := string(body)

	assert.Contains(t, sitemap, "<loc>"+cfg.BaseURL+"</loc>")
	assert.Contains(t, sitemap, "<loc>"+cfg.WishURL("ana")+"</loc>")
}
