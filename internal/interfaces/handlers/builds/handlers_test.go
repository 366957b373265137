package builds

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	buildsvc "flipledger/internal/application/builds"
	"flipledger/internal/application/images"
	"flipledger/internal/codec"
	"flipledger/internal/infrastructure/registry"
	"flipledger/internal/infrastructure/store"
	"flipledger/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBuildsTest(t *testing.T, skuMin, skuMax int) *fiber.App {
	dir := t.TempDir()
	reg := registry.NewJSONFile(filepath.Join(dir, "skus.json"))
	alloc, err := registry.NewAllocator(reg, skuMin, skuMax)
	require.NoError(t, err)
	imgs := &images.Service{Dir: filepath.Join(dir, "images")}
	svc := &buildsvc.Service{
		Store:     store.NewJSONFile(filepath.Join(dir, "builds.json")),
		Registry:  reg,
		Allocator: alloc,
		Images:    imgs,
		Format:    codec.FormatStructured,
	}
	h := &Handlers{Service: svc, Images: imgs}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	g := app.Group("/api/v1/builds")
	g.Get("/skus", h.ListSKUs)
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:sku", h.Get)
	g.Patch("/:sku/extra-costs", h.UpdateExtraCosts)
	g.Post("/:sku/sold", h.MarkSold)
	g.Delete("/:sku", h.Delete)
	g.Post("/:sku/image", h.UploadImage)
	app.Get("/api/v1/images/:file", h.Image)
	return app
}

const createBody = `{
	"components": {
		"cpu": {"name": "Ryzen 5 3600", "brand": "AMD", "price": 55},
		"gpu": {"name": "RX 6600", "brand": "Sapphire", "price": "175"},
		"ram": {"name": "Vengeance 16GB", "brand": "Corsair", "price": 48},
		"motherboard": {"name": "B450", "brand": "MSI", "price": 0},
		"psu": {"name": "CV550", "brand": "Corsair", "price": 0},
		"case": {"name": "H510", "brand": "NZXT", "price": 0}
	},
	"extra_costs": 180,
	"target_sell_price": 600,
	"extra_profit": 60,
	"list_date": "2024-10-01"
}`

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func createBuild(t *testing.T, app *fiber.App) int {
	status, out := doJSON(t, app, "POST", "/api/v1/builds", createBody)
	require.Equal(t, 201, status, out)
	return int(out["data"].(map[string]interface{})["sku"].(float64))
}

func TestCreateAndGet(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)
	sku := createBuild(t, app)

	status, out := doJSON(t, app, "GET", "/api/v1/builds/"+strconv.Itoa(sku), "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "success", out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "458.00", data["total_price"])
	assert.Equal(t, "202.00", data["target_profit"])
	assert.Nil(t, data["total_profit"])
	assert.Len(t, data["components"], 6)
}

func TestCreate_Invalid(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)

	status, out := doJSON(t, app, "POST", "/api/v1/builds", `{"components": {"cpu": {"name": "Ryzen, 5", "brand": "AMD", "price": 1}}}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "error", out["status"])

	status, _ = doJSON(t, app, "POST", "/api/v1/builds", `not json`)
	assert.Equal(t, 400, status)
}

func TestCreate_Exhausted(t *testing.T) {
	app := setupBuildsTest(t, 1000, 1000)
	createBuild(t, app)
	status, _ := doJSON(t, app, "POST", "/api/v1/builds", createBody)
	assert.Equal(t, 409, status)
}

func TestGet_Errors(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)
	status, _ := doJSON(t, app, "GET", "/api/v1/builds/abc", "")
	assert.Equal(t, 400, status)
	status, _ = doJSON(t, app, "GET", "/api/v1/builds/1234", "")
	assert.Equal(t, 404, status)
}

func TestListAndSKUs(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)
	a := createBuild(t, app)
	b := createBuild(t, app)

	status, out := doJSON(t, app, "GET", "/api/v1/builds/skus", "")
	assert.Equal(t, 200, status)
	assert.ElementsMatch(t, []interface{}{float64(a), float64(b)}, out["data"])

	status, out = doJSON(t, app, "GET", "/api/v1/builds?sort=sku", "")
	assert.Equal(t, 200, status)
	data := out["data"].(map[string]interface{})
	builds := data["builds"].([]interface{})
	require.Len(t, builds, 2)
	first := builds[0].(map[string]interface{})["sku"].(float64)
	second := builds[1].(map[string]interface{})["sku"].(float64)
	assert.Less(t, first, second)
	assert.Empty(t, data["skipped"])
}

func TestMarkSoldAndExtraCosts(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)
	sku := strconv.Itoa(createBuild(t, app))

	status, out := doJSON(t, app, "PATCH", "/api/v1/builds/"+sku+"/extra-costs", `{"extra_costs": "200"}`)
	require.Equal(t, 200, status, out)
	assert.Equal(t, "478.00", out["data"].(map[string]interface{})["total_price"])

	status, _ = doJSON(t, app, "PATCH", "/api/v1/builds/"+sku+"/extra-costs", `{}`)
	assert.Equal(t, 400, status)
	status, _ = doJSON(t, app, "PATCH", "/api/v1/builds/"+sku+"/extra-costs", `{"extra_costs": -3}`)
	assert.Equal(t, 400, status)

	status, out = doJSON(t, app, "POST", "/api/v1/builds/"+sku+"/sold", `{"sell_price": 600, "sell_date": "2024-11-02"}`)
	require.Equal(t, 200, status, out)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, true, data["sold"])
	assert.Equal(t, "182.00", data["total_profit"])
	assert.Equal(t, "2024-11-02", data["sell_date"])

	status, _ = doJSON(t, app, "POST", "/api/v1/builds/"+sku+"/sold", `{"sell_price": 600, "sell_date": "tomorrow"}`)
	assert.Equal(t, 400, status)
}

func TestDelete(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)
	sku := strconv.Itoa(createBuild(t, app))

	status, _ := doJSON(t, app, "DELETE", "/api/v1/builds/"+sku, "")
	assert.Equal(t, 200, status)
	status, _ = doJSON(t, app, "GET", "/api/v1/builds/"+sku, "")
	assert.Equal(t, 404, status)
	status, _ = doJSON(t, app, "DELETE", "/api/v1/builds/"+sku, "")
	assert.Equal(t, 404, status)
}

func multipartImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadAndServeImage(t *testing.T) {
	app := setupBuildsTest(t, 0, 0)
	sku := strconv.Itoa(createBuild(t, app))
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	body, ct := multipartImage(t, "front.png", png)
	req := httptest.NewRequest("POST", "/api/v1/builds/"+sku+"/image", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, sku+".png", out["data"].(map[string]interface{})["image_file_name"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/images/"+sku+".png", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, png, got)

	body, ct = multipartImage(t, "notes.txt", []byte("hello"))
	req = httptest.NewRequest("POST", "/api/v1/builds/"+sku+"/image", body)
	req.Header.Set("Content-Type", ct)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/images/9999.png", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
