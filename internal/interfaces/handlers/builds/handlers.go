package builds

import (
	"encoding/json"
	"strconv"

	buildsvc "flipledger/internal/application/builds"
	"flipledger/internal/application/images"
	"flipledger/internal/domain"
	"flipledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *buildsvc.Service
	Images  *images.Service
}

type extraCostsBody struct {
	ExtraCosts *decimal.Decimal `json:"extra_costs"`
}

type soldBody struct {
	SellPrice *decimal.Decimal `json:"sell_price"`
	SellDate  string           `json:"sell_date"`
}

func skuParam(c *fiber.Ctx) (int, error) {
	sku, err := strconv.Atoi(c.Params("sku"))
	if err != nil || sku <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid sku")
	}
	return sku, nil
}

func decodeBody(c *fiber.Ctx, v interface{}) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// GET /api/v1/builds/skus
func (h *Handlers) ListSKUs(c *fiber.Ctx) error {
	skus, err := h.Service.ListAllSKUs(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "SKUs fetched successfully", skus, fiber.Map{"count": len(skus)})
}

// GET /api/v1/builds?sort=sku|list_date|target_profit|total_price
func (h *Handlers) List(c *fiber.Ctx) error {
	res := h.Service.ListAll(c.UserContext())
	res.Builds = buildsvc.Sorted(res.Builds, c.Query("sort"))
	meta := fiber.Map{"count": len(res.Builds), "skipped": len(res.Skipped)}
	return response.Success(c, "Builds fetched successfully", res, meta)
}

// GET /api/v1/builds/:sku
func (h *Handlers) Get(c *fiber.Ctx) error {
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	view, err := h.Service.View(c.UserContext(), sku)
	if err != nil {
		return err
	}
	return response.Success(c, "Build fetched successfully", view, nil)
}

// POST /api/v1/builds
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in buildsvc.CreateInput
	if err := decodeBody(c, &in); err != nil {
		return err
	}
	b, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, "Build created successfully", fiber.Map{
		"sku":   b.SKU,
		"build": domain.NewView(b),
	}, nil)
}

// PATCH /api/v1/builds/:sku/extra-costs
func (h *Handlers) UpdateExtraCosts(c *fiber.Ctx) error {
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	var body extraCostsBody
	if err := decodeBody(c, &body); err != nil {
		return err
	}
	if body.ExtraCosts == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required field: extra_costs")
	}
	b, err := h.Service.UpdateExtraCosts(c.UserContext(), sku, *body.ExtraCosts)
	if err != nil {
		return err
	}
	return response.Success(c, "Extra costs updated successfully", domain.NewView(b), nil)
}

// POST /api/v1/builds/:sku/sold
func (h *Handlers) MarkSold(c *fiber.Ctx) error {
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	var body soldBody
	if err := decodeBody(c, &body); err != nil {
		return err
	}
	if body.SellPrice == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required field: sell_price")
	}
	b, err := h.Service.MarkSold(c.UserContext(), sku, *body.SellPrice, body.SellDate)
	if err != nil {
		return err
	}
	return response.Success(c, "Build marked as sold", domain.NewView(b), nil)
}

// DELETE /api/v1/builds/:sku
func (h *Handlers) Delete(c *fiber.Ctx) error {
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.UserContext(), sku); err != nil {
		return err
	}
	return response.Success(c, "Build deleted successfully", fiber.Map{"sku": sku}, nil)
}

// POST /api/v1/builds/:sku/image (multipart field "image")
func (h *Handlers) UploadImage(c *fiber.Ctx) error {
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required file: image")
	}
	if fh.Size > images.MaxImageBytes {
		return images.ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := h.Service.AttachImage(c.UserContext(), sku, fh.Filename, f)
	if err != nil {
		return err
	}
	return response.Success(c, "Image uploaded successfully", fiber.Map{
		"sku":             b.SKU,
		"image_file_name": b.ImageFileName,
	}, nil)
}

// GET /api/v1/images/:file
func (h *Handlers) Image(c *fiber.Ctx) error {
	path, err := h.Images.Path(c.Params("file"))
	if err != nil {
		return err
	}
	return c.SendFile(path)
}
