package router

import (
	"context"
	"time"

	"flipledger/internal/app"
	"flipledger/internal/application/images"
	buildhandler "flipledger/internal/interfaces/handlers/builds"
	healthhandler "flipledger/internal/interfaces/handlers/health"
	"flipledger/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(s *app.Services) *fiber.App {
	fa := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
		BodyLimit:             images.MaxImageBytes + 1<<20,
	})

	fa.Use(middleware.CORS(middleware.CORSConfig{AllowedSuffix: s.Config.CORSAllowedSuffix}))
	fa.Use(middleware.Tracing())
	fa.Use(middleware.HealthMarker(s.Rdb))
	fa.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: s.Rdb, Store: s.Store, StartedAt: time.Now()}
	fa.Get("/health/json", hh.JSON)
	fa.Get("/health/errors", hh.Errors)

	bh := &buildhandler.Handlers{Service: s.Builds, Images: s.Images}
	bg := fa.Group("/api/v1/builds")
	bg.Get("/skus", bh.ListSKUs)
	bg.Get("/", bh.List)
	bg.Post("/", bh.Create)
	bg.Get("/:sku", bh.Get)
	bg.Patch("/:sku/extra-costs", bh.UpdateExtraCosts)
	bg.Post("/:sku/sold", bh.MarkSold)
	bg.Delete("/:sku", bh.Delete)
	bg.Post("/:sku/image", bh.UploadImage)
	fa.Get("/api/v1/images/:file", bh.Image)

	return fa
}

// Serve listens on addr until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, fa *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fa.Listen(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		return fa.ShutdownWithTimeout(10 * time.Second)
	}
}
