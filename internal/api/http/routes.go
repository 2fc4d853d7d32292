package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/agri-intel/farm-risk-analysis/internal/analysis"
	"github.com/agri-intel/farm-risk-analysis/internal/synthesis"
)

var validate = validator.New()

// AnalysisRunner is the orchestrator contract the handlers depend on.
type AnalysisRunner interface {
	RunAnalysis(ctx context.Context, req analysis.AnalysisRequest) (synthesis.Report, error)
}

// StorePinger reports precedent-store connectivity for the readiness probe.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. store may be nil
// when no readiness information is available.
func RegisterRoutes(app *fiber.App, runner AnalysisRunner, store StorePinger) {
	api := app.Group("/api")

	api.Post("/get-farm-analysis", func(c *fiber.Ctx) error {
		var req analysis.AnalysisRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "request body must be valid JSON")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := runner.RunAnalysis(c.Context(), req)
		if err != nil {
			return fiber.NewError(statusForError(err), messageForError(err))
		}

		return c.JSON(fiber.Map{
			"analysis": report.RenderText(),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		precedentStore := "ok"
		if store != nil {
			if err := store.Ping(c.Context()); err != nil {
				status = "degraded"
				precedentStore = "unavailable"
			}
		} else {
			precedentStore = "unconfigured"
		}
		return c.JSON(fiber.Map{
			"status":          status,
			"service":         "farm-risk-analysis",
			"precedent_store": precedentStore,
		})
	})
}

// statusForError maps the analysis error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch analysis.KindOf(err) {
	case analysis.KindValidation:
		return fiber.StatusBadRequest
	case analysis.KindUpstreamTimeout:
		return fiber.StatusGatewayTimeout
	case analysis.KindSynthesis:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// messageForError surfaces the structured kind+message, never a provider
// stack trace.
func messageForError(err error) string {
	var ae *analysis.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}
