package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/algotutor-api/internal/config"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

const probeTimeout = 2 * time.Second

// Probe checks one backing dependency.
type Probe func(ctx context.Context) error

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Locale      string            `json:"default_locale"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports service identity and the outcome of every probe. Any
// failing probe turns the status into "degraded" and the response into a 503.
func HealthCheck(cfg config.Config, probes map[string]Probe) fiber.Handler {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Locale:      cfg.DefaultLocale,
		}

		if len(names) > 0 {
			payload.Checks = make(map[string]string, len(names))
			ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
			defer cancel()
			for _, name := range names {
				if err := probes[name](ctx); err != nil {
					payload.Checks[name] = err.Error()
					payload.Status = "degraded"
					continue
				}
				payload.Checks[name] = "ok"
			}
		}

		if payload.Status != "ok" {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
