package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/observability"
)

// APIPrefix is the route prefix whose requests are measured.
const APIPrefix = "/api/v1"

// Observability records Prometheus request metrics for API routes and logs
// every mutation or failed request with its latency.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), APIPrefix) {
			return err
		}
		elapsed := time.Since(start)

		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		code := strconv.Itoa(status)

		observability.APIRequests().WithLabelValues(method, route, code).Inc()
		observability.APILatency().WithLabelValues(method, route).Observe(elapsed.Seconds())

		event := requestEvent(logger, method, status)
		if event == nil {
			return err
		}
		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("api request")

		return err
	}
}

// requestEvent picks the log level: failures by class, mutations at info,
// reads at debug.
func requestEvent(logger zerolog.Logger, method string, status int) *zerolog.Event {
	switch {
	case status >= fiber.StatusInternalServerError:
		return logger.Error()
	case status >= fiber.StatusBadRequest:
		return logger.Warn()
	case method == fiber.MethodGet || method == fiber.MethodHead || method == fiber.MethodOptions:
		return logger.Debug()
	default:
		return logger.Info()
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}
