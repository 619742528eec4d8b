package middleware

import (
	"strconv"
	"time"

	"tradedesk/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency per route template, so ids in
// paths do not explode label cardinality.
func Metrics(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	route := c.Route().Path
	metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
	return err
}
