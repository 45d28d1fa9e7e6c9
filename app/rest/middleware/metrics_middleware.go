package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"identity-gateway/app/metrics"
)

// Metrics records request count, latency, in-flight gauge and response size
// for every request. Mounted outermost so the recorded status code is the
// one that reaches the client.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			// The scrape endpoint does not observe itself
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}

			method := c.Request().Method
			endpoint := c.Request().URL.Path

			start := time.Now()
			metrics.RequestStarted(method, endpoint)
			defer metrics.RequestFinished(method, endpoint)

			if err = next(c); err != nil {
				// Commit the error response so its status code is observed
				c.Error(err)
			}

			metrics.RecordRequest(
				method,
				endpoint,
				c.Response().Status,
				time.Since(start).Seconds(),
				c.Response().Size,
			)

			return err
		}
	}
}
