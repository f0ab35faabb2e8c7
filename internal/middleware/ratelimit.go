package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/LoomSoftware/http-component/internal/config"
)

// RateLimiter returns a per-client-IP token bucket limiter allowing
// cfg.RequestsPerSecond with a burst of the same size (at least 1).
// Rejected requests get a JSON 429.
func RateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	burst := max(int(cfg.RequestsPerSecond), 1)
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(cfg.RequestsPerSecond),
		Burst: burst,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		},
	})
}
