package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders returns middleware that sets security-related HTTP headers
// on every response. The service serves user-supplied image bytes, so the
// headers focus on stopping content-sniffing and framing tricks rather than
// the full CSP a browser application would need.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// X-Content-Type-Options: prevent MIME type sniffing. Stored
			// files are served with an explicit image Content-Type; the
			// browser must not second-guess it.
			h.Set("X-Content-Type-Options", "nosniff")

			// X-Frame-Options: prevent the JSON API responses from being
			// framed by other sites.
			h.Set("X-Frame-Options", "DENY")

			// Referrer-Policy: limit referrer information leaked to external sites.
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			return next(c)
		}
	}
}
