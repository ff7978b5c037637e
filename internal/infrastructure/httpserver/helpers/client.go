package helpers

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// AnonymousClient identifies callers that send no X-Forwarded-For header.
const AnonymousClient = "anon"

// ClientIdentifier returns the first X-Forwarded-For entry, or AnonymousClient.
//
// The header is trusted verbatim, so a client can choose its own identifier and
// spread requests across rate-limit buckets. This is only sound behind a proxy
// that overwrites X-Forwarded-For; no trusted-proxy list is consulted.
func ClientIdentifier(c echo.Context) string {
	xff := c.Request().Header.Get(echo.HeaderXForwardedFor)
	if xff == "" {
		return AnonymousClient
	}
	first, _, _ := strings.Cut(xff, ",")
	if first = strings.TrimSpace(first); first == "" {
		return AnonymousClient
	}
	return first
}
