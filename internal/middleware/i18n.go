// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Locale resolves the response language from the Accept-Language header
// and stores it on the context for the response helpers.
func Locale(defaultLocale string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := defaultLocale

		header := c.GetHeader("Accept-Language")
		if header != "" {
			// First language tag wins; quality values are ignored.
			tag := strings.TrimSpace(strings.Split(header, ",")[0])
			tag = strings.Split(tag, ";")[0]

			switch {
			case strings.HasPrefix(tag, "pt"):
				lang = "pt_BR"
			case strings.HasPrefix(tag, "en"):
				lang = "en"
			}
		}

		c.Set("lang", lang)
		c.Next()
	}
}
