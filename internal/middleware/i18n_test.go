// internal/middleware/i18n_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLocaleResolution(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		acceptLanguage string
		expected       string
	}{
		{"no header uses default", "", "pt_BR"},
		{"portuguese", "pt-BR,pt;q=0.9", "pt_BR"},
		{"plain pt", "pt", "pt_BR"},
		{"english", "en-US,en;q=0.5", "en"},
		{"unknown language falls back", "fr-FR", "pt_BR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string

			r := gin.New()
			r.Use(Locale("pt_BR"))
			r.GET("/", func(c *gin.Context) {
				got = c.GetString("lang")
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, got)
		})
	}
}
