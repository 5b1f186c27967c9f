package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireAuth adapts the net/http AuthGate to Gin so the auth
// decision logic stays framework-agnostic.
func GinRequireAuth(gate *AuthGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := gate.RequireAuth(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the gate already wrote a response, stop the Gin chain.
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
