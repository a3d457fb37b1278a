package middlewares

import "github.com/gin-gonic/gin"

// SecurityHeaders locks the host down to the JSON API it is: nothing here
// is a document the browser should ever render.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}
