package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS builds the CORS middleware from the configured allowed origins,
// defaulting to permissive settings suitable for the public intents/webhook
// surface.
func CORS(allowedOrigins []string) fiber.Handler {
	origins := "*"
	if len(allowedOrigins) > 0 {
		origins = strings.Join(allowedOrigins, ",")
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Stripe-Signature",
		ExposeHeaders: "Content-Length",
		MaxAge:        86400,
	})
}
