package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
)

// corsConfig allows the local dev frontends, or the comma separated
// prodOrigins in production.
func corsConfig(isProduction bool, prodOrigins string) cors.Config {
	config := cors.DefaultConfig()
	if isProduction {
		config.AllowOrigins = splitOrigins(prodOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.ExposeHeaders = []string{"X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	config.MaxAge = 12 * time.Hour
	return config
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
