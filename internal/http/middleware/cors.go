package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/norvik-erp/jobcard-api/internal/config"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware configured from the application config
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			if environment != "development" && environment != "local" {
				logger.Warn("CORS configured with wildcard origin in non-development environment",
					zap.String("environment", environment))
			}
			options.AllowOriginFunc = func(r *http.Request, origin string) bool {
				return origin != ""
			}
			break
		}
	}
	if options.AllowOriginFunc == nil {
		options.AllowedOrigins = cfg.AllowedOrigins
	}

	return cors.Handler(options)
}
