package endpoints

import (
	"github.com/jackzampolin/shiftparse/internal/api"
)

// Config holds dependencies needed by some endpoints.
// All current endpoints read their services from the request context.
type Config struct{}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Schedule endpoints
		&ExtractEndpoint{},
		&GetCurrentEndpoint{},
		&ClearCurrentEndpoint{},
		&CurrentXLSXEndpoint{},

		// Call history endpoints
		&ListCallsEndpoint{},
		&CallsSummaryEndpoint{},
		&GetCallEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}
