package endpoints

import (
	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/defra"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	DefraManager *defra.DockerManager
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{DefraManager: cfg.DefraManager},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&CreatePromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},
		&ResetPromptEndpoint{},
		&PromptHistoryEndpoint{},
		&RollbackPromptEndpoint{},
		&UpdateVariantEndpoint{},

		// Block resolution endpoints
		&ResolveBlocksEndpoint{},
		&ResolveBlockEndpoint{},

		// Library endpoints
		&ListLibrariesEndpoint{},
		&LibraryContextEndpoint{},

		// Composition endpoints
		&ListCompositionsEndpoint{},
		&GetCompositionEndpoint{},
		&BuildCompositionEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}
