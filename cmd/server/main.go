// cmd/server/main.go
package main

import (
	"log"

	"github.com/Promethia/CampaignForge/internal/app"

	_ "github.com/Promethia/CampaignForge/internal/llm/providers/ollama"
	_ "github.com/Promethia/CampaignForge/internal/llm/providers/openrouter"
)

func main() {
	if err := app.Initialize(); err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
