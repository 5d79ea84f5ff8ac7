// Seed script for creating a demo thread in groundcheck.
// Run with: go run ./scripts/seed.go
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/Harshitk-cp/groundcheck/internal/bootstrap"
	"github.com/Harshitk-cp/groundcheck/internal/config"
	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"go.uber.org/zap"
)

const demoThread = "demo-thread"

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	stack, err := bootstrap.Open(ctx, zap.NewNop(), bootstrap.StoreOptions())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer stack.Close()

	fmt.Println("Connected to store")

	apiKey := generateAPIKey()
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Println("(Add it to API_KEYS to require authentication)")

	n, err := stack.Memory.ClearThread(ctx, demoThread)
	if err != nil {
		log.Fatalf("Failed to reset demo thread: %v", err)
	}
	if n > 0 {
		fmt.Printf("Removed %d old demo memories\n", n)
	}

	memories := []struct {
		text   string
		source domain.MemorySource
		trust  float64
	}{
		{"User works at Microsoft as a Senior Software Engineer", domain.SourceUser, 0.9},
		{"User lives in Seattle", domain.SourceUser, 0.9},
		{"User graduated from Stanford University", domain.SourceDocument, 0.85},
		{"User's primary programming language is Go", domain.SourceUser, 0.85},
		{"FACT: favorite_color = blue", domain.SourceUser, 0.8},
		{"We use PostgreSQL for the new project", domain.SourceCode, 0.8},
		{"User has a golden retriever named Max", domain.SourceInferred, 0.4},
		// Later update that contradicts the first memory.
		{"User now works at Amazon", domain.SourceUser, 0.9},
	}

	for _, m := range memories {
		trust := m.trust
		res, err := stack.Memory.Store(ctx, service.StoreRequest{
			ThreadID: demoThread,
			Text:     m.text,
			Source:   m.source,
			Trust:    &trust,
		})
		if err != nil {
			log.Printf("Warning: Failed to store memory: %v", err)
			continue
		}
		fmt.Printf("Stored memory [%s]: %s\n", m.source, truncate(m.text, 50))
		for _, c := range res.Contradictions {
			fmt.Printf("  contradiction on %s: %v\n", c.Slot, c.Values)
		}
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Println("\nTo verify a draft against the demo thread, use:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' -d '{\"draft\":\"You work at Microsoft in Seattle\"}' http://localhost:8080/v1/threads/%s/verify\n", apiKey, demoThread)
}

func generateAPIKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}
	return "gc_" + base64.URLEncoding.EncodeToString(b)[:40]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
