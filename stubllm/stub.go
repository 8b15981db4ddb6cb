package stubllm

import (
	"context"
	"strings"
)

// Client is a deterministic generation provider used in tests and when
// LLM_PROVIDER=stub. Output is keyed off markers in the system prompt
// so every analyzer mode gets a shape-valid response.
type Client struct{}

// NewClient creates a stub provider.
func NewClient() *Client {
	return &Client{}
}

// SourceName identifies the stub provider in logs.
func (c *Client) SourceName() string {
	return "Stub"
}

const auditJSON = `{
  "title": "Listing Audit",
  "score": 72,
  "highlights": ["Clear product title", "Strong primary image"],
  "recommendations": ["Add more bullet points", "Include lifestyle imagery"],
  "detailed_analysis": {"title": "Title covers the core keyword.", "images": "Only one image supplied."}
}`

const createJSON = `{
  "title": "Generated Listing",
  "score": 64,
  "highlights": ["Category identified", "Description usable"],
  "recommendations": ["Collect customer review quotes"],
  "detailed_analysis": {"description": "Derived from page copy."},
  "listing": {
    "title": "Premium Stainless Bottle, 750ml, Leakproof",
    "bullets": ["Keeps drinks cold 24h", "Leakproof lid", "BPA free", "Fits cup holders", "Easy-clean wide mouth"],
    "description": "A durable insulated bottle for daily use.",
    "keywords": {
      "primary": ["insulated bottle"],
      "secondary": ["stainless steel bottle"],
      "long_tail": ["leakproof insulated water bottle 750ml"]
    },
    "image_slots": [
      {"name": "hero", "brief": "Product on white background"},
      {"name": "lifestyle", "brief": "In-hand outdoor shot"},
      {"name": "dimensions", "brief": "Size callouts"},
      {"name": "features", "brief": "Lid close-up"},
      {"name": "comparison", "brief": "Versus competitors"},
      {"name": "packaging", "brief": "Box contents"}
    ]
  }
}`

const suggestionsJSON = `{"suggestions": ["first suggestion", "second suggestion", "third suggestion"]}`

// Generate returns a canned, shape-valid response for the mode implied
// by the system prompt.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.Contains(systemPrompt, "listing pack"):
		return createJSON, nil
	case strings.Contains(systemPrompt, "suggestions"):
		return suggestionsJSON, nil
	default:
		return auditJSON, nil
	}
}
