package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ItsNaunas/E-CTRL-sub001/llm"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/parser"
)

// Engine runs AI content generation for the four analysis modes. The
// provider is an external black box: the engine guarantees result
// shape and range, not reproducibility.
type Engine struct {
	client llm.Client
}

// NewEngine creates an analysis engine over the given provider.
func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client}
}

// SourceName exposes the underlying provider label for logs.
func (e *Engine) SourceName() string {
	return e.client.SourceName()
}

// AuditExisting audits a live marketplace listing. Scraped data is
// optional; the audit runs on whatever signal is available.
func (e *Engine) AuditExisting(ctx context.Context, input *models.NormalizedInput, scraped *models.ScrapedProductData) (*models.AnalysisResult, error) {
	payload := buildPayload(input, scraped)
	response, err := e.client.Generate(ctx, promptAuditExisting, payload)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return parser.ParseAudit(response, false)
}

// AuditNew audits external product data and generates a full listing
// pack for a new marketplace listing.
func (e *Engine) AuditNew(ctx context.Context, input *models.NormalizedInput, scraped *models.ScrapedProductData) (*models.AnalysisResult, error) {
	payload := buildPayload(input, scraped)
	response, err := e.client.Generate(ctx, promptAuditNew, payload)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return parser.ParseAudit(response, true)
}

// SuggestKeywords returns a ranked keyword list for a category and
// free-text description.
func (e *Engine) SuggestKeywords(ctx context.Context, category, description string) ([]string, error) {
	payload := fmt.Sprintf("Category: %s\nDescription: %s", category, description)
	response, err := e.client.Generate(ctx, promptKeywords, payload)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return parser.ParseSuggestions(response)
}

// SuggestTitles returns candidate listing titles.
func (e *Engine) SuggestTitles(ctx context.Context, category, description string, keywords []string) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\nDescription: %s\n", category, description)
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(keywords, ", "))
	}
	response, err := e.client.Generate(ctx, promptTitles, b.String())
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return parser.ParseSuggestions(response)
}

// buildPayload renders the user message for audit modes: the
// normalized input plus whatever the scrape produced.
func buildPayload(input *models.NormalizedInput, scraped *models.ScrapedProductData) string {
	var b strings.Builder

	switch input.Mode {
	case models.ModeExisting:
		fmt.Fprintf(&b, "ASIN: %s\n", input.ASIN)
	case models.ModeNew:
		fmt.Fprintf(&b, "Source URL: %s\n", input.ProductURL)
	}
	if input.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", input.Category)
	}
	if input.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", input.Description)
	}
	if len(input.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(input.Keywords, ", "))
	}

	if scraped == nil {
		b.WriteString("Scraped data: none (work from the fields above)\n")
		return b.String()
	}

	// Structured scrape data travels as JSON so the provider sees field
	// boundaries.
	encoded, err := json.Marshal(scraped)
	if err != nil {
		return b.String()
	}
	fmt.Fprintf(&b, "Scraped data: %s\n", encoded)
	return b.String()
}
