package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/stubllm"
)

type failingClient struct{}

func (failingClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("provider unavailable")
}

func (failingClient) SourceName() string { return "failing" }

type emptyClient struct{}

func (emptyClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}

func (emptyClient) SourceName() string { return "empty" }

func TestAuditExisting(t *testing.T) {
	engine := NewEngine(stubllm.NewClient())
	input := &models.NormalizedInput{Mode: models.ModeExisting, ASIN: "B08N5WRWNW"}
	scraped := &models.ScrapedProductData{Title: "Bamboo Cutting Board"}

	result, err := engine.AuditExisting(context.Background(), input, scraped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score < 0 || result.Score > 100 {
		t.Errorf("score %d outside range", result.Score)
	}
	if result.Highlights == nil || result.Recommendations == nil {
		t.Error("collections must never be nil")
	}

	// Degraded scrape: the audit still runs on input fields alone.
	result, err = engine.AuditExisting(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("unexpected error without scraped data: %v", err)
	}
	if result.Title == "" {
		t.Error("expected a titled result")
	}
}

func TestAuditNew(t *testing.T) {
	engine := NewEngine(stubllm.NewClient())
	input := &models.NormalizedInput{
		Mode:        models.ModeNew,
		ProductURL:  "https://shop.example.com/widget",
		Category:    "Kitchen",
		Description: "A bamboo cutting board set",
	}

	result, err := engine.AuditNew(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Listing == nil {
		t.Fatal("create mode must return a listing pack")
	}
	if len(result.Listing.ImageSlots) != 6 {
		t.Errorf("expected 6 image slots, got %d", len(result.Listing.ImageSlots))
	}
	if len(result.Listing.Keywords.Primary) == 0 {
		t.Error("expected primary keywords")
	}
}

func TestSuggest(t *testing.T) {
	engine := NewEngine(stubllm.NewClient())

	keywords, err := engine.SuggestKeywords(context.Background(), "Kitchen", "bamboo cutting board")
	if err != nil || len(keywords) == 0 {
		t.Fatalf("expected keyword suggestions, got %v (%v)", keywords, err)
	}

	titles, err := engine.SuggestTitles(context.Background(), "Kitchen", "bamboo cutting board", keywords)
	if err != nil || len(titles) == 0 {
		t.Fatalf("expected title suggestions, got %v (%v)", titles, err)
	}
}

func TestGeneratorFailures(t *testing.T) {
	input := &models.NormalizedInput{Mode: models.ModeExisting, ASIN: "B08N5WRWNW"}

	engine := NewEngine(failingClient{})
	if _, err := engine.AuditExisting(context.Background(), input, nil); err == nil {
		t.Error("expected error from failing provider")
	}

	// An empty response is an analysis error, distinct from a low score.
	engine = NewEngine(emptyClient{})
	if _, err := engine.AuditExisting(context.Background(), input, nil); err == nil {
		t.Error("expected error for empty generator response")
	}
}
