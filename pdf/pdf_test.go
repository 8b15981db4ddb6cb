package pdf

import (
	"bytes"
	"testing"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

func TestBuildReport(t *testing.T) {
	report := &models.Report{
		ID: "report-1",
		Result: models.AnalysisResult{
			Title:            "Solid listing with weak imagery",
			Score:            72,
			Highlights:       []string{"Clear title", "Good price point"},
			Recommendations:  []string{"Add lifestyle images"},
			DetailedAnalysis: map[string]string{"images": "Only two images present."},
		},
	}

	document, err := BuildReport(report, "Sam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(document, []byte("%PDF")) {
		t.Error("output is not a pdf document")
	}
	if len(document) < 1000 {
		t.Errorf("document suspiciously small: %d bytes", len(document))
	}
}

func TestBuildReportWithListing(t *testing.T) {
	report := &models.Report{
		Result: models.AnalysisResult{
			Title: "Generated listing",
			Score: 64,
			Listing: &models.ListingPack{
				Title:       "Premium Bamboo Cutting Board Set",
				Bullets:     []string{"Durable", "Easy to clean"},
				Description: "A three piece bamboo cutting board set.",
				ImageSlots: []models.ImageSlot{
					{Name: "hero", Brief: "Board set on white background"},
					{Name: "lifestyle", Brief: "In-kitchen use"},
				},
			},
		},
	}

	document, err := BuildReport(report, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(document, []byte("%PDF")) {
		t.Error("output is not a pdf document")
	}
}
