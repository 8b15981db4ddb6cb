package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

// extractJSONFromMarkdown extracts JSON from markdown code blocks.
// Providers wrap output in ``` fences often enough that we always
// strip them before unmarshalling.
func extractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseAudit parses a generator response into an AnalysisResult and
// validates its shape. requireListing is set for create-mode audits.
// An empty response is an error; a low score is not.
func ParseAudit(response string, requireListing bool) (*models.AnalysisResult, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, errors.New("empty generator response")
	}

	jsonContent := extractJSONFromMarkdown(cleaned)

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(jsonContent), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if result.Title == "" {
		return nil, errors.New("title is required")
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("score %d outside [0,100]", result.Score)
	}
	// Highlights and recommendations may be empty, never absent.
	if result.Highlights == nil {
		result.Highlights = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	if result.DetailedAnalysis == nil {
		result.DetailedAnalysis = map[string]string{}
	}

	if requireListing {
		if err := validateListing(result.Listing); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

// ParseSuggestions parses a suggestion response into a ranked list.
func ParseSuggestions(response string) ([]string, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, errors.New("empty generator response")
	}

	jsonContent := extractJSONFromMarkdown(cleaned)

	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(jsonContent), &payload); err != nil {
		// Some responses come back as a bare JSON array.
		var bare []string
		if err2 := json.Unmarshal([]byte(jsonContent), &bare); err2 == nil {
			payload.Suggestions = bare
		} else {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
	}

	var out []string
	for _, s := range payload.Suggestions {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("generator returned no suggestions")
	}
	return out, nil
}

func validateListing(listing *models.ListingPack) error {
	if listing == nil {
		return errors.New("listing pack is required for create mode")
	}
	if listing.Title == "" {
		return errors.New("listing title is required")
	}
	if len(listing.Bullets) == 0 {
		return errors.New("listing bullets are required")
	}
	if listing.Description == "" {
		return errors.New("listing description is required")
	}
	if len(listing.ImageSlots) != 6 {
		return fmt.Errorf("listing must carry 6 image slots, got %d", len(listing.ImageSlots))
	}
	for _, slot := range listing.ImageSlots {
		if slot.Name == "" {
			return errors.New("image slot missing name")
		}
	}
	return nil
}
