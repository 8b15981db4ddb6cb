package validator

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

// Validation is pure: every function here maps raw input to a
// normalized value or an error, with no side effects. All functions
// are idempotent on their own output.

var (
	// Conservative address pattern: local@domain.tld. Anything this
	// rejects is not worth sending mail to.
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	asinRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)

	// Identifier embedded in a product URL, immediately after a known
	// product-path marker.
	urlASINRe = regexp.MustCompile(`/(?:dp|gp/product|gp/aw/d|product)/([A-Z0-9]{10})(?:[/?]|$)`)
)

// ErrNoIdentifier is returned when a well-formed URL carries no
// recognizable product identifier.
var ErrNoIdentifier = errors.New("no product identifier found in URL")

// ErrMalformedURL is returned when the input is neither a bare
// identifier nor a parseable URL.
var ErrMalformedURL = errors.New("input is not a valid identifier or URL")

// ValidateEmail normalizes an e-mail address to trimmed lower case.
func ValidateEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	if !emailRe.MatchString(email) {
		return "", fmt.Errorf("invalid email address: %q", raw)
	}
	return email, nil
}

// ParseIdentifier accepts either a bare 10-character alphanumeric
// marketplace identifier or a product URL containing one, and returns
// the uppercase identifier.
func ParseIdentifier(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", errors.New("identifier is required")
	}

	if asinRe.MatchString(strings.ToUpper(input)) {
		return strings.ToUpper(input), nil
	}

	u, err := url.Parse(withScheme(input))
	if err != nil || u.Host == "" {
		return "", ErrMalformedURL
	}

	if m := urlASINRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}
	return "", ErrNoIdentifier
}

// ValidateProductURL checks that raw is an absolute http(s) URL with a
// host, returning it with a scheme prepended when missing.
func ValidateProductURL(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", errors.New("product URL is required")
	}

	normalized := withScheme(input)
	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return "", ErrMalformedURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrMalformedURL
	}
	return u.String(), nil
}

// SanitizeText strips angle brackets from free-form fields. This
// neutralizes trivial markup injection only; it is a minimal defense,
// not a security boundary, and output is not HTML-safe.
func SanitizeText(raw string) string {
	replacer := strings.NewReplacer("<", "", ">", "")
	return strings.TrimSpace(replacer.Replace(raw))
}

// ParseAuditMode validates the raw mode string into the closed enum.
func ParseAuditMode(raw string) (models.AuditMode, error) {
	switch models.AuditMode(strings.ToLower(strings.TrimSpace(raw))) {
	case models.ModeExisting:
		return models.ModeExisting, nil
	case models.ModeNew:
		return models.ModeNew, nil
	}
	return "", fmt.Errorf("unknown audit mode: %q", raw)
}

// Validate normalizes a full audit submission into a NormalizedInput.
func Validate(mode models.AuditMode, req *models.SubmitAuditRequest) (*models.NormalizedInput, error) {
	input := &models.NormalizedInput{
		Mode:        mode,
		Category:    SanitizeText(req.Category),
		Description: SanitizeText(req.Description),
	}
	for _, kw := range req.Keywords {
		if cleaned := SanitizeText(kw); cleaned != "" {
			input.Keywords = append(input.Keywords, cleaned)
		}
	}

	switch mode {
	case models.ModeExisting:
		raw := req.ASIN
		if raw == "" {
			raw = req.URL
		}
		asin, err := ParseIdentifier(raw)
		if err != nil {
			return nil, err
		}
		input.ASIN = asin
	case models.ModeNew:
		// Either a product URL to scrape, or a manual description.
		if req.URL != "" {
			u, err := ValidateProductURL(req.URL)
			if err != nil {
				return nil, err
			}
			input.ProductURL = u
		} else if input.Description == "" {
			return nil, errors.New("either a product URL or a description is required")
		}
	}
	return input, nil
}

func withScheme(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}
