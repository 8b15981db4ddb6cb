package scraper

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/apex/log"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

var marketplaceASINRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// Browser-like user agents rotated across fetches. The marketplace
// serves a captcha interstitial to obvious automation.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// MarketplaceScraper fetches a marketplace product page by ASIN and
// extracts listing attributes. The http.Client is injected once at
// construction and reused for every request.
type MarketplaceScraper struct {
	client  *http.Client
	baseURL string
}

// NewMarketplaceScraper creates a marketplace strategy with a bounded
// fetch timeout.
func NewMarketplaceScraper(timeout time.Duration, baseURL string) *MarketplaceScraper {
	return &MarketplaceScraper{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// NewMarketplaceScraperWithBase is used by tests to point the strategy
// at a local server.
func NewMarketplaceScraperWithBase(client *http.Client, baseURL string) *MarketplaceScraper {
	return &MarketplaceScraper{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Scrape fetches and parses the product page for the given ASIN.
func (s *MarketplaceScraper) Scrape(ctx context.Context, asin string) Result {
	asin = strings.ToUpper(strings.TrimSpace(asin))
	if asin == "" {
		return Fail(CodeInvalidInput, "identifier is required")
	}
	if !marketplaceASINRe.MatchString(asin) {
		return Fail(CodeInvalidASIN, "malformed identifier: %q", asin)
	}

	endpoint := s.baseURL + "/dp/" + asin
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Fail(CodeFetchFailed, "building request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return Fail(CodeFetchFailed, "fetching product page: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Fail(CodeProductNotFound, "no product found for %s", asin)
	case resp.StatusCode != http.StatusOK:
		return Fail(CodeFetchFailed, "product page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Fail(CodeFetchFailed, "parsing product page: %v", err)
	}

	if botChallenge(doc) {
		log.WithField("asin", asin).Warn("marketplace served a captcha challenge")
		return Fail(CodeFetchFailed, "marketplace requested captcha verification")
	}

	data := &models.ScrapedProductData{
		Title: strings.TrimSpace(doc.Find("#productTitle").First().Text()),
		Price: firstNonEmpty(
			strings.TrimSpace(doc.Find("span#priceblock_ourprice").First().Text()),
			strings.TrimSpace(doc.Find("span#priceblock_dealprice").First().Text()),
			strings.TrimSpace(doc.Find("span.a-price span.a-offscreen").First().Text()),
		),
		Category: breadcrumbCategory(doc),
	}

	doc.Find("#feature-bullets li span.a-list-item").Each(func(i int, sel *goquery.Selection) {
		if txt := strings.TrimSpace(sel.Text()); txt != "" {
			data.BulletPoints = append(data.BulletPoints, txt)
		}
	})

	if src := doc.Find("img#landingImage").AttrOr("src", ""); src != "" {
		data.Images = append(data.Images, src)
	}
	doc.Find("#altImages img").Each(func(i int, sel *goquery.Selection) {
		if src := sel.AttrOr("src", ""); src != "" {
			data.Images = append(data.Images, src)
		}
	})

	// A page with no title is a dog page or a delisted product, not a
	// transient failure.
	if data.Title == "" {
		return Fail(CodeProductNotFound, "product page for %s carries no listing data", asin)
	}
	return Ok(data)
}

// botChallenge detects the marketplace captcha interstitial.
func botChallenge(doc *goquery.Document) bool {
	if doc.Find(`form[action*="validateCaptcha"]`).Length() > 0 {
		return true
	}
	if doc.Find("#captchacharacters").Length() > 0 {
		return true
	}
	content := strings.ToLower(doc.Text())
	return strings.Contains(content, "enter the characters you see")
}

func breadcrumbCategory(doc *goquery.Document) string {
	var crumbs []string
	doc.Find("#wayfinding-breadcrumbs_feature_div li a").Each(func(i int, sel *goquery.Selection) {
		if txt := strings.TrimSpace(sel.Text()); txt != "" {
			crumbs = append(crumbs, txt)
		}
	})
	return strings.Join(crumbs, " > ")
}

func userAgent() string {
	idx := int(time.Now().UnixNano()) % len(userAgents)
	if idx < 0 {
		idx = -idx
	}
	return userAgents[idx]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
