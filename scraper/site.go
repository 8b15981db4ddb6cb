package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/validator"
)

// Pages larger than this are truncated before parsing.
const siteFetchSizeCap = 4 << 20

// SiteScraper extracts product attributes from an arbitrary product
// page URL: meta/OpenGraph tags, headings, body text and images. The
// orchestrator treats every failure from this strategy as terminal.
type SiteScraper struct {
	client    *http.Client
	userAgent string
}

// NewSiteScraper creates a site-page strategy with a bounded fetch
// timeout.
func NewSiteScraper(timeout time.Duration) *SiteScraper {
	return &SiteScraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent(),
	}
}

// NewSiteScraperWithClient is used by tests.
func NewSiteScraperWithClient(client *http.Client) *SiteScraper {
	return &SiteScraper{client: client, userAgent: userAgent()}
}

// Scrape fetches rawURL and extracts whatever product signal the page
// exposes.
func (s *SiteScraper) Scrape(ctx context.Context, rawURL string) Result {
	pageURL, err := validator.ValidateProductURL(rawURL)
	if err != nil {
		return Fail(CodeInvalidInput, "invalid product URL: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Fail(CodeFetchFailed, "building request: %v", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return Fail(CodeFetchFailed, "fetching page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return Fail(CodeFetchFailed, "page returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, siteFetchSizeCap))
	if err != nil {
		return Fail(CodeFetchFailed, "reading page body: %v", err)
	}

	// Decode to UTF-8 before handing the page to goquery.
	enc, _, _ := charset.DetermineEncoding(raw, resp.Header.Get("Content-Type"))
	utf8data, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		if !utf8.Valid(raw) {
			return Fail(CodeFetchFailed, "undecodable page encoding")
		}
		utf8data = raw
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return Fail(CodeFetchFailed, "parsing page: %v", err)
	}

	doc.Find("script,noscript,style").Each(func(i int, sel *goquery.Selection) {
		sel.Remove()
	})

	data := &models.ScrapedProductData{}

	data.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if data.Title == "" {
		data.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if data.Title == "" {
		data.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	data.Price = firstNonEmpty(
		strings.TrimSpace(doc.Find(`meta[property="product:price:amount"]`).AttrOr("content", "")),
		strings.TrimSpace(doc.Find(`meta[property="og:price:amount"]`).AttrOr("content", "")),
		strings.TrimSpace(doc.Find(`[itemprop="price"]`).First().AttrOr("content", "")),
	)

	if img := doc.Find(`meta[property="og:image"]`).AttrOr("content", ""); img != "" {
		data.Images = append(data.Images, img)
	}
	doc.Find("img").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if src := sel.AttrOr("src", ""); strings.HasPrefix(src, "http") {
			data.Images = append(data.Images, src)
		}
		return len(data.Images) < 8
	})

	desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	if desc != "" {
		data.BulletPoints = append(data.BulletPoints, desc)
	}
	doc.Find("li").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		txt := strings.TrimSpace(sel.Text())
		if txt != "" && len(txt) < 300 {
			data.BulletPoints = append(data.BulletPoints, txt)
		}
		return len(data.BulletPoints) < 12
	})

	if data.Title == "" && len(data.BulletPoints) == 0 {
		return Fail(CodeFetchFailed, "page carries no extractable product data")
	}
	return Ok(data)
}
