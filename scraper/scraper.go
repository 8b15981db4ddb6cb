package scraper

import (
	"context"
	"fmt"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

// Failure codes carried on ScrapeError. INVALID_INPUT, INVALID_ASIN
// and PRODUCT_NOT_FOUND are terminal; FETCH_FAILED is the transient
// class the identifier pipeline degrades on. URL_SCRAPING_FAILED is
// applied by the orchestrator to any site-strategy failure.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidASIN       = "INVALID_ASIN"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeFetchFailed       = "FETCH_FAILED"
	CodeURLScrapingFailed = "URL_SCRAPING_FAILED"
)

// ScrapeError classifies a scrape failure for pipeline policy.
type ScrapeError struct {
	Code    string
	Message string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Terminal reports whether the pipeline must abort rather than degrade
// when the identifier strategy returns this error.
func (e *ScrapeError) Terminal() bool {
	switch e.Code {
	case CodeInvalidInput, CodeInvalidASIN, CodeProductNotFound:
		return true
	}
	return false
}

// Result is the tagged outcome of one scrape attempt: exactly one of
// Data or Err is set. Branching on Err replaces ad hoc field-presence
// checks.
type Result struct {
	Data *models.ScrapedProductData
	Err  *ScrapeError
}

// Ok wraps scraped data in a successful Result.
func Ok(data *models.ScrapedProductData) Result {
	return Result{Data: data}
}

// Fail wraps a classified failure in a Result.
func Fail(code, format string, args ...any) Result {
	return Result{Err: &ScrapeError{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// Strategy extracts structured product attributes from an external
// page. Implementations are safe for concurrent use and bound every
// outbound fetch by the client timeout.
type Strategy interface {
	Scrape(ctx context.Context, input string) Result
}
