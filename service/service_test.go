package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"github.com/ItsNaunas/E-CTRL-sub001/analyzer"
	"github.com/ItsNaunas/E-CTRL-sub001/database"
	"github.com/ItsNaunas/E-CTRL-sub001/llm"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/scraper"
	"github.com/ItsNaunas/E-CTRL-sub001/stubllm"
)

type fakeStrategy struct {
	result scraper.Result
	calls  int
}

func (f *fakeStrategy) Scrape(ctx context.Context, input string) scraper.Result {
	f.calls++
	return f.result
}

type fakeStore struct {
	leads        map[string]*models.Lead
	reports      map[string]*models.Report
	failUpdate   error
	failGet      error
	failSave     bool
	savedReports int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:   map[string]*models.Lead{},
		reports: map[string]*models.Report{},
	}
}

func (f *fakeStore) CreateLead(ctx context.Context, input *models.NormalizedInput) (*models.Lead, error) {
	lead := &models.Lead{ID: "lead-1", AuditType: input.Mode, ASIN: input.ASIN, URL: input.ProductURL}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetLead(ctx context.Context, leadID string) (*models.Lead, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	lead, ok := f.leads[leadID]
	if !ok {
		return nil, database.ErrLeadNotFound
	}
	return lead, nil
}

func (f *fakeStore) UpdateLeadContact(ctx context.Context, leadID, email, name string) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	lead, ok := f.leads[leadID]
	if !ok {
		return database.ErrLeadNotFound
	}
	lead.Email = email
	lead.Name = name
	return nil
}

func (f *fakeStore) SaveReport(ctx context.Context, leadID string, mode models.AuditMode, result *models.AnalysisResult) (*models.Report, error) {
	if f.failSave {
		return nil, errors.New("save failed")
	}
	report := &models.Report{ID: "report-1", LeadID: leadID, Mode: mode, Result: *result}
	f.reports[leadID] = report
	f.savedReports++
	return report, nil
}

func (f *fakeStore) GetLatestReportForLead(ctx context.Context, leadID string) (*models.Report, error) {
	report, ok := f.reports[leadID]
	if !ok {
		return nil, database.ErrReportNotFound
	}
	return report, nil
}

type fakeDispatcher struct {
	record       models.DeliveryRecord
	calls        int
	lastHadPDF   bool
	lastReportID string
	lastLead     *models.Lead
}

func (f *fakeDispatcher) Dispatch(lead *models.Lead, report *models.Report) models.DeliveryRecord {
	f.calls++
	f.lastLead = lead
	f.lastHadPDF = report != nil
	if report != nil {
		f.lastReportID = report.ID
	}
	record := f.record
	record.HasPDF = report != nil
	return record
}

type countingClient struct {
	llm.Client
	calls int
}

func (c *countingClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.calls++
	return c.Client.Generate(ctx, systemPrompt, userPrompt)
}

func testLogger() log.Interface {
	return &log.Logger{Handler: discard.Default, Level: log.ErrorLevel}
}

func newOrchestrator(store Store, marketplace, site scraper.Strategy, dispatcher Dispatcher, client llm.Client) *Orchestrator {
	return NewOrchestrator(store, marketplace, site, analyzer.NewEngine(client), dispatcher, time.Minute, testLogger())
}

func okScrape() scraper.Result {
	return scraper.Ok(&models.ScrapedProductData{Title: "Bamboo Cutting Board"})
}

func TestSubmitAuditExisting(t *testing.T) {
	store := newFakeStore()
	o := newOrchestrator(store, &fakeStrategy{result: okScrape()}, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	resp, err := o.SubmitAudit(context.Background(), &models.SubmitAuditRequest{Mode: "existing", ASIN: "B08N5WRWNW"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.LeadID == "" || resp.AIResult == nil {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if resp.AIResult.Score < 0 || resp.AIResult.Score > 100 {
		t.Errorf("score %d outside range", resp.AIResult.Score)
	}
	if store.savedReports != 1 {
		t.Errorf("expected one saved report, got %d", store.savedReports)
	}
}

// A valid identifier whose product page does not exist aborts with 404.
func TestSubmitAuditProductNotFound(t *testing.T) {
	marketplace := &fakeStrategy{result: scraper.Fail(scraper.CodeProductNotFound, "no product found for B08N5WRWNW")}
	o := newOrchestrator(newFakeStore(), marketplace, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	_, err := o.SubmitAudit(context.Background(), &models.SubmitAuditRequest{Mode: "existing", ASIN: "B08N5WRWNW"})
	perr := AsPipelineError(err)
	if perr.Status != http.StatusNotFound || perr.Code != CodeProductNotFound {
		t.Fatalf("expected 404 PRODUCT_NOT_FOUND, got %d %s", perr.Status, perr.Code)
	}
}

// A transient marketplace failure degrades: the audit completes
// without scraped data.
func TestSubmitAuditDegradedScrape(t *testing.T) {
	marketplace := &fakeStrategy{result: scraper.Fail(scraper.CodeFetchFailed, "timeout")}
	store := newFakeStore()
	o := newOrchestrator(store, marketplace, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	resp, err := o.SubmitAudit(context.Background(), &models.SubmitAuditRequest{Mode: "existing", ASIN: "B08N5WRWNW"})
	if err != nil {
		t.Fatalf("transient scrape failure must degrade, got %v", err)
	}
	if !resp.Success || store.savedReports != 1 {
		t.Errorf("degraded pipeline did not complete: %+v", resp)
	}
}

// Every URL-strategy failure is terminal with a manual-input
// suggestion, even when the underlying cause is transient.
func TestSubmitAuditURLScrapingFailed(t *testing.T) {
	site := &fakeStrategy{result: scraper.Fail(scraper.CodeFetchFailed, "connection refused")}
	o := newOrchestrator(newFakeStore(), &fakeStrategy{}, site, &fakeDispatcher{}, stubllm.NewClient())

	_, err := o.SubmitAudit(context.Background(), &models.SubmitAuditRequest{Mode: "new", URL: "not-a-real-site.example/product/123"})
	perr := AsPipelineError(err)
	if perr.Status != http.StatusBadRequest || perr.Code != CodeURLScrapingFailed {
		t.Fatalf("expected 400 URL_SCRAPING_FAILED, got %d %s", perr.Status, perr.Code)
	}
	if perr.Suggestion != "manual_input" {
		t.Errorf("expected manual_input suggestion, got %q", perr.Suggestion)
	}
}

func TestSubmitAuditManualPathSkipsScrape(t *testing.T) {
	site := &fakeStrategy{result: scraper.Fail(scraper.CodeFetchFailed, "must not be called")}
	o := newOrchestrator(newFakeStore(), &fakeStrategy{}, site, &fakeDispatcher{}, stubllm.NewClient())

	resp, err := o.SubmitAudit(context.Background(), &models.SubmitAuditRequest{
		Mode:        "new",
		Category:    "Kitchen",
		Description: "A bamboo cutting board set",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Errorf("manual path did not complete: %+v", resp)
	}
	if site.calls != 0 {
		t.Errorf("manual path must not scrape, got %d calls", site.calls)
	}
}

func TestSubmitAuditValidation(t *testing.T) {
	o := newOrchestrator(newFakeStore(), &fakeStrategy{}, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	testCases := []struct {
		name string
		req  models.SubmitAuditRequest
	}{
		{name: "unknown mode", req: models.SubmitAuditRequest{Mode: "audit"}},
		{name: "existing without identifier", req: models.SubmitAuditRequest{Mode: "existing"}},
		{name: "new without url or description", req: models.SubmitAuditRequest{Mode: "new"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.SubmitAudit(context.Background(), &tc.req)
			perr := AsPipelineError(err)
			if perr.Status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", perr.Status)
			}
		})
	}
}

func TestCheckOnly(t *testing.T) {
	store := newFakeStore()
	o := newOrchestrator(store, &fakeStrategy{result: okScrape()}, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	resp, err := o.CheckOnly(context.Background(), &models.SubmitAuditRequest{Mode: "existing", ASIN: "B08N5WRWNW", CheckOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || !resp.Scannable {
		t.Errorf("unexpected response: %+v", resp)
	}
	if store.savedReports != 0 || len(store.leads) != 0 {
		t.Error("check-only must not persist anything")
	}
}

// A transient marketplace failure is a full answer for an audit, but a
// scannability check without data must answer no.
func TestCheckOnlyDegradedScrapeNotScannable(t *testing.T) {
	marketplace := &fakeStrategy{result: scraper.Fail(scraper.CodeFetchFailed, "timeout")}
	o := newOrchestrator(newFakeStore(), marketplace, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	resp, err := o.CheckOnly(context.Background(), &models.SubmitAuditRequest{Mode: "existing", ASIN: "B08N5WRWNW", CheckOnly: true})
	if err != nil {
		t.Fatalf("transient scrape failure must not error the check, got %v", err)
	}
	if !resp.Success || resp.Scannable {
		t.Errorf("expected success with scannable=false, got %+v", resp)
	}
}

// Scenario: no prior report on file. The lead update succeeds and a
// welcome message goes out without an attachment.
func TestCaptureEmailWelcome(t *testing.T) {
	store := newFakeStore()
	store.leads["lead-1"] = &models.Lead{ID: "lead-1", AuditType: models.ModeExisting}
	messageID := "msg-123"
	dispatcher := &fakeDispatcher{record: models.DeliveryRecord{Success: true, MessageID: &messageID}}
	o := newOrchestrator(store, &fakeStrategy{}, &fakeStrategy{}, dispatcher, stubllm.NewClient())

	resp, err := o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{
		Email: "User@Example.com", Name: "Sam", LeadID: "lead-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.HasPDF {
		t.Errorf("expected welcome without pdf, got %+v", resp)
	}
	if dispatcher.calls != 1 || dispatcher.lastHadPDF {
		t.Errorf("expected one welcome dispatch, got calls=%d report=%v", dispatcher.calls, dispatcher.lastHadPDF)
	}
	if store.leads["lead-1"].Email != "user@example.com" {
		t.Errorf("email not normalized on lead: %q", store.leads["lead-1"].Email)
	}
}

func TestCaptureEmailWithReport(t *testing.T) {
	store := newFakeStore()
	store.leads["lead-1"] = &models.Lead{ID: "lead-1"}
	store.reports["lead-1"] = &models.Report{ID: "report-1", LeadID: "lead-1"}
	messageID := "msg-456"
	dispatcher := &fakeDispatcher{record: models.DeliveryRecord{Success: true, MessageID: &messageID}}
	o := newOrchestrator(store, &fakeStrategy{}, &fakeStrategy{}, dispatcher, stubllm.NewClient())

	resp, err := o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{
		Email: "user@example.com", Name: "Sam", LeadID: "lead-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || !resp.HasPDF {
		t.Errorf("expected report delivery, got %+v", resp)
	}
	if resp.MessageID == nil || *resp.MessageID != "msg-456" {
		t.Errorf("message id not carried: %v", resp.MessageID)
	}
	if dispatcher.lastReportID != "report-1" {
		t.Errorf("dispatched wrong report: %q", dispatcher.lastReportID)
	}
}

// Scenario: dispatch fails after the lead update succeeded. The flow
// still reports success, with a null message id.
func TestCaptureEmailDispatchFailure(t *testing.T) {
	store := newFakeStore()
	store.leads["lead-1"] = &models.Lead{ID: "lead-1"}
	dispatcher := &fakeDispatcher{record: models.DeliveryRecord{Success: false, Error: "provider down"}}
	o := newOrchestrator(store, &fakeStrategy{}, &fakeStrategy{}, dispatcher, stubllm.NewClient())

	resp, err := o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{
		Email: "user@example.com", Name: "Sam", LeadID: "lead-1",
	})
	if err != nil {
		t.Fatalf("dispatch failure must not fail the flow: %v", err)
	}
	if !resp.Success {
		t.Error("expected success despite dispatch failure")
	}
	if resp.MessageID != nil {
		t.Errorf("expected null message id, got %v", *resp.MessageID)
	}
	if resp.HasPDF {
		t.Error("failed dispatch must not claim a pdf was delivered")
	}
}

// Scenario: the lead reload fails after the contact update already
// persisted. The flow degrades, dispatching from the request fields.
func TestCaptureEmailReloadFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.leads["lead-1"] = &models.Lead{ID: "lead-1"}
	store.failGet = errors.New("connection lost")
	messageID := "msg-789"
	dispatcher := &fakeDispatcher{record: models.DeliveryRecord{Success: true, MessageID: &messageID}}
	o := newOrchestrator(store, &fakeStrategy{}, &fakeStrategy{}, dispatcher, stubllm.NewClient())

	resp, err := o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{
		Email: "User@Example.com", Name: "Sam", LeadID: "lead-1",
	})
	if err != nil {
		t.Fatalf("reload failure must not fail the flow: %v", err)
	}
	if !resp.Success {
		t.Error("expected success after a failed reload")
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.calls)
	}
	if dispatcher.lastLead == nil || dispatcher.lastLead.Email != "user@example.com" || dispatcher.lastLead.Name != "Sam" {
		t.Errorf("dispatch did not carry the request contact fields: %+v", dispatcher.lastLead)
	}
	if store.leads["lead-1"].Email != "user@example.com" {
		t.Errorf("contact update was lost: %q", store.leads["lead-1"].Email)
	}
}

func TestCaptureEmailFailures(t *testing.T) {
	store := newFakeStore()
	store.leads["lead-1"] = &models.Lead{ID: "lead-1"}
	o := newOrchestrator(store, &fakeStrategy{}, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	// Malformed e-mail is schema validation, 400.
	_, err := o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{Email: "nope", Name: "Sam", LeadID: "lead-1"})
	if perr := AsPipelineError(err); perr.Status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed email, got %d", perr.Status)
	}

	// Unknown lead is an input error.
	_, err = o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{Email: "user@example.com", Name: "Sam", LeadID: "missing"})
	if perr := AsPipelineError(err); perr.Status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown lead, got %d", perr.Status)
	}

	// A store failure on the update is the one fatal step.
	store.failUpdate = errors.New("connection lost")
	_, err = o.CaptureEmail(context.Background(), &models.CaptureEmailRequest{Email: "user@example.com", Name: "Sam", LeadID: "lead-1"})
	if perr := AsPipelineError(err); perr.Status != http.StatusInternalServerError {
		t.Errorf("expected 500 for update failure, got %d", perr.Status)
	}
}

type deadlineClient struct {
	llm.Client
	hadDeadline bool
}

func (c *deadlineClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	_, c.hadDeadline = ctx.Deadline()
	return c.Client.Generate(ctx, systemPrompt, userPrompt)
}

// Every generator invocation runs under a stage deadline, even when
// the incoming request context carries none.
func TestAnalysisStageIsDeadlineBounded(t *testing.T) {
	client := &deadlineClient{Client: stubllm.NewClient()}
	o := newOrchestrator(newFakeStore(), &fakeStrategy{result: okScrape()}, &fakeStrategy{}, &fakeDispatcher{}, client)

	if _, err := o.SubmitAudit(context.Background(), &models.SubmitAuditRequest{Mode: "existing", ASIN: "B08N5WRWNW"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.hadDeadline {
		t.Error("audit analysis ran without a deadline")
	}

	client.hadDeadline = false
	if _, err := o.Suggest(context.Background(), &models.SuggestRequest{
		Type: "keywords",
		Data: models.SuggestData{Category: "Kitchen", Description: "bamboo cutting board"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.hadDeadline {
		t.Error("suggestion generation ran without a deadline")
	}
}

func TestSuggest(t *testing.T) {
	o := newOrchestrator(newFakeStore(), &fakeStrategy{}, &fakeStrategy{}, &fakeDispatcher{}, stubllm.NewClient())

	resp, err := o.Suggest(context.Background(), &models.SuggestRequest{
		Type: "keywords",
		Data: models.SuggestData{Category: "Kitchen", Description: "bamboo cutting board"},
	})
	if err != nil || !resp.Success || len(resp.Suggestions) == 0 {
		t.Fatalf("expected suggestions, got %+v (%v)", resp, err)
	}

	resp, err = o.Suggest(context.Background(), &models.SuggestRequest{
		Type: "title",
		Data: models.SuggestData{Category: "Kitchen", Description: "bamboo cutting board", Keywords: []string{"bamboo"}},
	})
	if err != nil || len(resp.Suggestions) == 0 {
		t.Fatalf("expected title suggestions, got %+v (%v)", resp, err)
	}
}

// Scenario: a keywords request missing its description fails fast,
// before any generator call.
func TestSuggestMissingFields(t *testing.T) {
	counting := &countingClient{Client: stubllm.NewClient()}
	o := newOrchestrator(newFakeStore(), &fakeStrategy{}, &fakeStrategy{}, &fakeDispatcher{}, counting)

	_, err := o.Suggest(context.Background(), &models.SuggestRequest{
		Type: "keywords",
		Data: models.SuggestData{Category: "Kitchen"},
	})
	perr := AsPipelineError(err)
	if perr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", perr.Status)
	}
	if counting.calls != 0 {
		t.Errorf("generator must not be called, got %d calls", counting.calls)
	}

	_, err = o.Suggest(context.Background(), &models.SuggestRequest{
		Type: "haiku",
		Data: models.SuggestData{Category: "Kitchen", Description: "board"},
	})
	if perr := AsPipelineError(err); perr.Status != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid type, got %d", perr.Status)
	}
}
