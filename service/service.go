// Package service sequences the lead-to-report pipeline: validation,
// product scraping, analysis, persistence and delivery.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"

	"github.com/ItsNaunas/E-CTRL-sub001/analyzer"
	"github.com/ItsNaunas/E-CTRL-sub001/database"
	"github.com/ItsNaunas/E-CTRL-sub001/metrics"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/scraper"
	"github.com/ItsNaunas/E-CTRL-sub001/validator"
)

// Store is the lead/report persistence contract the orchestrator
// depends on.
type Store interface {
	CreateLead(ctx context.Context, input *models.NormalizedInput) (*models.Lead, error)
	GetLead(ctx context.Context, leadID string) (*models.Lead, error)
	UpdateLeadContact(ctx context.Context, leadID, email, name string) error
	SaveReport(ctx context.Context, leadID string, mode models.AuditMode, result *models.AnalysisResult) (*models.Report, error)
	GetLatestReportForLead(ctx context.Context, leadID string) (*models.Report, error)
}

// Dispatcher sends lead e-mails. Failure is carried in the record,
// never as an error.
type Dispatcher interface {
	Dispatch(lead *models.Lead, report *models.Report) models.DeliveryRecord
}

// Orchestrator runs each pipeline invocation as a strictly sequential
// request/response computation. It holds no per-request state.
type Orchestrator struct {
	store        Store
	marketplace  scraper.Strategy
	site         scraper.Strategy
	engine       *analyzer.Engine
	dispatcher   Dispatcher
	stageTimeout time.Duration
	logger       log.Interface
}

// NewOrchestrator wires the pipeline stages together. stageTimeout
// bounds each analysis and store stage; the scrapers carry their own.
func NewOrchestrator(store Store, marketplace, site scraper.Strategy, engine *analyzer.Engine, dispatcher Dispatcher, stageTimeout time.Duration, logger log.Interface) *Orchestrator {
	return &Orchestrator{
		store:        store,
		marketplace:  marketplace,
		site:         site,
		engine:       engine,
		dispatcher:   dispatcher,
		stageTimeout: stageTimeout,
		logger:       logger,
	}
}

// boundStage caps one pipeline stage at the configured timeout. A zero
// timeout leaves the caller's context untouched.
func (o *Orchestrator) boundStage(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.stageTimeout)
}

// CheckOnly validates the submission and confirms the product page is
// scrapable, without running analysis or touching the store.
func (o *Orchestrator) CheckOnly(ctx context.Context, req *models.SubmitAuditRequest) (*models.CheckOnlyResponse, error) {
	mode, input, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	scraped, err := o.scrape(ctx, mode, input)
	if err != nil {
		return nil, err
	}
	// A degraded scrape is a full answer for an audit but not for a
	// scannability check: no data means not scannable.
	return &models.CheckOnlyResponse{Success: true, Scannable: scraped != nil}, nil
}

// SubmitAudit runs the full pipeline: validate, scrape where
// applicable, analyze, persist the lead and report.
func (o *Orchestrator) SubmitAudit(ctx context.Context, req *models.SubmitAuditRequest) (*models.SubmitAuditResponse, error) {
	mode, input, err := o.validate(req)
	if err != nil {
		metrics.AuditsTotal.WithLabelValues(req.Mode, "validation_failed").Inc()
		return nil, err
	}

	logger := o.logger.WithField("mode", string(mode))

	scraped, err := o.scrape(ctx, mode, input)
	if err != nil {
		metrics.AuditsTotal.WithLabelValues(string(mode), "scrape_failed").Inc()
		return nil, err
	}

	result, err := o.analyze(ctx, mode, input, scraped)
	if err != nil {
		logger.WithError(err).Error("analysis failed")
		metrics.AuditsTotal.WithLabelValues(string(mode), "analysis_failed").Inc()
		return nil, analysisError(err)
	}

	lead, err := o.store.CreateLead(ctx, input)
	if err != nil {
		logger.WithError(err).Error("failed to create lead")
		metrics.AuditsTotal.WithLabelValues(string(mode), "store_failed").Inc()
		return nil, internalError(CodeStoreFailure, "something failed on our side - try again")
	}
	if _, err := o.store.SaveReport(ctx, lead.ID, mode, result); err != nil {
		logger.WithError(err).Error("failed to save report")
		metrics.AuditsTotal.WithLabelValues(string(mode), "store_failed").Inc()
		return nil, internalError(CodeStoreFailure, "something failed on our side - try again")
	}

	logger.WithFields(log.Fields{"lead_id": lead.ID, "score": result.Score}).Info("audit completed")
	metrics.AuditsTotal.WithLabelValues(string(mode), "ok").Inc()
	return &models.SubmitAuditResponse{Success: true, LeadID: lead.ID, AIResult: result}, nil
}

// CaptureEmail attaches contact details to an existing lead and
// dispatches the report e-mail. The lead update is the only fatal
// step; report lookup and dispatch failures degrade.
func (o *Orchestrator) CaptureEmail(ctx context.Context, req *models.CaptureEmailRequest) (*models.CaptureEmailResponse, error) {
	email, err := validator.ValidateEmail(req.Email)
	if err != nil {
		return nil, invalidInput(err.Error())
	}
	name := validator.SanitizeText(req.Name)
	if name == "" {
		return nil, invalidInput("name is required")
	}

	logger := o.logger.WithField("lead_id", req.LeadID)

	ctx, cancel := o.boundStage(ctx)
	defer cancel()

	if err := o.store.UpdateLeadContact(ctx, req.LeadID, email, name); err != nil {
		if errors.Is(err, database.ErrLeadNotFound) {
			return nil, invalidInput("unknown lead identifier")
		}
		logger.WithError(err).Error("lead update failed")
		return nil, internalError(CodeStoreFailure, "failed to save contact details - try again")
	}

	// The contact data is already persisted, so a failed reload must
	// not fail the flow: fall back to the fields the request carried.
	lead, err := o.store.GetLead(ctx, req.LeadID)
	if err != nil {
		logger.WithError(err).Warn("lead reload failed, dispatching from request fields")
		lead = &models.Lead{ID: req.LeadID, Email: email, Name: name}
	}

	// A missing report is the valid welcome path, and any other lookup
	// failure degrades to it: data capture already succeeded.
	report, err := o.store.GetLatestReportForLead(ctx, req.LeadID)
	if err != nil {
		report = nil
		logger.WithError(err).Info("no report available, sending welcome email")
	}

	record := o.dispatcher.Dispatch(lead, report)
	if !record.Success {
		logger.WithField("error", record.Error).Warn("email dispatch failed")
	}

	return &models.CaptureEmailResponse{
		Success:   true,
		MessageID: record.MessageID,
		HasPDF:    record.Success && record.HasPDF,
	}, nil
}

// Suggest generates keyword or title suggestions from manual fields.
// Field presence is checked before any external call.
func (o *Orchestrator) Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error) {
	category := validator.SanitizeText(req.Data.Category)
	description := validator.SanitizeText(req.Data.Description)
	if category == "" || description == "" {
		metrics.SuggestionsTotal.WithLabelValues(req.Type, "validation_failed").Inc()
		return nil, invalidInput("category and description are required")
	}

	var keywords []string
	for _, kw := range req.Data.Keywords {
		if cleaned := validator.SanitizeText(kw); cleaned != "" {
			keywords = append(keywords, cleaned)
		}
	}

	ctx, cancel := o.boundStage(ctx)
	defer cancel()

	var suggestions []string
	var err error
	switch req.Type {
	case "keywords":
		suggestions, err = o.engine.SuggestKeywords(ctx, category, description)
	case "title":
		suggestions, err = o.engine.SuggestTitles(ctx, category, description, keywords)
	default:
		metrics.SuggestionsTotal.WithLabelValues(req.Type, "validation_failed").Inc()
		return nil, invalidInput("type must be keywords or title")
	}
	if err != nil {
		o.logger.WithError(err).WithField("type", req.Type).Error("suggestion generation failed")
		metrics.SuggestionsTotal.WithLabelValues(req.Type, "error").Inc()
		return nil, analysisError(err)
	}

	metrics.SuggestionsTotal.WithLabelValues(req.Type, "ok").Inc()
	return &models.SuggestResponse{Success: true, Suggestions: suggestions}, nil
}

func (o *Orchestrator) validate(req *models.SubmitAuditRequest) (models.AuditMode, *models.NormalizedInput, error) {
	mode, err := validator.ParseAuditMode(req.Mode)
	if err != nil {
		return "", nil, invalidInput(err.Error())
	}
	input, err := validator.Validate(mode, req)
	if err != nil {
		return "", nil, invalidInput(err.Error())
	}
	return mode, input, nil
}

// scrape runs the strategy for the mode and applies the degradation
// policy: identifier scrapes degrade on transient failures, URL
// scrapes are terminal on any failure because the only recovery is
// switching to manual input.
func (o *Orchestrator) scrape(ctx context.Context, mode models.AuditMode, input *models.NormalizedInput) (*models.ScrapedProductData, error) {
	switch mode {
	case models.ModeExisting:
		result := o.marketplace.Scrape(ctx, input.ASIN)
		if result.Err == nil {
			metrics.ScrapesTotal.WithLabelValues("marketplace", "ok").Inc()
			return result.Data, nil
		}
		metrics.ScrapesTotal.WithLabelValues("marketplace", result.Err.Code).Inc()
		if result.Err.Terminal() {
			return nil, terminalScrapeError(result.Err)
		}
		o.logger.WithFields(log.Fields{"asin": input.ASIN, "code": result.Err.Code}).
			Warn("scrape degraded, continuing without product data")
		return nil, nil

	case models.ModeNew:
		if input.ProductURL == "" {
			// Manual path: nothing to scrape.
			return nil, nil
		}
		result := o.site.Scrape(ctx, input.ProductURL)
		if result.Err == nil {
			metrics.ScrapesTotal.WithLabelValues("site", "ok").Inc()
			return result.Data, nil
		}
		metrics.ScrapesTotal.WithLabelValues("site", result.Err.Code).Inc()
		return nil, &PipelineError{
			Status:     http.StatusBadRequest,
			Code:       CodeURLScrapingFailed,
			Message:    "could not read the product page",
			Suggestion: "manual_input",
		}
	}
	return nil, nil
}

func (o *Orchestrator) analyze(ctx context.Context, mode models.AuditMode, input *models.NormalizedInput, scraped *models.ScrapedProductData) (*models.AnalysisResult, error) {
	ctx, cancel := o.boundStage(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.AnalysisDurationSeconds.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()

	if mode == models.ModeExisting {
		return o.engine.AuditExisting(ctx, input, scraped)
	}
	return o.engine.AuditNew(ctx, input, scraped)
}

func terminalScrapeError(serr *scraper.ScrapeError) *PipelineError {
	status := http.StatusBadRequest
	if serr.Code == scraper.CodeProductNotFound {
		status = http.StatusNotFound
	}
	return &PipelineError{Status: status, Code: serr.Code, Message: serr.Message}
}
