package service

import (
	"errors"
	"net/http"

	"github.com/ItsNaunas/E-CTRL-sub001/openai"
)

// Error codes the caller is expected to branch on.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidASIN        = "INVALID_ASIN"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeURLScrapingFailed  = "URL_SCRAPING_FAILED"
	CodeAnalysisFailed     = "ANALYSIS_FAILED"
	CodeStoreFailure       = "STORE_FAILURE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// PipelineError is a pipeline failure with an HTTP status and a
// machine-readable code. Suggestion, when set, names a recovery path
// the caller can offer the user.
type PipelineError struct {
	Status     int
	Code       string
	Message    string
	Suggestion string
}

func (e *PipelineError) Error() string {
	return e.Message
}

func invalidInput(message string) *PipelineError {
	return &PipelineError{Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: message}
}

func internalError(code, message string) *PipelineError {
	return &PipelineError{Status: http.StatusInternalServerError, Code: code, Message: message}
}

// analysisError maps a generator failure onto a pipeline error. A
// provider that was never configured is a deployment problem, not a
// bad request, so it surfaces as service-unavailable.
func analysisError(err error) *PipelineError {
	if errors.Is(err, openai.ErrNotConfigured) {
		return &PipelineError{Status: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: "generation is temporarily unavailable"}
	}
	return internalError(CodeAnalysisFailed, "analysis failed - try again")
}

// AsPipelineError extracts a PipelineError from err, or wraps err as a
// generic internal failure.
func AsPipelineError(err error) *PipelineError {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr
	}
	return internalError(CodeStoreFailure, "something failed on our side - try again")
}
