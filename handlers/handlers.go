// Package handlers maps HTTP requests onto the pipeline orchestrator
// and the auth service.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/ItsNaunas/E-CTRL-sub001/database"
	"github.com/ItsNaunas/E-CTRL-sub001/middleware"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/service"
)

// Handlers handles HTTP requests for the audit service.
type Handlers struct {
	orchestrator *service.Orchestrator
	auth         *database.AuthService
	sessionTTL   time.Duration
	logger       log.Interface
}

// NewHandlers creates a new handlers instance.
func NewHandlers(orchestrator *service.Orchestrator, auth *database.AuthService, sessionTTL time.Duration, logger log.Interface) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		auth:         auth,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// SubmitAudit handles POST /api/v1/audit.
func (h *Handlers) SubmitAudit(c *gin.Context) {
	var req models.SubmitAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if req.CheckOnly {
		resp, err := h.orchestrator.CheckOnly(c.Request.Context(), &req)
		if err != nil {
			h.pipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.orchestrator.SubmitAudit(c.Request.Context(), &req)
	if err != nil {
		h.pipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CaptureEmail handles POST /api/v1/audit/email.
func (h *Handlers) CaptureEmail(c *gin.Context) {
	var req models.CaptureEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.orchestrator.CaptureEmail(c.Request.Context(), &req)
	if err != nil {
		h.pipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suggest handles POST /api/v1/suggest.
func (h *Handlers) Suggest(c *gin.Context) {
	var req models.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.orchestrator.Suggest(c.Request.Context(), &req)
	if err != nil {
		h.pipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register handles POST /api/v1/auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), req.Email, req.Password, req.Name, req.PromotionalConsent)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "email already registered"})
			return
		}
		h.logger.WithError(err).Error("failed to create user")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "registration is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusCreated, models.RegisterResponse{Success: true, UserID: user.ID})
}

// Login handles POST /api/v1/auth/login and sets the session cookie.
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidLogin) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid email or password"})
			return
		}
		h.logger.WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "login failed"})
		return
	}

	token, err := h.auth.IssueSession(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to issue session")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "login failed"})
		return
	}

	if err := h.auth.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		h.logger.WithError(err).Warn("failed to record last login")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, models.MeResponse{User: *user})
}

// Me handles GET /api/v1/auth/me for an authenticated session.
func (h *Handlers) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
			return
		}
		h.logger.WithError(err).Error("failed to load user")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load user"})
		return
	}
	if user.Disabled {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "account disabled"})
		return
	}

	c.JSON(http.StatusOK, models.MeResponse{User: *user})
}

// Health handles GET /api/v1/health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) pipelineError(c *gin.Context, err error) {
	perr := service.AsPipelineError(err)
	c.JSON(perr.Status, models.ErrorResponse{
		Code:       perr.Code,
		Error:      perr.Message,
		Suggestion: perr.Suggestion,
	})
}
