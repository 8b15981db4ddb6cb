// Package email builds and dispatches the lead-facing e-mails. A
// dispatch failure is reported in the delivery record, never as an
// error: delivery is best-effort and must not fail the pipeline.
package email

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ItsNaunas/E-CTRL-sub001/config"
	"github.com/ItsNaunas/E-CTRL-sub001/metrics"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
	"github.com/ItsNaunas/E-CTRL-sub001/pdf"
)

const scoreCardCid = "score_card"

// Sender is the transport the dispatcher hands finished messages to.
// *sendgrid.Client satisfies it; tests plug in a recorder.
type Sender interface {
	Send(message *mail.SGMailV3) (*rest.Response, error)
}

// Dispatcher composes and sends lead e-mails.
type Dispatcher struct {
	config *config.Config
	client Sender
	logger log.Interface
}

// NewDispatcher creates a dispatcher backed by SendGrid. Send has no
// context parameter, so the transport itself enforces the timeout.
func NewDispatcher(cfg *config.Config, logger log.Interface) *Dispatcher {
	if cfg.EmailTimeout > 0 {
		sendgrid.DefaultClient = &rest.Client{HTTPClient: &http.Client{Timeout: cfg.EmailTimeout}}
	}
	return &Dispatcher{
		config: cfg,
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		logger: logger,
	}
}

// NewDispatcherWithSender injects a custom transport; used by tests.
func NewDispatcherWithSender(cfg *config.Config, sender Sender, logger log.Interface) *Dispatcher {
	return &Dispatcher{config: cfg, client: sender, logger: logger}
}

// Dispatch sends the right e-mail for a captured lead. With a report
// it attaches the rendered PDF and an inline score card; without one
// it falls back to a welcome message. The returned record carries the
// outcome either way.
func (d *Dispatcher) Dispatch(lead *models.Lead, report *models.Report) models.DeliveryRecord {
	if report == nil {
		return d.send("welcome", d.buildWelcome(lead), false)
	}

	message, err := d.buildReport(lead, report)
	if err != nil {
		// Fall back to the welcome message rather than sending nothing.
		d.logger.WithError(err).Warn("failed to build report email, sending welcome instead")
		return d.send("welcome", d.buildWelcome(lead), false)
	}
	return d.send("report", message, true)
}

func (d *Dispatcher) send(kind string, message *mail.SGMailV3, hasPDF bool) models.DeliveryRecord {
	response, err := d.client.Send(message)
	if err != nil {
		d.logger.WithError(err).WithField("kind", kind).Warn("email dispatch failed")
		metrics.EmailDispatchesTotal.WithLabelValues(kind, "error").Inc()
		return models.DeliveryRecord{Success: false, HasPDF: hasPDF, Error: err.Error()}
	}
	if response.StatusCode >= 400 {
		d.logger.WithFields(log.Fields{"kind": kind, "status": response.StatusCode}).Warn("email dispatch rejected")
		metrics.EmailDispatchesTotal.WithLabelValues(kind, "rejected").Inc()
		return models.DeliveryRecord{
			Success: false,
			HasPDF:  hasPDF,
			Error:   fmt.Sprintf("provider returned status %d", response.StatusCode),
		}
	}

	messageID := response.Headers["X-Message-Id"]
	record := models.DeliveryRecord{Success: true, HasPDF: hasPDF}
	if len(messageID) > 0 {
		record.MessageID = &messageID[0]
	}
	d.logger.WithFields(log.Fields{"kind": kind, "status": response.StatusCode}).Info("email dispatched")
	metrics.EmailDispatchesTotal.WithLabelValues(kind, "ok").Inc()
	return record
}

func (d *Dispatcher) buildWelcome(lead *models.Lead) *mail.SGMailV3 {
	message := d.newMessage(lead, "Your Amazon listing audit is on its way")
	name := displayName(lead)
	message.AddContent(mail.NewContent("text/plain", fmt.Sprintf(
		"Hi %s,\n\nThanks for requesting an Amazon listing audit. We're preparing your report and will follow up at this address.\n\nThe E-CTRL team",
		name)))
	message.AddContent(mail.NewContent("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>Thanks for requesting an Amazon listing audit. We're preparing your report and will follow up at this address.</p><p>The E-CTRL team</p>`,
		name)))
	return message
}

func (d *Dispatcher) buildReport(lead *models.Lead, report *models.Report) (*mail.SGMailV3, error) {
	document, err := pdf.BuildReport(report, lead.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build report pdf: %w", err)
	}

	message := d.newMessage(lead, "Your Amazon listing audit report")
	name := displayName(lead)
	message.AddContent(mail.NewContent("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour Amazon listing audit is ready. Your listing scored %d out of 100. The full report is attached as a PDF.\n\nThe E-CTRL team",
		name, report.Result.Score)))
	message.AddContent(mail.NewContent("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>Your Amazon listing audit is ready. Your listing scored <b>%d out of 100</b>.</p><p><img src="cid:%s" alt="Listing score"/></p><p>The full report is attached as a PDF.</p><p>The E-CTRL team</p>`,
		name, report.Result.Score, scoreCardCid)))

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(document))
	attachment.SetType("application/pdf")
	attachment.SetFilename("listing-audit.pdf")
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	// The score card is cosmetic; skip it if drawing fails.
	if card, err := drawScoreCard(report.Result.Score, report.Result.Title); err == nil {
		inline := mail.NewAttachment()
		inline.SetContent(base64.StdEncoding.EncodeToString(card))
		inline.SetType("image/png")
		inline.SetFilename("score.png")
		inline.SetDisposition("inline")
		inline.SetContentID(scoreCardCid)
		message.AddAttachment(inline)
	} else {
		d.logger.WithError(err).Warn("failed to draw score card")
	}

	return message, nil
}

func (d *Dispatcher) newMessage(lead *models.Lead, subject string) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(d.config.SendGridFromName, d.config.SendGridFromEmail))
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(lead.Name, lead.Email))
	message.AddPersonalizations(p)
	return message
}

func displayName(lead *models.Lead) string {
	if lead.Name != "" {
		return lead.Name
	}
	return "there"
}
