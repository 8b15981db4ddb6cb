package email

import (
	"errors"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ItsNaunas/E-CTRL-sub001/config"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

type recordingSender struct {
	response *rest.Response
	err      error
	sent     []*mail.SGMailV3
}

func (r *recordingSender) Send(message *mail.SGMailV3) (*rest.Response, error) {
	r.sent = append(r.sent, message)
	return r.response, r.err
}

func testDispatcher(sender Sender) *Dispatcher {
	cfg := &config.Config{
		SendGridFromEmail: "reports@e-ctrl.co.uk",
		SendGridFromName:  "E-CTRL",
	}
	logger := &log.Logger{Handler: discard.Default, Level: log.ErrorLevel}
	return NewDispatcherWithSender(cfg, sender, logger)
}

func testLead() *models.Lead {
	return &models.Lead{ID: "lead-1", Email: "user@example.com", Name: "Sam"}
}

func testReport() *models.Report {
	return &models.Report{
		ID:     "report-1",
		LeadID: "lead-1",
		Result: models.AnalysisResult{
			Title:           "Solid listing",
			Score:           72,
			Highlights:      []string{"Clear title"},
			Recommendations: []string{"Add lifestyle images"},
		},
	}
}

func TestDispatchWelcome(t *testing.T) {
	sender := &recordingSender{response: &rest.Response{
		StatusCode: 202,
		Headers:    map[string][]string{"X-Message-Id": {"msg-123"}},
	}}
	d := testDispatcher(sender)

	record := d.Dispatch(testLead(), nil)
	if !record.Success || record.HasPDF {
		t.Errorf("expected welcome record, got %+v", record)
	}
	if record.MessageID == nil || *record.MessageID != "msg-123" {
		t.Errorf("message id not carried: %v", record.MessageID)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
	if len(sender.sent[0].Attachments) != 0 {
		t.Error("welcome message must carry no attachments")
	}
}

func TestDispatchReport(t *testing.T) {
	sender := &recordingSender{response: &rest.Response{StatusCode: 202}}
	d := testDispatcher(sender)

	record := d.Dispatch(testLead(), testReport())
	if !record.Success || !record.HasPDF {
		t.Errorf("expected report record, got %+v", record)
	}

	message := sender.sent[0]
	var pdfSeen, inlineSeen bool
	for _, a := range message.Attachments {
		switch a.Type {
		case "application/pdf":
			pdfSeen = true
		case "image/png":
			inlineSeen = a.Disposition == "inline"
		}
	}
	if !pdfSeen {
		t.Error("report message must attach a pdf")
	}
	if !inlineSeen {
		t.Error("report message must embed the inline score card")
	}
}

func TestDispatchFailureNeverRaises(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	d := testDispatcher(sender)

	record := d.Dispatch(testLead(), nil)
	if record.Success {
		t.Error("expected failed record")
	}
	if record.MessageID != nil {
		t.Error("failed dispatch must carry no message id")
	}
	if record.Error == "" {
		t.Error("failure detail missing from record")
	}
}

func TestDispatchRejectedStatus(t *testing.T) {
	sender := &recordingSender{response: &rest.Response{StatusCode: 401}}
	d := testDispatcher(sender)

	record := d.Dispatch(testLead(), testReport())
	if record.Success {
		t.Error("expected rejected record")
	}
	if record.Error == "" {
		t.Error("rejection detail missing from record")
	}
}
