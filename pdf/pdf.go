// Package pdf renders an analysis report into the PDF attached to the
// report e-mail.
package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

const (
	pageMargin = 15.0
	bodyWidth  = 180.0
)

// BuildReport renders one analysis result into a single PDF document.
func BuildReport(report *models.Report, leadName string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(bodyWidth, 10, "Amazon Listing Audit", "", 1, "L", false, 0, "")

	if leadName != "" {
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(bodyWidth, 7, tr(fmt.Sprintf("Prepared for %s", leadName)), "", 1, "L", false, 0, "")
	}
	doc.Ln(3)

	doc.SetFont("Helvetica", "B", 13)
	doc.MultiCell(bodyWidth, 7, tr(report.Result.Title), "", "L", false)
	doc.Ln(2)

	doc.SetFont("Helvetica", "B", 24)
	doc.SetTextColor(scoreColor(report.Result.Score))
	doc.CellFormat(bodyWidth, 12, fmt.Sprintf("Score: %d / 100", report.Result.Score), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(3)

	writeList(doc, tr, "What is working", report.Result.Highlights)
	writeList(doc, tr, "Recommendations", report.Result.Recommendations)

	if len(report.Result.DetailedAnalysis) > 0 {
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(bodyWidth, 8, "Detailed analysis", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, area := range sortedKeys(report.Result.DetailedAnalysis) {
			doc.SetFont("Helvetica", "B", 10)
			doc.CellFormat(bodyWidth, 6, tr(titleCase(area)), "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 10)
			doc.MultiCell(bodyWidth, 5, tr(report.Result.DetailedAnalysis[area]), "", "L", false)
			doc.Ln(1)
		}
		doc.Ln(2)
	}

	if report.Result.Listing != nil {
		writeListing(doc, tr, report.Result.Listing)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeList(doc *gofpdf.Fpdf, tr func(string) string, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(bodyWidth, 8, heading, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for _, item := range items {
		doc.MultiCell(bodyWidth, 5, tr("- "+item), "", "L", false)
	}
	doc.Ln(3)
}

func writeListing(doc *gofpdf.Fpdf, tr func(string) string, listing *models.ListingPack) {
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(bodyWidth, 8, "Suggested listing", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(bodyWidth, 6, "Title", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(bodyWidth, 5, tr(listing.Title), "", "L", false)
	doc.Ln(1)

	if len(listing.Bullets) > 0 {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(bodyWidth, 6, "Bullet points", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, bullet := range listing.Bullets {
			doc.MultiCell(bodyWidth, 5, tr("- "+bullet), "", "L", false)
		}
		doc.Ln(1)
	}

	if listing.Description != "" {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(bodyWidth, 6, "Description", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(bodyWidth, 5, tr(listing.Description), "", "L", false)
		doc.Ln(1)
	}

	if len(listing.ImageSlots) > 0 {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(bodyWidth, 6, "Image plan", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, slot := range listing.ImageSlots {
			doc.MultiCell(bodyWidth, 5, tr(fmt.Sprintf("- %s: %s", slot.Name, slot.Brief)), "", "L", false)
		}
	}
}

// scoreColor maps a score to a traffic-light color.
func scoreColor(score int) (int, int, int) {
	switch {
	case score >= 75:
		return 34, 139, 34
	case score >= 50:
		return 218, 165, 32
	default:
		return 178, 34, 34
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
