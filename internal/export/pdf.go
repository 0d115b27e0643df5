package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/pivot2ai/jobplans/internal/plan"
)

const (
	pdfMarginLeft = 15.0
	pdfMarginTop  = 15.0
	pdfLineHeight = 5.5
	pdfQRSize     = 24.0
)

// RenderPDF renders doc into an A4 PDF. permalink, when non-empty, is stamped
// into the header as a QR code so a printed copy links back to the stored
// plan. Output is deterministic for a given document and permalink.
func RenderPDF(doc plan.Document, permalink string) ([]byte, error) {
	doc.Normalize()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginLeft)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pdfMarginLeft

	// Header with plan id and QR permalink
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentWidth-pdfQRSize, 8, "Maintenance Job Plan", "", 0, "L", false, 0, "")

	if permalink != "" {
		qrPng, err := qrcode.Encode(permalink, qrcode.Low, 256)
		if err != nil {
			return nil, fmt.Errorf("encode plan QR: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("plan_qr", opts, bytes.NewReader(qrPng))
		pdf.ImageOptions("plan_qr", pageWidth-pdfMarginLeft-pdfQRSize, pdfMarginTop, pdfQRSize, pdfQRSize, false, opts, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(contentWidth-pdfQRSize, 6, doc.PlanID, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(contentWidth, 7, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.Ln(1)
	}
	text := func(s string) {
		if s == "" {
			s = "-"
		}
		pdf.MultiCell(contentWidth, pdfLineHeight, s, "", "L", false)
		pdf.Ln(2)
	}
	list := func(items []string) {
		if len(items) == 0 {
			text("-")
			return
		}
		for _, item := range items {
			pdf.MultiCell(contentWidth, pdfLineHeight, "- "+item, "", "L", false)
		}
		pdf.Ln(2)
	}

	section("Equipment")
	text(fmt.Sprintf("Name: %s\nModel: %s\nSerial: %s", doc.EquipmentName, doc.EquipmentModel, doc.EquipmentSerial))

	section("Scope of Work")
	text(doc.ScopeOfWork)

	section("Job Steps")
	steps := stepViews(doc.JobSteps)
	if len(steps) == 0 {
		text("-")
	} else {
		for _, s := range steps {
			pdf.MultiCell(contentWidth, pdfLineHeight, fmt.Sprintf("%d. %s", s.Number, s.Description), "", "L", false)
		}
		pdf.Ln(2)
	}

	section("Tools Required")
	list(doc.ToolsRequired)
	section("Materials Required")
	list(doc.MaterialsRequired)

	section("Manpower")
	text(fmt.Sprintf("Count: %s\nEstimated Time: %s", doc.ManpowerCount, doc.EstimatedTime))
	section("Skill Levels")
	list(doc.SkillLevels)

	section("Safety - PPE")
	list(doc.SafetyPpe)
	section("Safety - Procedures")
	list(doc.SafetyProcedures)
	section("Safety - Hazards")
	list(doc.SafetyHazards)

	section("Best Practices")
	text(doc.BestPractices)

	section("Recommended Manuals")
	list(doc.Recommendations.Manuals)
	section("Recommended Procedures")
	list(doc.Recommendations.Procedures)

	section("Applicable Codes")
	list(doc.ApplicableCodes)

	if doc.Notes != "" {
		section("Notes")
		text(doc.Notes)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
