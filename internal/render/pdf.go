// internal/render/pdf.go
package render

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"planmytrip/internal/models"
)

const (
	pageMargin = 20.0
	qrImageKey = "share-qr"
	qrSizeMM   = 32.0
)

type exportOptions struct {
	shareURL string
	footer   string
}

type ExportOption func(*exportOptions)

// WithShareURL adds a QR code pointing at url on the first page.
func WithShareURL(url string) ExportOption {
	return func(o *exportOptions) { o.shareURL = url }
}

// WithFooter replaces the footer text; page numbers are always appended.
func WithFooter(text string) ExportOption {
	return func(o *exportOptions) { o.footer = text }
}

var (
	colorBlue    = [3]int{59, 130, 246}
	colorGrey    = [3]int{75, 85, 99}
	colorBadgeBg = [3]int{219, 234, 254}
	colorBadgeFg = [3]int{30, 64, 175}
	colorBoxBg   = [3]int{249, 250, 251}
)

// Export renders it as an A4 PDF document.
func Export(it models.Itinerary, opts ...ExportOption) ([]byte, error) {
	o := exportOptions{footer: "Generated by PlanMyTrip AI"}
	for _, opt := range opts {
		opt(&o)
	}
	v := Render(it)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s • Page %d of {nb}", o.footer, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	if o.shareURL != "" {
		png, err := qrcode.Encode(o.shareURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode share qr: %w", err)
		}
		imgOpts := gofpdf.ImageOptions{ImageType: "png"}
		pdf.RegisterImageOptionsReader(qrImageKey, imgOpts, bytes.NewReader(png))
		pdf.ImageOptions(qrImageKey, pageW-pageMargin-qrSizeMM, pageMargin, qrSizeMM, qrSizeMM, false, imgOpts, 0, o.shareURL)
		contentW -= qrSizeMM + 4
	}

	// title
	setColor(pdf.SetTextColor, colorBlue)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.MultiCell(contentW, 10, tr(v.Title), "", "L", false)
	pdf.Ln(4)

	// overview
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 9, "Trip Overview", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, f := range v.Overview {
		pdf.CellFormat(contentW, 7, tr(f.Label+": "+f.Value), "", 1, "L", false, 0, "")
	}
	if o.shareURL != "" && pdf.GetY() < pageMargin+qrSizeMM+4 {
		pdf.SetY(pageMargin + qrSizeMM + 4)
	}
	contentW = pageW - 2*pageMargin

	if len(v.Highlights) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(contentW, 8, "Trip Highlights", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, h := range v.Highlights {
			pdf.SetX(pageMargin + 4)
			pdf.MultiCell(contentW-4, 6, tr("• "+h), "", "L", false)
		}
	}

	pdf.Ln(6)
	setColor(pdf.SetTextColor, colorBlue)
	pdf.SetFont("Helvetica", "B", 17)
	pdf.CellFormat(contentW, 10, "Detailed Itinerary", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, d := range v.Days {
		writeDay(pdf, tr, d, contentW)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDay(pdf *gofpdf.Fpdf, tr func(string) string, d DayView, contentW float64) {
	setColor(pdf.SetFillColor, colorBlue)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 11, tr("  "+d.Heading), "", 1, "L", true, 0, "")
	pdf.Ln(3)

	const timeW = 28.0
	bodyW := contentW - timeW

	for _, a := range d.Activities {
		y := pdf.GetY()
		setColor(pdf.SetTextColor, colorGrey)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(timeW, 7, tr(a.Time), "", 0, "L", false, 0, "")

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(bodyW, 7, tr(a.Title), "", "L", false)
		if pdf.GetY() < y+7 {
			pdf.SetY(y + 7)
		}

		pdf.SetX(pageMargin + timeW)
		setColor(pdf.SetFillColor, colorBadgeBg)
		setColor(pdf.SetTextColor, colorBadgeFg)
		pdf.SetFont("Helvetica", "", 9)
		badge := tr(a.Badge)
		pdf.CellFormat(pdf.GetStringWidth(badge)+6, 5, badge, "", 1, "C", true, 0, "")
		pdf.Ln(1)

		if a.Description != "" {
			pdf.SetX(pageMargin + timeW)
			setColor(pdf.SetTextColor, colorGrey)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(bodyW, 5, tr(a.Description), "", "L", false)
		}

		if a.Details != "" {
			pdf.Ln(1)
			pdf.SetX(pageMargin + timeW)
			setColor(pdf.SetFillColor, colorBoxBg)
			pdf.SetTextColor(107, 114, 128)
			pdf.SetFont("Helvetica", "B", 8)
			pdf.CellFormat(bodyW, 5, "More Details:", "", 1, "L", true, 0, "")
			pdf.SetX(pageMargin + timeW)
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(bodyW, 4.5, tr(a.Details), "", "L", true)
		}
		pdf.Ln(4)
	}
	pdf.Ln(4)
}

func setColor(set func(r, g, b int), c [3]int) {
	set(c[0], c[1], c[2])
}
