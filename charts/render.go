package charts

import (
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// RenderRequest carries a prepared series plus render parameters into the
// renderer.
type RenderRequest struct {
	Output       string
	Labels       []string
	Pilots       []int
	ATCs         []int
	ColorPrimary string
	ColorATC     string
}

// RenderFunc turns a prepared series into an artifact file. Implementations
// need not be safe for concurrent use; the service serializes calls.
type RenderFunc func(RenderRequest) error

// RenderPDF draws the two series as polylines into a landscape A5 PDF.
func RenderPDF(req RenderRequest) error {
	const (
		left   = 15.0
		right  = 195.0
		top    = 15.0
		bottom = 120.0
	)

	pdf := gofpdf.New("L", "mm", "A5", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 7)

	n := len(req.Labels)
	if n < 2 {
		return fmt.Errorf("series too short to render: %d points", n)
	}

	yMax := 2
	for i := range req.Pilots {
		if req.Pilots[i] > yMax {
			yMax = req.Pilots[i]
		}
		if req.ATCs[i] > yMax {
			yMax = req.ATCs[i]
		}
	}

	x := func(i int) float64 {
		return left + (right-left)*float64(i)/float64(n-1)
	}
	y := func(v int) float64 {
		return bottom - (bottom-top)*float64(v)/float64(yMax)
	}

	// Axes.
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, bottom, right, bottom)
	pdf.Line(right, top, right, bottom)

	// Sparse x labels, at most 12 across the width.
	step := n / 12
	if step < 1 {
		step = 1
	}
	pdf.SetTextColor(80, 80, 80)
	for i := 0; i < n; i += step {
		pdf.Text(x(i)-3, bottom+5, req.Labels[i])
	}
	pdf.Text(right+1, y(yMax)+1, strconv.Itoa(yMax))
	pdf.Text(right+1, bottom, "0")

	pdf.SetLineWidth(0.6)
	drawSeries(pdf, req.Pilots, req.ColorPrimary, x, y)
	drawSeries(pdf, req.ATCs, req.ColorATC, x, y)

	// Legend.
	r, g, b := hexColor(req.ColorPrimary)
	pdf.SetTextColor(r, g, b)
	pdf.Text(left, top-4, "Pilots")
	r, g, b = hexColor(req.ColorATC)
	pdf.SetTextColor(r, g, b)
	pdf.Text(left+15, top-4, "ATCs")

	return pdf.OutputFileAndClose(req.Output)
}

func drawSeries(pdf *gofpdf.Fpdf, values []int, color string, x func(int) float64, y func(int) float64) {
	r, g, b := hexColor(color)
	pdf.SetDrawColor(r, g, b)
	for i := 0; i < len(values)-1; i++ {
		pdf.Line(x(i), y(values[i]), x(i+1), y(values[i+1]))
	}
}

func hexColor(hex string) (int, int, int) {
	if len(hex) == 7 && hex[0] == '#' {
		r, errR := strconv.ParseUint(hex[1:3], 16, 8)
		g, errG := strconv.ParseUint(hex[3:5], 16, 8)
		b, errB := strconv.ParseUint(hex[5:7], 16, 8)
		if errR == nil && errG == nil && errB == nil {
			return int(r), int(g), int(b)
		}
	}
	return 0, 0, 0
}
