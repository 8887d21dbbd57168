package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/markpad/markpad/internal/bridge"
)

// Page geometry. The tall bitmap is cut into bands; each band fills one A4
// page edge to edge. BandHeightMM is slightly under the physical 297mm so a
// band never spills onto the next page after rounding.
const (
	PageWidthMM  = 210.0
	BandHeightMM = 295.0

	// density scales the raster above screen resolution for print sharpness.
	density = 2

	// 210mm at 96dpi is 794px.
	canvasWidth  = 794 * density
	canvasMargin = 48 * density
	baseFontSize = 14.0 * density
)

// ErrCanceled means the user dismissed the destination dialog. Not a
// failure; callers show no toast for it.
var ErrCanceled = fmt.Errorf("export: canceled")

// Request is a detached snapshot of the document to export. The exporter
// never touches live tab state, so closing the tab mid-export is safe.
type Request struct {
	Title   string
	Content string
	// BaseDir resolves relative image references, usually the directory of
	// the document's backing file.
	BaseDir string
	// Dest skips the destination dialog when set. Headless export uses it.
	Dest string
}

// Result reports where the PDF landed and how many pages it holds.
type Result struct {
	Path  string
	Pages int
}

// Exporter renders markdown snapshots to paginated PDF files.
type Exporter struct {
	files   bridge.FileBridge
	dialogs bridge.DialogBridge
	log     *log.Logger
}

func NewExporter(files bridge.FileBridge, dialogs bridge.DialogBridge, logger *log.Logger) *Exporter {
	return &Exporter{files: files, dialogs: dialogs, log: logger}
}

// Paginate returns the page count and the band height in pixels for a bitmap
// of the given dimensions. The band height preserves the page aspect ratio:
// bandPx/bmpW == BandHeightMM/PageWidthMM.
func Paginate(bmpW, bmpH int) (pages, bandPx int) {
	bandPx = int(float64(bmpW) / PageWidthMM * BandHeightMM)
	if bandPx < 1 {
		bandPx = 1
	}
	pages = int(math.Ceil(float64(bmpH) / float64(bandPx)))
	if pages < 1 {
		pages = 1
	}
	return pages, bandPx
}

// Export renders the snapshot, asks for a destination, and writes the PDF.
// It returns ErrCanceled when the user dismisses the save dialog.
func (x *Exporter) Export(req Request) (Result, error) {
	bmp, err := x.renderBitmap(req)
	if err != nil {
		return Result{}, err
	}
	dest := req.Dest
	if dest == "" {
		dest, err = x.destination(req.Title)
		if err != nil {
			return Result{}, err
		}
	}

	doc, pages, err := buildPDF(bmp)
	if err != nil {
		return Result{}, err
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return Result{}, fmt.Errorf("export: assemble pdf: %w", err)
	}
	if err := x.files.WriteFile(dest, out.Bytes()); err != nil {
		return Result{}, fmt.Errorf("export: write %s: %w", dest, err)
	}
	if x.log != nil {
		x.log.Printf("exported %d page(s) to %s", pages, dest)
	}
	return Result{Path: dest, Pages: pages}, nil
}

func (x *Exporter) renderBitmap(req Request) (*image.RGBA, error) {
	fonts, err := loadFaces(baseFontSize)
	if err != nil {
		return nil, fmt.Errorf("export: load fonts: %w", err)
	}
	c := newPageCanvas(canvasWidth, canvasMargin, fonts, baseFontSize)
	eng := &rasterEngine{c: c, baseSize: baseFontSize, baseDir: req.BaseDir, files: x.files}
	if err := eng.render([]byte(req.Content)); err != nil {
		return nil, fmt.Errorf("export: render: %w", err)
	}
	return c.crop(), nil
}

// buildPDF slices the bitmap into bands and places each full-bleed on its
// own A4 page.
func buildPDF(bmp *image.RGBA) (*gofpdf.Fpdf, int, error) {
	bounds := bmp.Bounds()
	pages, bandPx := Paginate(bounds.Dx(), bounds.Dy())
	pxPerMM := float64(bounds.Dx()) / PageWidthMM

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	for page := 0; page < pages; page++ {
		top := bounds.Min.Y + page*bandPx
		bottom := top + bandPx
		if bottom > bounds.Max.Y {
			bottom = bounds.Max.Y
		}
		band := bmp.SubImage(image.Rect(bounds.Min.X, top, bounds.Max.X, bottom))

		var buf bytes.Buffer
		if err := png.Encode(&buf, band); err != nil {
			return nil, 0, fmt.Errorf("export: encode page %d: %w", page+1, err)
		}
		name := fmt.Sprintf("band-%d", page)
		doc.RegisterImageOptionsReader(name, opts, &buf)

		doc.AddPage()
		heightMM := float64(bottom-top) / pxPerMM
		doc.ImageOptions(name, 0, 0, PageWidthMM, heightMM, false, opts, 0, "")
	}
	if doc.Err() {
		return nil, 0, fmt.Errorf("export: %w", doc.Error())
	}
	return doc, pages, nil
}

// destination resolves where the PDF goes: the save dialog when the host
// provides one, else <title>.pdf in the working directory.
func (x *Exporter) destination(title string) (string, error) {
	fallback := defaultFileName(title)
	if x.dialogs == nil {
		return fallback, nil
	}
	res, err := x.dialogs.ShowSaveDialog(bridge.SaveDialogOptions{
		DefaultPath: fallback,
		Filters:     []bridge.FileFilter{{Name: "PDF", Extensions: []string{"pdf"}}},
	})
	if err != nil {
		return fallback, nil
	}
	if res.Canceled || len(res.Paths) == 0 {
		return "", ErrCanceled
	}
	return res.Paths[0], nil
}

func defaultFileName(title string) string {
	name := strings.TrimSpace(title)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "Untitled" {
		return "document.pdf"
	}
	return name + ".pdf"
}
