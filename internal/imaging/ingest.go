// Package imaging turns pasted, dropped, or picked raster images into
// markdown image references. Images are downscaled to the configured width,
// re-encoded as JPEG, and either persisted next to the document or embedded
// as a data URL when no backing file exists.
package imaging

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/markpad/markpad/internal/bridge"
)

// ErrNotHandled means the input is not an image. Callers fall back to their
// normal paste/drop handling.
var ErrNotHandled = errors.New("imaging: input is not an image")

// Input is one user-supplied file or clipboard item.
type Input struct {
	Name string
	Data []byte
}

// Options come from settings at call time.
type Options struct {
	MaxWidth int
	Quality  int
}

// Ref is the produced markdown reference.
type Ref struct {
	Markdown string
	Target   string // relative path or data URL
	Width    int
	Height   int
}

// Pipeline processes images sequentially. now is injectable for stable
// filenames in tests.
type Pipeline struct {
	files bridge.FileBridge
	log   *log.Logger
	now   func() time.Time
}

func NewPipeline(files bridge.FileBridge, logger *log.Logger) *Pipeline {
	return &Pipeline{files: files, log: logger, now: time.Now}
}

// Process runs one image through the whole pipeline. docPath is the active
// document's backing file, empty for unsaved buffers.
func (p *Pipeline) Process(in Input, docPath string, opt Options) (Ref, error) {
	if !isImage(in) {
		return Ref{}, ErrNotHandled
	}
	img, _, err := image.Decode(bytes.NewReader(in.Data))
	if err != nil {
		return Ref{}, fmt.Errorf("decode %s: %w", in.Name, err)
	}

	img = downscale(img, opt.MaxWidth)
	b := img.Bounds()

	quality := opt.Quality
	if quality < 1 || quality > 100 {
		quality = 90
	}
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, img, &jpeg.Options{Quality: quality}); err != nil {
		return Ref{}, fmt.Errorf("encode %s: %w", in.Name, err)
	}

	target := ""
	if docPath != "" {
		target = p.persist(enc.Bytes(), in.Name, docPath)
	}
	if target == "" {
		target = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(enc.Bytes())
	}

	return Ref{
		Markdown: fmt.Sprintf("![%s](%s)", AltText(in.Name), target),
		Target:   target,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// ProcessBatch handles a multi-file drop strictly in order: each image fully
// completes before the next starts, so insertions match the drop sequence.
// A failed image is logged and skipped; the batch continues.
func (p *Pipeline) ProcessBatch(ins []Input, docPath string, opt Options) []Ref {
	refs := make([]Ref, 0, len(ins))
	for _, in := range ins {
		ref, err := p.Process(in, docPath, opt)
		if err != nil {
			if p.log != nil && !errors.Is(err, ErrNotHandled) {
				p.log.Printf("image skipped: %v", err)
			}
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// persist writes the encoded image into a sibling images/ directory and
// returns the relative reference, or "" when persistence fails (the caller
// then embeds instead).
func (p *Pipeline) persist(data []byte, name, docPath string) string {
	file := p.fileName(name)
	full := filepath.Join(filepath.Dir(docPath), "images", file)
	if err := p.files.WriteFile(full, data); err != nil {
		if p.log != nil {
			p.log.Printf("image persist failed, embedding instead: %v", err)
		}
		return ""
	}
	return "./images/" + file
}

// fileName builds a collision-resistant name: timestamp plus random suffix,
// keeping the original extension.
func (p *Pipeline) fileName(original string) string {
	ext := filepath.Ext(original)
	if ext == "" {
		ext = ".png"
	}
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	ts := strconv.FormatInt(p.now().UnixMilli(), 36)
	return "image_" + ts + "_" + hex.EncodeToString(buf[:]) + ext
}

// AltText derives alt text from the original filename: extension stripped,
// separators replaced by spaces.
func AltText(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}

// InsertAt places a reference at the caret and returns the new text and
// caret position (just past the insertion).
func InsertAt(text string, caret int, ref string) (string, int) {
	if caret < 0 {
		caret = 0
	}
	if caret > len(text) {
		caret = len(text)
	}
	return text[:caret] + ref + text[caret:], caret + len(ref)
}

// downscale resizes to at most maxWidth, preserving aspect ratio. It never
// upscales.
func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func isImage(in Input) bool {
	if len(in.Data) == 0 {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(in.Data), "image/")
}
