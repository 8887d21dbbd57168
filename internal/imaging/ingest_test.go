package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markpad/markpad/internal/bridge"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 8 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newPipeline() *Pipeline {
	return NewPipeline(bridge.LocalFiles{}, log.New(os.Stderr, "", 0))
}

func TestProcessResizesToMaxWidth(t *testing.T) {
	p := newPipeline()
	ref, err := p.Process(Input{Name: "big_shot.png", Data: pngBytes(t, 2000, 1000)}, "", Options{MaxWidth: 800, Quality: 90})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if ref.Width != 800 || ref.Height != 400 {
		t.Fatalf("resized to %dx%d, want 800x400", ref.Width, ref.Height)
	}
	if !strings.HasPrefix(ref.Target, "data:image/jpeg;base64,") {
		t.Fatalf("unsaved document should embed a data URL, got %q", ref.Target[:40])
	}
	if !strings.HasPrefix(ref.Markdown, "![big shot](") {
		t.Fatalf("alt text wrong: %q", ref.Markdown[:20])
	}
}

func TestProcessNeverUpscales(t *testing.T) {
	p := newPipeline()
	ref, err := p.Process(Input{Name: "small.png", Data: pngBytes(t, 100, 60)}, "", Options{MaxWidth: 800, Quality: 90})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if ref.Width != 100 || ref.Height != 60 {
		t.Fatalf("small image was scaled to %dx%d", ref.Width, ref.Height)
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	p := newPipeline()
	_, err := p.Process(Input{Name: "notes.txt", Data: []byte("plain text, definitely")}, "", Options{MaxWidth: 800})
	if err != ErrNotHandled {
		t.Fatalf("err = %v, want ErrNotHandled", err)
	}
}

func TestProcessPersistsNextToDocument(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "notes.md")
	p := newPipeline()

	ref, err := p.Process(Input{Name: "chart.png", Data: pngBytes(t, 300, 200)}, docPath, Options{MaxWidth: 800, Quality: 90})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.HasPrefix(ref.Target, "./images/image_") || !strings.HasSuffix(ref.Target, ".png") {
		t.Fatalf("target = %q, want ./images/image_<ts>_<rand>.png", ref.Target)
	}

	saved := filepath.Join(dir, "images", strings.TrimPrefix(ref.Target, "./images/"))
	b, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("persisted image unreadable: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("persisted bytes are not jpeg: %v", err)
	}
	if img.Bounds().Dx() != 300 {
		t.Fatalf("persisted width = %d", img.Bounds().Dx())
	}
}

type failingBridge struct{ bridge.LocalFiles }

func (failingBridge) WriteFile(string, []byte) error {
	return os.ErrPermission
}

func TestProcessFallsBackToEmbedOnPersistFailure(t *testing.T) {
	p := NewPipeline(failingBridge{}, nil)
	ref, err := p.Process(Input{Name: "x.png", Data: pngBytes(t, 50, 50)}, "/read/only/doc.md", Options{MaxWidth: 800})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.HasPrefix(ref.Target, "data:image/jpeg;base64,") {
		t.Fatalf("persist failure should fall back to embedding, got %q", ref.Target[:32])
	}
}

// One corrupt image in a batch is skipped; the rest keep their drop order.
func TestProcessBatchSkipsFailuresKeepsOrder(t *testing.T) {
	p := newPipeline()
	ins := []Input{
		{Name: "first.png", Data: pngBytes(t, 20, 10)},
		{Name: "broken.png", Data: append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage")...)},
		{Name: "third.png", Data: pngBytes(t, 40, 10)},
	}
	refs := p.ProcessBatch(ins, "", Options{MaxWidth: 800, Quality: 90})
	if len(refs) != 2 {
		t.Fatalf("refs = %d, want 2", len(refs))
	}
	if !strings.HasPrefix(refs[0].Markdown, "![first]") || !strings.HasPrefix(refs[1].Markdown, "![third]") {
		t.Fatalf("order not preserved: %q, %q", refs[0].Markdown, refs[1].Markdown)
	}
}

func TestAltText(t *testing.T) {
	cases := map[string]string{
		"screen_shot-2024.png": "screen shot 2024",
		"photo.jpeg":           "photo",
		"/tmp/dir/my_img.png":  "my img",
	}
	for in, want := range cases {
		if got := AltText(in); got != want {
			t.Fatalf("AltText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInsertAt(t *testing.T) {
	text, caret := InsertAt("hello world", 5, " ![x](y)")
	if text != "hello ![x](y) world" {
		t.Fatalf("text = %q", text)
	}
	if caret != 5+len(" ![x](y)") {
		t.Fatalf("caret = %d", caret)
	}
	// Out-of-range carets clamp instead of panicking.
	if text, caret = InsertAt("ab", 99, "!"); text != "ab!" || caret != 3 {
		t.Fatalf("clamped insert = %q/%d", text, caret)
	}
}
