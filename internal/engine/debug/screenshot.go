// Package debug provides debug capture utilities.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/terrainview/internal/engine/terrain"
)

// ScreenshotCapture writes framebuffer contents to timestamped PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshotCapture creates a capture handler. An empty outputDir writes
// to the working directory.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Filename returns the path the next capture will be written to.
func (sc *ScreenshotCapture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", sc.prefix, sc.now().Format("2006-01-02_15-04-05.000"))
	if sc.outputDir == "" {
		return name
	}
	return filepath.Join(sc.outputDir, name)
}

// Save encodes bottom-up RGBA rows, as read back from OpenGL, as an opaque
// PNG and returns the file path.
func (sc *ScreenshotCapture) Save(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: %dx%d with %d bytes", width, height, len(pixels))
	}

	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	img := &image.RGBA{
		Pix:    terrain.FlipRGBA(pixels, width, height),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	// Framebuffer alpha is not meaningful
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	filename := sc.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
