package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderGrey = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	labelOutline    = color.RGBA{A: 0xff}                            // black
	labelColor      = color.RGBA{G: 0xff, B: 0xff, A: 0xff}          // cyan
	canvasWhite     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff} // white
)

// Compositor stitches up to four photos into a 2x2 grid for hard-mode
// quizzes. Individual fetch failures degrade to a placeholder quadrant; only
// a failure to produce the grid itself is an error.
type Compositor struct {
	log          *zap.Logger
	client       *http.Client
	quadrantSize int
	jpegQuality  int
}

// Options for grid composition, typically taken from the image config
// section.
type Options struct {
	QuadrantSize int
	FetchTimeout time.Duration
	JPEGQuality  int
}

func NewCompositor(log *zap.Logger, opts Options) *Compositor {
	if opts.QuadrantSize <= 0 {
		opts.QuadrantSize = 400
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 85
	}
	return &Compositor{
		log:          log,
		client:       &http.Client{Timeout: opts.FetchTimeout},
		quadrantSize: opts.QuadrantSize,
		jpegQuality:  opts.JPEGQuality,
	}
}

// GridJPEG downloads the given photos and stitches them into a 2x2 grid,
// returning JPEG bytes. Each quadrant is overlaid with its 1-based index so
// on-screen numbering matches button order.
func (c *Compositor) GridJPEG(ctx context.Context, urls []string) ([]byte, error) {
	size := c.quadrantSize
	grid := image.NewRGBA(image.Rect(0, 0, size*2, size*2))
	draw.Draw(grid, grid.Bounds(), image.NewUniform(canvasWhite), image.Point{}, draw.Src)

	positions := []image.Point{
		{X: 0, Y: 0}, {X: size, Y: 0},
		{X: 0, Y: size}, {X: size, Y: size},
	}

	for idx, url := range urls {
		if idx >= len(positions) {
			break
		}
		quadrant := image.Rect(positions[idx].X, positions[idx].Y,
			positions[idx].X+size, positions[idx].Y+size)

		src := c.fetch(ctx, url)
		if src != nil {
			draw.CatmullRom.Scale(grid, quadrant, src, src.Bounds(), draw.Src, nil)
		} else {
			// Missing photo: flat grey with an N/A marker.
			draw.Draw(grid, quadrant, image.NewUniform(placeholderGrey), image.Point{}, draw.Src)
			drawLabel(grid, quadrant.Min.X+size/3, quadrant.Min.Y+size/3, "N/A", 4, canvasWhite)
		}

		// Overlay the 1-based index, outlined for contrast against photos.
		drawLabel(grid, quadrant.Min.X+20, quadrant.Min.Y+10, fmt.Sprintf("%d", idx+1), 6, labelColor)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, grid, &jpeg.Options{Quality: c.jpegQuality}); err != nil {
		return nil, fmt.Errorf("could not encode grid image: %w", err)
	}
	return buf.Bytes(), nil
}

// fetch downloads and decodes one photo. Any failure returns nil; a broken
// source only costs its own quadrant.
func (c *Compositor) fetch(ctx context.Context, url string) image.Image {
	if url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warn("Invalid photo URL", zap.String("url", url), zap.Error(err))
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("Failed to fetch photo", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Failed to fetch photo", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		c.log.Warn("Failed to decode photo", zap.String("url", url), zap.Error(err))
		return nil
	}
	return img
}

// drawLabel renders text at (x, y) scaled up from the basic bitmap face, with
// a black outline so it stays legible on arbitrary backgrounds.
func drawLabel(dst *image.RGBA, x, y int, text string, scale int, fill color.Color) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil() + 2
	h := face.Metrics().Height.Ceil() + 2

	// Render once at native size; the glyph alpha becomes our stamp mask.
	stamp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := font.Drawer{
		Dst:  stamp,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(1, face.Metrics().Ascent.Ceil()+1),
	}
	drawer.DrawString(text)

	big := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), stamp, stamp.Bounds(), draw.Src, nil)

	target := big.Bounds().Add(image.Pt(x, y))
	thick := 3

	// Outline first, then the fill on top.
	for offX := -thick; offX <= thick; offX++ {
		for offY := -thick; offY <= thick; offY++ {
			draw.DrawMask(dst, target.Add(image.Pt(offX, offY)),
				image.NewUniform(labelOutline), image.Point{}, big, image.Point{}, draw.Over)
		}
	}
	draw.DrawMask(dst, target, image.NewUniform(fill), image.Point{}, big, image.Point{}, draw.Over)
}
