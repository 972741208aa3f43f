package tile

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/terrainview/pkg/formats"
)

// maxTileBytes bounds a single response body.
const maxTileBytes = 16 << 20

// Source produces raster tiles for a location.
type Source interface {
	FetchTile(ctx context.Context, lon, lat float64, zoom int) (*formats.RasterTile, error)
}

// FetcherConfig configures an HTTP tile source.
type FetcherConfig struct {
	URLTemplate string // {z}, {x} and {y} are substituted
	AccessToken string
	Timeout     time.Duration
}

// Fetcher downloads raster tiles over HTTP.
type Fetcher struct {
	client      *http.Client
	urlTemplate string
	token       string
	log         *zap.Logger
}

var _ Source = (*Fetcher)(nil)

// NewFetcher creates a Fetcher. A nil logger disables logging.
func NewFetcher(cfg FetcherConfig, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		urlTemplate: cfg.URLTemplate,
		token:       cfg.AccessToken,
		log:         log,
	}
}

// BuildURL expands a tile URL template and appends the access token, if any.
func BuildURL(template string, id ID, token string) (string, error) {
	raw := strings.NewReplacer(
		"{z}", strconv.Itoa(id.Z),
		"{x}", strconv.Itoa(id.X),
		"{y}", strconv.Itoa(id.Y),
	).Replace(template)

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse tile url: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("access_token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// FetchTile downloads the tile containing (lon, lat) at the given zoom and
// returns its pixels as RGBA. All failures wrap ErrNetwork.
func (f *Fetcher) FetchTile(ctx context.Context, lon, lat float64, zoom int) (*formats.RasterTile, error) {
	id := PointToTile(lon, lat, zoom)
	if !id.Valid() {
		return nil, fmt.Errorf("%w: invalid tile %s", ErrNetwork, id)
	}

	tileURL, err := BuildURL(f.urlTemplate, id, f.token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrNetwork, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %s", ErrNetwork, id, resp.Status)
	}

	img, format, err := image.Decode(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrNetwork, id, err)
	}

	tile := rasterFromImage(img)
	f.log.Debug("tile fetched",
		zap.Stringer("tile", id),
		zap.String("format", format),
		zap.Int("width", tile.Width),
		zap.Int("height", tile.Height),
		zap.Duration("elapsed", time.Since(start)),
	)
	return tile, nil
}

// rasterFromImage converts a decoded image to tightly packed RGBA bytes.
// Non-premultiplied sources are copied as-is so encoded channels survive
// partial alpha.
func rasterFromImage(img image.Image) *formats.RasterTile {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
		}
		return &formats.RasterTile{Width: w, Height: h, Pix: pix}
	}

	dst := &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return &formats.RasterTile{Width: w, Height: h, Pix: pix}
}
