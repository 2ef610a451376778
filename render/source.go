// Package render loads raster tiles over HTTP and draws tile layers
// onto an ebiten screen.
package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/OpticalFlyer/atlas/tilemap"
)

// SourceOptions configures an ImageSource.
type SourceOptions struct {
	// URL is the tile URL template. Placeholders: {z} {x} {y} for the
	// tile address, {s} for a subdomain, {r} for the retina suffix and
	// {-y} for a flipped row number on a square world.
	URL string `validate:"required"`

	// Subdomains are the single-letter hosts substituted for {s}.
	Subdomains string

	// ErrorTileURL is fetched once as a stand-in when a tile fails.
	ErrorTileURL string

	// ZoomOffset shifts the {z} value; ZoomReverse counts {z} down
	// from MaxZoom instead of up from zero.
	ZoomOffset  int
	ZoomReverse bool

	// MaxZoom anchors ZoomReverse.
	MaxZoom int

	// TMS flips {y} for tile servers with a southwest origin.
	TMS bool

	// Retina substitutes "@2x" for {r} and requests double-density
	// tiles.
	Retina bool

	// UserAgent identifies the client to the tile server.
	UserAgent string

	// Client overrides the HTTP client used for fetches.
	Client *http.Client
}

// ImageSource fetches and decodes raster tiles over HTTP. It
// implements tilemap.Source.
type ImageSource struct {
	opts   SourceOptions
	client *http.Client
}

var _ tilemap.Source = (*ImageSource)(nil)

// NewImageSource creates a tile fetcher for the given URL template.
func NewImageSource(opts SourceOptions) (*ImageSource, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid tile source options: %w", err)
	}
	if opts.Subdomains == "" {
		opts.Subdomains = "abc"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Atlas 1.0"
	}
	if opts.MaxZoom == 0 {
		opts.MaxZoom = 18
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageSource{opts: opts, client: client}, nil
}

// CreateTile starts fetching the tile in the background and returns
// its element immediately.
func (s *ImageSource) CreateTile(ctx context.Context, coords tilemap.TileCoord, done tilemap.DoneFunc) tilemap.Element {
	tile := &TileImage{}
	go s.load(ctx, coords, tile, done)
	return tile
}

// Dispose releases the tile's texture.
func (s *ImageSource) Dispose(el tilemap.Element) {
	if tile, ok := el.(*TileImage); ok && tile != nil {
		tile.release()
	}
}

func (s *ImageSource) load(ctx context.Context, coords tilemap.TileCoord, tile *TileImage, done tilemap.DoneFunc) {
	img, err := s.fetchImage(ctx, s.TileURL(coords))
	if err != nil {
		if ctx.Err() != nil {
			// The layer gave up on this tile; nobody is listening.
			return
		}
		done(err, tile)
		if s.opts.ErrorTileURL == "" {
			return
		}
		// One shot at the stand-in; a second failure leaves the tile
		// as an errored blank.
		img, err = s.fetchImage(ctx, s.opts.ErrorTileURL)
		if err != nil {
			return
		}
	}
	tile.setImage(img)
	done(nil, tile)
}

func (s *ImageSource) fetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s failed: %w", url, err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch tile %s: %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s failed: %w", url, err)
	}
	return img, nil
}

// TileURL expands the template for one tile.
func (s *ImageSource) TileURL(coords tilemap.TileCoord) string {
	z := coords.Z
	if s.opts.ZoomReverse {
		z = s.opts.MaxZoom - z
	}
	z += s.opts.ZoomOffset

	invertedY := (1 << uint(coords.Z)) - 1 - coords.Y
	y := coords.Y
	if s.opts.TMS {
		y = invertedY
	}

	retina := ""
	if s.opts.Retina {
		retina = "@2x"
	}

	r := strings.NewReplacer(
		"{s}", s.subdomain(coords),
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(coords.X),
		"{y}", strconv.Itoa(y),
		"{-y}", strconv.Itoa(invertedY),
		"{r}", retina,
	)
	return r.Replace(s.opts.URL)
}

func (s *ImageSource) subdomain(coords tilemap.TileCoord) string {
	subs := s.opts.Subdomains
	if subs == "" {
		return ""
	}
	i := (coords.X + coords.Y) % len(subs)
	if i < 0 {
		i += len(subs)
	}
	return string(subs[i])
}

// TileImage carries a tile's pixels from the fetch goroutine to the
// draw loop, converting to a GPU texture on first draw.
type TileImage struct {
	mu  sync.Mutex
	img image.Image

	// Draw-goroutine state.
	eb    *ebiten.Image
	ebSrc image.Image
}

func (t *TileImage) setImage(img image.Image) {
	t.mu.Lock()
	t.img = img
	t.mu.Unlock()
}

// Image returns the decoded pixels, or nil while the tile is loading
// or after it failed.
func (t *TileImage) Image() image.Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Ebiten returns the tile's texture, building or rebuilding it when
// the pixels changed. Call it from the draw goroutine only.
func (t *TileImage) Ebiten() *ebiten.Image {
	img := t.Image()
	if img == nil {
		return nil
	}
	if t.eb == nil || t.ebSrc != img {
		if t.eb != nil {
			t.eb.Deallocate()
		}
		t.eb = ebiten.NewImageFromImage(img)
		t.ebSrc = img
	}
	return t.eb
}

func (t *TileImage) release() {
	if t.eb != nil {
		t.eb.Deallocate()
		t.eb = nil
		t.ebSrc = nil
	}
	t.setImage(nil)
}
