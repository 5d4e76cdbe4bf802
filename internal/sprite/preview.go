package sprite

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/nebulator/internal/catalog"
	"github.com/ironsheep/nebulator/internal/settings"
)

// Renderer produces on-demand preview sprites. It always renders with the
// window the caller supplies, not the stored one, so a client can explore
// parameters before committing an override. Nothing is written to disk and no
// rendered output is cached; cache-busting is the transport's concern.
type Renderer struct {
	catalog *catalog.Catalog
	cache   *Cache
}

// NewRenderer creates a renderer over the given catalog and image cache.
func NewRenderer(cat *catalog.Catalog, cache *Cache) *Renderer {
	return &Renderer{
		catalog: cat,
		cache:   cache,
	}
}

// Render maps the named catalog image through the supplied window and returns
// the result as PNG bytes.
//
// Returns settings.ErrInvalidRange (wrapped) for a bad window, before any I/O,
// and catalog.ErrNotFound (wrapped) if name is not a catalog entry.
func (r *Renderer) Render(name string, minGray, maxGray int) ([]byte, error) {
	return r.render(name, minGray, maxGray, 0)
}

// RenderScaled is Render with the output bounded to maxEdge pixels on its
// longer side, downscaling with Lanczos resampling when the source is larger.
// A maxEdge of zero or less means no scaling. Intended for thumbnail-sized
// previews; export always runs at full resolution.
func (r *Renderer) RenderScaled(name string, minGray, maxGray, maxEdge int) ([]byte, error) {
	return r.render(name, minGray, maxGray, maxEdge)
}

func (r *Renderer) render(name string, minGray, maxGray, maxEdge int) ([]byte, error) {
	if err := settings.ValidateWindow(minGray, maxGray); err != nil {
		return nil, err
	}

	ok, err := r.catalog.Contains(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, catalog.ErrNotFound)
	}

	img, err := r.cache.Load(r.catalog.Path(name))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if maxEdge > 0 && (bounds.Dx() > maxEdge || bounds.Dy() > maxEdge) {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	mapped := MapImage(img, uint8(minGray), uint8(maxGray))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, mapped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
