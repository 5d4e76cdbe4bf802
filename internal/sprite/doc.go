// Package sprite implements the pixel-transform engine that turns grayscale
// nebula renders into RGBA sprites.
//
// The core is a pure mapping from pixel luminance to alpha through a threshold
// window (min, max): gray values at or below min become fully transparent,
// values at or above max become fully opaque, and values in between are
// linearly interpolated. The RGB channels of the output replicate the source
// luminance so partially transparent pixels keep a neutral-gray appearance.
//
// On top of the mapper the package provides:
//
//   - Cache: thread-safe decoded-image cache shared by preview and export
//   - Renderer: on-demand preview encoding, never touching disk
//   - Exporter: ordered batch export with sequential output naming and
//     per-file failure isolation
//   - SuggestWindow: advisory threshold estimation from the luminance
//     distribution of an image
//
// # Determinism
//
// MapPixel and MapImage are pure functions of their inputs. Export order is
// fixed by the catalog's lexicographic listing, taken once per export call,
// so identical inputs and settings always produce identical output files.
package sprite
