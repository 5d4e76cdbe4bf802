// Package cleaner removes the capture artifact some source renders carry: a
// small neutral-gray box burned into the lower right of the frame.
//
// Detection works on connected components of near-gray pixels, matched by
// perceptual (Lab) color distance rather than raw channel deltas. Candidate
// components are filtered by size and by overlap with the right third of the
// image, and the rightmost-bottom survivor is treated as the artifact. The
// box is expanded slightly to catch anti-aliased edge pixels and patched with
// the dominant color of the surrounding ring.
//
// Cleaning never runs implicitly during preview or export; it is an explicit
// operation on a source image or an input directory.
package cleaner
