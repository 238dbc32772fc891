package media

import (
	"fmt"

	"github.com/reelcore/reel/avbridge"
)

// ResizeStrategy controls how a decoder derives output dimensions from a
// source stream's native size.
type ResizeStrategy struct {
	kind             resizeKind
	width, height    int
}

type resizeKind int

const (
	resizeFit resizeKind = iota
	resizeFitWidth
	resizeFitHeight
	resizeExact
)

// ResizeFit bounds both dimensions by (maxW, maxH), preserving aspect
// ratio.
func ResizeFit(maxW, maxH int) ResizeStrategy {
	return ResizeStrategy{kind: resizeFit, width: maxW, height: maxH}
}

// ResizeFitWidth bounds width, deriving height from the source's aspect
// ratio.
func ResizeFitWidth(w int) ResizeStrategy {
	return ResizeStrategy{kind: resizeFitWidth, width: w}
}

// ResizeFitHeight bounds height, deriving width from the source's aspect
// ratio.
func ResizeFitHeight(h int) ResizeStrategy {
	return ResizeStrategy{kind: resizeFitHeight, height: h}
}

// ResizeExact forces exact (w, h), ignoring the source's aspect ratio.
func ResizeExact(w, h int) ResizeStrategy {
	return ResizeStrategy{kind: resizeExact, width: w, height: h}
}

// apply computes concrete output dimensions for a source of (srcW, srcH).
// Returns avbridge.ErrInvalidResizeParameters if the result has a
// zero dimension.
func (r ResizeStrategy) apply(srcW, srcH int) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("resize strategy: %w", avbridge.ErrInvalidResizeParameters)
	}
	var w, h int
	switch r.kind {
	case resizeExact:
		w, h = r.width, r.height
	case resizeFitWidth:
		w = r.width
		h = srcH * w / srcW
	case resizeFitHeight:
		h = r.height
		w = srcW * h / srcH
	default: // resizeFit
		wScale := float64(r.width) / float64(srcW)
		hScale := float64(r.height) / float64(srcH)
		scale := wScale
		if hScale < scale {
			scale = hScale
		}
		w = int(float64(srcW) * scale)
		h = int(float64(srcH) * scale)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("resize strategy: %w", avbridge.ErrInvalidResizeParameters)
	}
	return w, h, nil
}
