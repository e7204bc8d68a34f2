// Package mask generates the random rectangular occlusion masks that mark
// the region the inpainting backend regenerates.
//
// A Generator samples an axis-aligned box whose width and height each lie
// within a configured fraction of the image dimensions, rasterizes it as a
// binary single-channel mask, and returns the matching normalized YOLO
// annotation. Each call is independent; the only shared state is the random
// source, so a Generator is not safe for concurrent use; create one per
// goroutine instead.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"time"

	"github.com/disintegration/imaging"

	"github.com/menta2k/firegen/pkg/annotation"
	"github.com/menta2k/firegen/pkg/types"
)

var (
	// ErrInvalidDimension indicates malformed image dimensions or fraction bounds
	ErrInvalidDimension = errors.New("mask: invalid dimension")

	// ErrPlacementImpossible indicates the sampled box cannot fit inside the frame
	ErrPlacementImpossible = errors.New("mask: box placement impossible")
)

// Default fraction bounds and blur, matching the training-data recipe
const (
	DefaultMinFrac    = 0.20
	DefaultMaxFrac    = 0.50
	DefaultBlurRadius = 4
)

// Generator produces random rectangular masks and their annotations
type Generator struct {
	minFrac    float64
	maxFrac    float64
	blurRadius int
	rng        *rand.Rand
}

// New creates a Generator. Fraction bounds must satisfy
// 0 < minFrac <= maxFrac <= 1 and blurRadius must be non-negative.
// A zero seed selects a time-based seed.
func New(minFrac, maxFrac float64, blurRadius int, seed int64) (*Generator, error) {
	if minFrac <= 0 || minFrac > 1 {
		return nil, fmt.Errorf("%w: min_frac %v outside (0,1]", ErrInvalidDimension, minFrac)
	}
	if maxFrac <= 0 || maxFrac > 1 {
		return nil, fmt.Errorf("%w: max_frac %v outside (0,1]", ErrInvalidDimension, maxFrac)
	}
	if minFrac > maxFrac {
		return nil, fmt.Errorf("%w: min_frac %v > max_frac %v", ErrInvalidDimension, minFrac, maxFrac)
	}
	if blurRadius < 0 {
		return nil, fmt.Errorf("%w: blur radius %d is negative", ErrInvalidDimension, blurRadius)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		minFrac:    minFrac,
		maxFrac:    maxFrac,
		blurRadius: blurRadius,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// NewDefault creates a Generator with the default fractions and blur
func NewDefault(seed int64) (*Generator, error) {
	return New(DefaultMinFrac, DefaultMaxFrac, DefaultBlurRadius, seed)
}

// Generate samples a random box for an image of the given dimensions and
// returns the rasterized mask, the normalized annotation record, and the box
// in pixel coordinates. The mask has the same dimensions as the image: zero
// outside the box, full intensity inside, optionally softened by a Gaussian
// blur that leaves the box coordinates untouched.
func (g *Generator) Generate(width, height int) (*image.Gray, annotation.Record, types.PixelBox, error) {
	if width <= 0 || height <= 0 {
		return nil, annotation.Record{}, types.PixelBox{},
			fmt.Errorf("%w: image %dx%d", ErrInvalidDimension, width, height)
	}

	boxW := g.sampleExtent(width)
	boxH := g.sampleExtent(height)
	if boxW > width || boxH > height {
		return nil, annotation.Record{}, types.PixelBox{},
			fmt.Errorf("%w: box %dx%d in frame %dx%d", ErrPlacementImpossible, boxW, boxH, width, height)
	}

	// Top-left corner uniform over the positions keeping the box in-frame.
	// A full-size box degenerates to the single position 0.
	x0 := g.rng.Intn(width - boxW + 1)
	y0 := g.rng.Intn(height - boxH + 1)
	box := types.PixelBox{X0: x0, Y0: y0, X1: x0 + boxW, Y1: y0 + boxH}

	m := rasterize(box, width, height)
	if g.blurRadius > 0 {
		m = blurGray(m, float64(g.blurRadius))
	}

	return m, annotation.FromPixelBox(box, width, height), box, nil
}

// sampleExtent picks a box extent uniformly from
// [floor(n*minFrac), floor(n*maxFrac)], clamped to at least one pixel
func (g *Generator) sampleExtent(n int) int {
	lo := int(float64(n) * g.minFrac)
	hi := int(float64(n) * g.maxFrac)
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

// rasterize builds a binary mask with the box filled at full intensity
func rasterize(box types.PixelBox, width, height int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	rect := image.Rect(box.X0, box.Y0, box.X1, box.Y1)
	draw.Draw(m, rect, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	return m
}

// blurGray applies a Gaussian blur and converts back to a single channel.
// Blurring a grayscale raster keeps R=G=B, so the red channel carries the
// blurred intensity.
func blurGray(m *image.Gray, sigma float64) *image.Gray {
	blurred := imaging.Blur(m, sigma)
	out := image.NewGray(m.Bounds())
	b := blurred.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: blurred.NRGBAAt(x, y).R})
		}
	}
	return out
}
