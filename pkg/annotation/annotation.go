// Package annotation implements the YOLO-format bounding-box records written
// alongside every generated image.
package annotation

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/menta2k/firegen/pkg/types"
)

// DamageClass is the class id for the single "damage region" class
const DamageClass = 0

// Record is a YOLO-style annotation: class id plus box center and extents,
// all normalized to [0,1] relative to the image dimensions.
type Record struct {
	Class int
	CX    float64
	CY    float64
	W     float64
	H     float64
}

// FromPixelBox converts a pixel-space box into a normalized record for an
// image of the given dimensions
func FromPixelBox(box types.PixelBox, imgW, imgH int) Record {
	cx, cy := box.Center()
	return Record{
		Class: DamageClass,
		CX:    cx / float64(imgW),
		CY:    cy / float64(imgH),
		W:     float64(box.Width()) / float64(imgW),
		H:     float64(box.Height()) / float64(imgH),
	}
}

// String renders the record as five space-separated fields. Floats use the
// shortest decimal form that survives a parse round-trip.
func (r Record) String() string {
	fields := []string{
		strconv.Itoa(r.Class),
		strconv.FormatFloat(r.CX, 'f', -1, 64),
		strconv.FormatFloat(r.CY, 'f', -1, 64),
		strconv.FormatFloat(r.W, 'f', -1, 64),
		strconv.FormatFloat(r.H, 'f', -1, 64),
	}
	return strings.Join(fields, " ")
}

// Save writes the record verbatim to a companion text file
func (r Record) Save(path string) error {
	return os.WriteFile(path, []byte(r.String()), 0o644)
}

// Parse decodes a record from its text form
func Parse(s string) (Record, error) {
	fields := strings.Fields(s)
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("annotation: expected 5 fields, got %d", len(fields))
	}

	class, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("annotation: invalid class id %q: %v", fields[0], err)
	}

	vals := make([]float64, 4)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, fmt.Errorf("annotation: invalid field %q: %v", f, err)
		}
		if v < 0 || v > 1 {
			return Record{}, fmt.Errorf("annotation: field %q outside [0,1]", f)
		}
		vals[i] = v
	}

	return Record{Class: class, CX: vals[0], CY: vals[1], W: vals[2], H: vals[3]}, nil
}

// Load reads and parses a record from a file
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	return Parse(string(data))
}

// PixelBox reconstructs the pixel-space box for an image of the given
// dimensions. Inverse of FromPixelBox up to integer rounding.
func (r Record) PixelBox(imgW, imgH int) types.PixelBox {
	w := r.W * float64(imgW)
	h := r.H * float64(imgH)
	x0 := r.CX*float64(imgW) - w/2
	y0 := r.CY*float64(imgH) - h/2
	return types.PixelBox{
		X0: int(x0 + 0.5),
		Y0: int(y0 + 0.5),
		X1: int(x0 + w + 0.5),
		Y1: int(y0 + h + 0.5),
	}
}
