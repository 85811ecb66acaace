package region

import (
	"fmt"

	"github.com/ZacxDev/video-toolkit/internal/config"
)

// Rectangle is a named crop region in source-pixel coordinates.
type Rectangle struct {
	X        int
	Y        int
	Width    int
	Height   int
	Name     string
	Color    string
	Selected bool
}

// Record is the persisted form of a Rectangle.
type Record struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// NormalizedRect holds coordinates relative to the frame size (0..1).
type NormalizedRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRectangle creates a rectangle with the default color.
func NewRectangle(x, y, width, height int, name string) *Rectangle {
	return &Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Name:   name,
		Color:  config.DefaultRegionColor,
	}
}

// X2 returns the right edge.
func (r *Rectangle) X2() int { return r.X + r.Width }

// Y2 returns the bottom edge.
func (r *Rectangle) Y2() int { return r.Y + r.Height }

// Center returns the center point, rounded down.
func (r *Rectangle) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// ContainsPoint reports whether (x, y) lies inside r, edges included.
func (r *Rectangle) ContainsPoint(x, y int) bool {
	return r.X <= x && x <= r.X2() && r.Y <= y && y <= r.Y2()
}

// IsValid reports whether r has positive dimensions.
func (r *Rectangle) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// InBounds reports whether r fits entirely inside a width x height frame.
func (r *Rectangle) InBounds(width, height int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X2() <= width && r.Y2() <= height
}

// Move overwrites the position without any bounds check.
func (r *Rectangle) Move(x, y int) {
	r.X = x
	r.Y = y
}

// Resize sets the size, clamping each dimension to at least 1.
func (r *Rectangle) Resize(width, height int) {
	r.Width = max(1, width)
	r.Height = max(1, height)
}

// ConstrainToBounds clamps the origin into the frame and then trims the size
// so the far edges do not pass maxWidth/maxHeight.
func (r *Rectangle) ConstrainToBounds(maxWidth, maxHeight int) {
	r.X = max(0, min(r.X, maxWidth-1))
	r.Y = max(0, min(r.Y, maxHeight-1))

	r.Width = min(r.Width, maxWidth-r.X)
	r.Height = min(r.Height, maxHeight-r.Y)
}

// Normalized converts r into frame-relative coordinates.
func (r *Rectangle) Normalized(videoWidth, videoHeight int) NormalizedRect {
	if videoWidth <= 0 || videoHeight <= 0 {
		return NormalizedRect{}
	}
	return NormalizedRect{
		X:      float64(r.X) / float64(videoWidth),
		Y:      float64(r.Y) / float64(videoHeight),
		Width:  float64(r.Width) / float64(videoWidth),
		Height: float64(r.Height) / float64(videoHeight),
	}
}

// Record returns the persisted form of r.
func (r *Rectangle) Record() Record {
	return Record{
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Name:   r.Name,
		Color:  r.Color,
	}
}

// FromRecord builds a rectangle from its persisted form.
func FromRecord(rec Record) *Rectangle {
	r := NewRectangle(rec.X, rec.Y, rec.Width, rec.Height, rec.Name)
	if rec.Color != "" {
		r.Color = rec.Color
	}
	return r
}

// Clone returns an unselected copy of r.
func (r *Rectangle) Clone() *Rectangle {
	return FromRecord(r.Record())
}

func (r *Rectangle) String() string {
	return fmt.Sprintf("%s (%dx%d at %d,%d)", r.Name, r.Width, r.Height, r.X, r.Y)
}
