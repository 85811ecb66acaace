package types

import (
	"fmt"
	"math"
)

// CropSpec is a crop window in source pixels.
type CropSpec struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Filter returns the ffmpeg crop filter expression.
func (c CropSpec) Filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

// EqSpec holds ffmpeg eq filter values.
type EqSpec struct {
	Brightness float64 // -1..1
	Contrast   float64 // 0.1..3
}

// EqFromAdjustment maps UI-style adjustments in -100..100 onto eq values.
// Brightness scales linearly onto -1..1 (ui*2.55/255), contrast onto 1+ui/100.
func EqFromAdjustment(brightness, contrast int) EqSpec {
	b := float64(brightness) / 100.0
	c := 1.0 + float64(contrast)/100.0
	return EqSpec{
		Brightness: math.Max(-1.0, math.Min(1.0, b)),
		Contrast:   math.Max(0.1, math.Min(3.0, c)),
	}
}

// IsIdentity reports whether the filter would leave the picture unchanged.
func (e EqSpec) IsIdentity() bool {
	return e.Brightness == 0 && e.Contrast == 1
}

// Filter returns the ffmpeg eq filter expression.
func (e EqSpec) Filter() string {
	return fmt.Sprintf("eq=brightness=%.3f:contrast=%.3f", e.Brightness, e.Contrast)
}

// Chunk is one segment of a split plan.
type Chunk struct {
	Index    int
	Start    float64
	Duration float64
	Path     string
}

// End returns the chunk end time in seconds.
func (c Chunk) End() float64 {
	return c.Start + c.Duration
}
