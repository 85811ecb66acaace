package display

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrSurfaceNotReady is returned while the display surface has no usable size yet.
	ErrSurfaceNotReady = errors.New("display surface not ready")
	// ErrNoSource is returned when no source frame size is known.
	ErrNoSource = errors.New("source frame size unknown")
)

// Surface is anything that can report its current pixel size.
type Surface interface {
	Size() (width, height int)
}

// Mapper converts between display coordinates on a letterboxed surface and
// source-frame pixel coordinates.
type Mapper struct {
	surfaceWidth  int
	surfaceHeight int
	sourceWidth   int
	sourceHeight  int
	scale         float64
	offsetX       float64
	offsetY       float64
}

// NewMapper fits a srcW x srcH frame inside a surfaceW x surfaceH surface.
func NewMapper(surfaceW, surfaceH, srcW, srcH int) (*Mapper, error) {
	m := &Mapper{}
	if err := m.Update(surfaceW, surfaceH, srcW, srcH); err != nil {
		return nil, err
	}
	return m, nil
}

// MapperFor builds a mapper for the surface's current size.
func MapperFor(s Surface, srcW, srcH int) (*Mapper, error) {
	w, h := s.Size()
	return NewMapper(w, h, srcW, srcH)
}

// Update recomputes scale and offsets. On error the previous mapping is kept.
func (m *Mapper) Update(surfaceW, surfaceH, srcW, srcH int) error {
	if surfaceW <= 1 || surfaceH <= 1 {
		return ErrSurfaceNotReady
	}
	if srcW <= 0 || srcH <= 0 {
		return ErrNoSource
	}

	scale := math.Min(float64(surfaceW)/float64(srcW), float64(surfaceH)/float64(srcH))

	m.surfaceWidth, m.surfaceHeight = surfaceW, surfaceH
	m.sourceWidth, m.sourceHeight = srcW, srcH
	m.scale = scale
	m.offsetX = (float64(surfaceW) - float64(srcW)*scale) / 2
	m.offsetY = (float64(surfaceH) - float64(srcH)*scale) / 2
	return nil
}

// Scale returns the uniform display/source scale factor.
func (m *Mapper) Scale() float64 { return m.scale }

// Offset returns the letterbox padding on the left and top.
func (m *Mapper) Offset() (float64, float64) { return m.offsetX, m.offsetY }

// SourceSize returns the source frame size.
func (m *Mapper) SourceSize() (int, int) { return m.sourceWidth, m.sourceHeight }

// SurfaceSize returns the display surface size.
func (m *Mapper) SurfaceSize() (int, int) { return m.surfaceWidth, m.surfaceHeight }

// DisplayedSize returns the size of the scaled frame on the surface.
func (m *Mapper) DisplayedSize() (float64, float64) {
	return float64(m.sourceWidth) * m.scale, float64(m.sourceHeight) * m.scale
}

// ToSource maps a display point to the nearest source pixel inside the frame.
func (m *Mapper) ToSource(cx, cy float64) (int, int) {
	sx := int(math.Round((cx - m.offsetX) / m.scale))
	sy := int(math.Round((cy - m.offsetY) / m.scale))
	return clamp(sx, 0, m.sourceWidth-1), clamp(sy, 0, m.sourceHeight-1)
}

// ToDisplay maps a source point onto the surface.
func (m *Mapper) ToDisplay(sx, sy int) (float64, float64) {
	return m.offsetX + float64(sx)*m.scale, m.offsetY + float64(sy)*m.scale
}

// HandleTolerance converts a handle size in display pixels into source pixels.
func (m *Mapper) HandleTolerance(handlePx int) float64 {
	return float64(handlePx) / m.scale
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
