package display

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/region"
)

// Canvas is an offscreen display surface. It letterboxes a source frame and
// draws regions on top, the same way an interactive preview would.
type Canvas struct {
	width  int
	height int
	img    *image.NRGBA
}

// NewCanvas creates a black surface of the given size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{width: width, height: height}
	c.img = imaging.New(max(width, 1), max(height, 1), color.Black)
	return c
}

// Size implements Surface.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Image returns the rendered surface.
func (c *Canvas) Image() image.Image {
	return c.img
}

// DrawFrame scales frame into the letterboxed area described by m.
func (c *Canvas) DrawFrame(frame image.Image, m *Mapper) {
	if frame == nil {
		return
	}
	dw, dh := m.DisplayedSize()
	w, h := int(math.Round(dw)), int(math.Round(dh))
	if w < 1 || h < 1 {
		return
	}
	ox, oy := m.Offset()
	scaled := imaging.Resize(frame, w, h, imaging.Lanczos)
	c.img = imaging.Paste(c.img, scaled, image.Pt(int(ox), int(oy)))
}

// DrawRegions outlines every rectangle, labels it, and adds handles to the
// selected one.
func (c *Canvas) DrawRegions(rects []*region.Rectangle, m *Mapper) {
	for _, r := range rects {
		x1, y1 := m.ToDisplay(r.X, r.Y)
		x2, y2 := m.ToDisplay(r.X2(), r.Y2())
		clr := ParseHexColor(r.Color)

		thickness := 2
		if r.Selected {
			thickness = 3
		}
		c.strokeRect(int(x1), int(y1), int(x2), int(y2), clr, thickness, 0)
		c.label(int(x1)+4, int(y1)+14, r.Name, clr)

		if r.Selected {
			c.drawHandles(x1, y1, x2, y2)
		}
	}
}

// DrawPending outlines an uncommitted rectangle with a dashed line.
func (c *Canvas) DrawPending(x, y, w, h int, m *Mapper) {
	x1, y1 := m.ToDisplay(x, y)
	x2, y2 := m.ToDisplay(x+w, y+h)
	c.strokeRect(int(x1), int(y1), int(x2), int(y2), ParseHexColor(config.PendingRegionColor), 2, 5)
}

// Save writes the surface to path; the format follows the extension.
func (c *Canvas) Save(path string) error {
	if err := imaging.Save(c.img, path); err != nil {
		return errors.Wrapf(err, "failed to save canvas to %s", path)
	}
	return nil
}

func (c *Canvas) drawHandles(x1, y1, x2, y2 float64) {
	mx, my := (x1+x2)/2, (y1+y2)/2
	points := [][2]float64{
		{x1, y1}, {x2, y1}, {x1, y2}, {x2, y2},
		{mx, y1}, {mx, y2}, {x1, my}, {x2, my},
	}
	half := config.HandleDrawPixels / 2
	for _, p := range points {
		px, py := int(p[0]), int(p[1])
		box := image.Rect(px-half, py-half, px+half, py+half)
		draw.Draw(c.img, box, image.NewUniform(color.White), image.Point{}, draw.Src)
		c.strokeRect(box.Min.X, box.Min.Y, box.Max.X, box.Max.Y, color.Black, 1, 0)
	}
}

// strokeRect draws an outline. dash > 0 alternates dash-length runs.
func (c *Canvas) strokeRect(x1, y1, x2, y2 int, clr color.Color, thickness, dash int) {
	on := func(i int) bool { return dash <= 0 || (i/dash)%2 == 0 }
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			if on(x - x1) {
				c.set(x, y1+t, clr)
				c.set(x, y2-t, clr)
			}
		}
		for y := y1; y <= y2; y++ {
			if on(y - y1) {
				c.set(x1+t, y, clr)
				c.set(x2-t, y, clr)
			}
		}
	}
}

func (c *Canvas) set(x, y int, clr color.Color) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.Set(x, y, clr)
	}
}

func (c *Canvas) label(x, y int, text string, clr color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// ParseHexColor converts "#RRGGBB" to a color, falling back to red.
func ParseHexColor(s string) color.NRGBA {
	fallback := color.NRGBA{R: 255, A: 255}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
