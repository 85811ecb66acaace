package region

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/ZacxDev/video-toolkit/internal/config"
)

// Manager owns an ordered set of uniquely named rectangles over a source
// frame. Insertion order is z-order: the last rectangle is topmost.
//
// A Manager is not safe for concurrent use. Background work should operate
// on the copies returned by Rectangles.
type Manager struct {
	rectangles  []*Rectangle
	selected    *Rectangle
	videoWidth  int
	videoHeight int
	palette     []string
	colorIndex  int
}

// Summary describes the current region set for processing.
type Summary struct {
	VideoDimensions config.VideoDimensions `json:"video_dimensions"`
	Rectangles      []Record               `json:"rectangles"`
	Normalized      []NormalizedRect       `json:"normalized,omitempty"`
	Count           int                    `json:"count"`
}

// NewManager creates an empty manager without frame bounds.
func NewManager() *Manager {
	return &Manager{
		palette: slices.Clone(config.RegionPalette),
	}
}

// SetBounds records the source frame size and constrains every existing
// rectangle to it.
func (m *Manager) SetBounds(width, height int) {
	m.videoWidth = width
	m.videoHeight = height

	for _, r := range m.rectangles {
		r.ConstrainToBounds(width, height)
	}
}

// Bounds returns the source frame size, zero when unset.
func (m *Manager) Bounds() (int, int) {
	return m.videoWidth, m.videoHeight
}

func (m *Manager) hasBounds() bool {
	return m.videoWidth > 0 && m.videoHeight > 0
}

// Add creates a rectangle on top of the stack. An empty name becomes
// region_N; a name already in use gets the first free _1, _2, ... suffix.
func (m *Manager) Add(x, y, width, height int, name string) *Rectangle {
	if name == "" {
		name = fmt.Sprintf("region_%d", len(m.rectangles)+1)
	}
	name = m.uniqueName(name, nil)

	r := NewRectangle(x, y, width, height, name)
	r.Color = m.palette[m.colorIndex%len(m.palette)]
	m.colorIndex++

	if m.hasBounds() {
		r.ConstrainToBounds(m.videoWidth, m.videoHeight)
	}

	m.rectangles = append(m.rectangles, r)
	return r
}

// Remove deletes r by identity.
func (m *Manager) Remove(r *Rectangle) bool {
	i := slices.Index(m.rectangles, r)
	if i < 0 {
		return false
	}
	m.rectangles = slices.Delete(m.rectangles, i, i+1)
	if m.selected == r {
		m.selected = nil
	}
	return true
}

// At returns the topmost rectangle containing (x, y), or nil.
func (m *Manager) At(x, y int) *Rectangle {
	for i := len(m.rectangles) - 1; i >= 0; i-- {
		if m.rectangles[i].ContainsPoint(x, y) {
			return m.rectangles[i]
		}
	}
	return nil
}

// Select makes r the only selected rectangle. Nil clears the selection.
func (m *Manager) Select(r *Rectangle) {
	if m.selected != nil {
		m.selected.Selected = false
	}
	m.selected = r
	if r != nil {
		r.Selected = true
	}
}

// Selected returns the selected rectangle, or nil.
func (m *Manager) Selected() *Rectangle {
	return m.selected
}

// Rename gives r a new unique name. Blank names are rejected.
func (m *Manager) Rename(r *Rectangle, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	r.Name = m.uniqueName(name, r)
	return true
}

// Find returns the rectangle with the given name, or nil.
func (m *Manager) Find(name string) *Rectangle {
	i := slices.IndexFunc(m.rectangles, func(r *Rectangle) bool { return r.Name == name })
	if i < 0 {
		return nil
	}
	return m.rectangles[i]
}

// Names returns the rectangle names in z-order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.rectangles))
	for _, r := range m.rectangles {
		names = append(names, r.Name)
	}
	return names
}

// Len returns the number of rectangles.
func (m *Manager) Len() int {
	return len(m.rectangles)
}

// Rectangles returns copies of the rectangles in z-order.
func (m *Manager) Rectangles() []*Rectangle {
	out := make([]*Rectangle, 0, len(m.rectangles))
	for _, r := range m.rectangles {
		c := *r
		out = append(out, &c)
	}
	return out
}

// Validate describes every problem with the current set. An empty result
// means the set is ready for processing.
func (m *Manager) Validate() []string {
	var problems []string

	if len(m.rectangles) == 0 {
		return append(problems, "No crop rectangles defined")
	}

	for _, r := range m.rectangles {
		if !r.IsValid() {
			problems = append(problems, fmt.Sprintf("Rectangle '%s' has invalid dimensions", r.Name))
		}
		if m.hasBounds() && (r.X2() > m.videoWidth || r.Y2() > m.videoHeight) {
			problems = append(problems, fmt.Sprintf("Rectangle '%s' extends beyond video bounds", r.Name))
		}
	}

	counts := make(map[string]int, len(m.rectangles))
	var order []string
	for _, r := range m.rectangles {
		if counts[r.Name] == 0 {
			order = append(order, r.Name)
		}
		counts[r.Name]++
	}
	for _, name := range order {
		if counts[name] > 1 {
			problems = append(problems, fmt.Sprintf("Duplicate rectangle name: '%s'", name))
		}
	}

	return problems
}

// Clear removes every rectangle and restarts the color sequence.
func (m *Manager) Clear() {
	m.rectangles = nil
	m.selected = nil
	m.colorIndex = 0
}

// Replace swaps the whole collection, typically after loading a template.
// Names are made unique in order and rectangles are constrained when bounds
// are known. Colors come from the loaded rectangles.
func (m *Manager) Replace(rects []*Rectangle) {
	m.Clear()
	for _, r := range rects {
		if r == nil {
			continue
		}
		c := *r
		c.Selected = false
		if strings.TrimSpace(c.Name) == "" {
			c.Name = fmt.Sprintf("region_%d", len(m.rectangles)+1)
		}
		c.Name = m.uniqueName(c.Name, nil)
		if c.Color == "" {
			c.Color = config.DefaultRegionColor
		}
		if m.hasBounds() {
			c.ConstrainToBounds(m.videoWidth, m.videoHeight)
		}
		m.rectangles = append(m.rectangles, &c)
	}
	m.colorIndex = len(m.rectangles)
}

// Summary returns the set as plain records together with the frame size.
// Frame-relative coordinates are included once bounds are known.
func (m *Manager) Summary() Summary {
	recs := make([]Record, 0, len(m.rectangles))
	var norm []NormalizedRect
	for _, r := range m.rectangles {
		recs = append(recs, r.Record())
		if m.hasBounds() {
			norm = append(norm, r.Normalized(m.videoWidth, m.videoHeight))
		}
	}
	return Summary{
		VideoDimensions: config.VideoDimensions{Width: m.videoWidth, Height: m.videoHeight},
		Rectangles:      recs,
		Normalized:      norm,
		Count:           len(recs),
	}
}

func (m *Manager) uniqueName(base string, exclude *Rectangle) string {
	existing := make(map[string]struct{}, len(m.rectangles))
	for _, r := range m.rectangles {
		if r != exclude {
			existing[r.Name] = struct{}{}
		}
	}

	if _, taken := existing[base]; !taken {
		return base
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
