package interaction

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/display"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/region"
)

// Controller turns pointer events into draw, move and resize gestures on a
// region.Manager. It runs on a single goroutine and is not safe for
// concurrent use.
type Controller struct {
	manager *region.Manager
	mapper  *display.Mapper
	logger  *zap.Logger
	prompt  NamePrompt

	surfaceWidth  int
	surfaceHeight int
	sourceWidth   int
	sourceHeight  int

	handlePixels int
	minSize      int

	state State

	// gesture bookkeeping, valid while state != StateIdle
	startX, startY int
	handle         Handle
	target         *region.Rectangle
	snapshot       Box
	pending        Box
	hasPending     bool

	listeners []StateListener
}

// NewController creates an idle controller over m. prompt may be nil.
func NewController(m *region.Manager, logger *zap.Logger, prompt NamePrompt) *Controller {
	return &Controller{
		manager:      m,
		logger:       logging.OrNop(logger),
		prompt:       prompt,
		handlePixels: config.HandlePixels,
		minSize:      config.MinRegionSize,
	}
}

// AddListener registers a transition callback.
func (c *Controller) AddListener(l StateListener) {
	c.listeners = append(c.listeners, l)
}

// SetSurface records a new display size and recomputes the mapping.
func (c *Controller) SetSurface(width, height int) {
	c.surfaceWidth, c.surfaceHeight = width, height
	c.remap()
}

// SetSource records a new source frame size, re-bounds the manager and
// recomputes the mapping.
func (c *Controller) SetSource(width, height int) {
	c.sourceWidth, c.sourceHeight = width, height
	c.manager.SetBounds(width, height)
	c.remap()
}

func (c *Controller) remap() {
	if c.mapper == nil {
		m, err := display.NewMapper(c.surfaceWidth, c.surfaceHeight, c.sourceWidth, c.sourceHeight)
		if err != nil {
			c.logger.Debug("mapping deferred", zap.Error(err),
				zap.Int("surface_w", c.surfaceWidth), zap.Int("surface_h", c.surfaceHeight))
			return
		}
		c.mapper = m
		return
	}
	if err := c.mapper.Update(c.surfaceWidth, c.surfaceHeight, c.sourceWidth, c.sourceHeight); err != nil {
		c.logger.Debug("mapping deferred", zap.Error(err))
		c.mapper = nil
	}
}

// Mapper returns the current mapping, nil while the surface is not ready.
func (c *Controller) Mapper() *display.Mapper { return c.mapper }

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// ActiveHandle returns the handle being dragged while resizing.
func (c *Controller) ActiveHandle() Handle { return c.handle }

// Pending returns the uncommitted box while drawing.
func (c *Controller) Pending() (Box, bool) {
	return c.pending, c.state == StateDrawing && c.hasPending
}

// HandleEvent feeds one event. Pointer events that arrive before the surface
// is ready are dropped; region commands apply regardless.
func (c *Controller) HandleEvent(ev Event) {
	if !ev.Kind.pointer() {
		c.command(ev)
		return
	}
	if c.mapper == nil {
		c.logger.Debug("dropping pointer event, surface not ready", zap.Stringer("kind", ev.Kind))
		return
	}
	sx, sy := c.mapper.ToSource(ev.X, ev.Y)

	switch ev.Kind {
	case PointerDown:
		c.pointerDown(sx, sy)
	case PointerMove:
		c.pointerMove(sx, sy)
	case PointerUp:
		c.pointerUp(sx, sy)
	}
}

// Replay feeds a whole event script in order.
func (c *Controller) Replay(events []Event) {
	for _, ev := range events {
		c.HandleEvent(ev)
	}
}

func (c *Controller) pointerDown(sx, sy int) {
	if c.state != StateIdle {
		// a press without a release; drop the unfinished gesture
		c.logger.Debug("abandoning unfinished gesture", zap.Stringer("state", c.state))
		c.reset()
	}

	hit := c.manager.At(sx, sy)
	if hit == nil {
		c.manager.Select(nil)
		c.startX, c.startY = sx, sy
		c.pending = Box{X: sx, Y: sy}
		c.hasPending = false
		c.transition(StateDrawing)
		return
	}

	c.manager.Select(hit)
	c.target = hit
	c.startX, c.startY = sx, sy
	c.snapshot = Box{X: hit.X, Y: hit.Y, Width: hit.Width, Height: hit.Height}

	if h := c.handleAt(hit, sx, sy); h != HandleNone {
		c.handle = h
		c.transition(StateResizing)
		return
	}
	c.transition(StateDragging)
}

func (c *Controller) pointerMove(sx, sy int) {
	switch c.state {
	case StateDrawing:
		c.pending = normalizedBox(c.startX, c.startY, sx, sy)
		c.hasPending = true
	case StateDragging:
		c.drag(sx, sy)
	case StateResizing:
		c.resize(sx, sy)
	}
}

func (c *Controller) pointerUp(sx, sy int) {
	switch c.state {
	case StateDrawing:
		box := normalizedBox(c.startX, c.startY, sx, sy)
		c.reset()
		if box.Width < c.minSize || box.Height < c.minSize {
			c.logger.Debug("discarding small region",
				zap.Int("width", box.Width), zap.Int("height", box.Height))
			return
		}
		r := c.manager.Add(box.X, box.Y, box.Width, box.Height, "")
		if c.prompt != nil {
			if name := strings.TrimSpace(c.prompt(r.Name)); name != "" {
				c.manager.Rename(r, name)
			}
		}
		c.logger.Debug("region created", zap.Stringer("region", r))
	case StateDragging, StateResizing:
		c.reset()
	}
}

// command applies a delete, rename or clear. Any gesture in progress is
// abandoned first.
func (c *Controller) command(ev Event) {
	if c.state != StateIdle {
		c.logger.Debug("abandoning unfinished gesture", zap.Stringer("state", c.state))
		c.reset()
	}

	if ev.Kind == RegionClear {
		c.manager.Clear()
		c.logger.Debug("regions cleared")
		return
	}

	r := c.manager.Selected()
	if ev.Target != "" {
		r = c.manager.Find(ev.Target)
	}
	if r == nil {
		c.logger.Debug("no region for command",
			zap.Stringer("kind", ev.Kind), zap.String("target", ev.Target))
		return
	}

	switch ev.Kind {
	case RegionDelete:
		c.manager.Remove(r)
		c.logger.Debug("region deleted", zap.String("name", r.Name))
	case RegionRename:
		old := r.Name
		if !c.manager.Rename(r, ev.Name) {
			c.logger.Debug("ignoring blank rename", zap.String("name", old))
			return
		}
		c.logger.Debug("region renamed", zap.String("from", old), zap.String("to", r.Name))
	}
}

func (c *Controller) drag(sx, sy int) {
	r := c.target
	if r == nil {
		return
	}
	nx := c.snapshot.X + (sx - c.startX)
	ny := c.snapshot.Y + (sy - c.startY)
	nx = max(0, min(nx, c.sourceWidth-r.Width))
	ny = max(0, min(ny, c.sourceHeight-r.Height))
	r.Move(nx, ny)
}

func (c *Controller) resize(sx, sy int) {
	r := c.target
	if r == nil || c.handle == HandleNone {
		return
	}
	b := ResizeBox(c.snapshot, c.handle, sx-c.startX, sy-c.startY, c.minSize, c.sourceWidth, c.sourceHeight)
	r.X, r.Y, r.Width, r.Height = b.X, b.Y, b.Width, b.Height
}

// ResizeBox applies a pointer delta to snap through handle h. Dimensions
// below minSize are pinned to minSize with the opposite edge held in place,
// and the result is re-clamped into a frameW x frameH frame.
func ResizeBox(snap Box, h Handle, dx, dy, minSize, frameW, frameH int) Box {
	x, y, w, hgt := snap.X, snap.Y, snap.Width, snap.Height

	if h.movesLeft() {
		x += dx
		w -= dx
	}
	if h.movesRight() {
		w += dx
	}
	if h.movesTop() {
		y += dy
		hgt -= dy
	}
	if h.movesBottom() {
		hgt += dy
	}

	if w < minSize {
		if h.movesLeft() {
			x = snap.X + snap.Width - minSize
		}
		w = minSize
	}
	if hgt < minSize {
		if h.movesTop() {
			y = snap.Y + snap.Height - minSize
		}
		hgt = minSize
	}

	// shift the origin back inside first, then shrink only what still overflows
	if frameW > 0 && frameH > 0 {
		x = max(0, min(x, frameW-w))
		y = max(0, min(y, frameH-hgt))
		w = min(w, frameW-x)
		hgt = min(hgt, frameH-y)
	}

	return Box{X: x, Y: y, Width: w, Height: hgt}
}

// Affordance reports the cursor for a display point without changing state.
func (c *Controller) Affordance(x, y float64) Cursor {
	switch c.state {
	case StateDrawing:
		return CursorDraw
	case StateDragging:
		return CursorMove
	case StateResizing:
		return CursorFor(c.handle)
	}

	if c.mapper == nil {
		return CursorDraw
	}
	sx, sy := c.mapper.ToSource(x, y)
	r := c.manager.At(sx, sy)
	if r == nil {
		return CursorDraw
	}
	return CursorFor(c.handleAt(r, sx, sy))
}

// handleAt returns the handle of r under (sx, sy). Corners win over edges.
func (c *Controller) handleAt(r *region.Rectangle, sx, sy int) Handle {
	tol := c.mapper.HandleTolerance(c.handlePixels)
	near := func(px, py float64) bool {
		return math.Abs(float64(sx)-px) <= tol && math.Abs(float64(sy)-py) <= tol
	}

	x1, y1 := float64(r.X), float64(r.Y)
	x2, y2 := float64(r.X2()), float64(r.Y2())
	mx, my := (x1+x2)/2, (y1+y2)/2

	switch {
	case near(x1, y1):
		return HandleTopLeft
	case near(x2, y1):
		return HandleTopRight
	case near(x1, y2):
		return HandleBottomLeft
	case near(x2, y2):
		return HandleBottomRight
	case near(mx, y1):
		return HandleTop
	case near(mx, y2):
		return HandleBottom
	case near(x1, my):
		return HandleLeft
	case near(x2, my):
		return HandleRight
	}
	return HandleNone
}

func (c *Controller) transition(next State) {
	prev := c.state
	c.state = next
	for _, l := range c.listeners {
		l(prev, next)
	}
}

func (c *Controller) reset() {
	c.target = nil
	c.handle = HandleNone
	c.snapshot = Box{}
	c.pending = Box{}
	c.hasPending = false
	c.startX, c.startY = 0, 0
	if c.state != StateIdle {
		c.transition(StateIdle)
	}
}

func normalizedBox(x1, y1, x2, y2 int) Box {
	left, right := min(x1, x2), max(x1, x2)
	top, bottom := min(y1, y2), max(y1, y2)
	return Box{X: left, Y: top, Width: right - left, Height: bottom - top}
}
