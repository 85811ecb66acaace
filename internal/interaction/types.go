package interaction

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// State enumerates the gesture states.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Handle identifies one of the eight resize hit-zones.
type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "tl"
	HandleTopRight    Handle = "tr"
	HandleBottomLeft  Handle = "bl"
	HandleBottomRight Handle = "br"
	HandleTop         Handle = "top"
	HandleBottom      Handle = "bottom"
	HandleLeft        Handle = "left"
	HandleRight       Handle = "right"
)

// movesLeft reports whether dragging the handle moves the left edge.
func (h Handle) movesLeft() bool {
	return h == HandleTopLeft || h == HandleBottomLeft || h == HandleLeft
}

// movesTop reports whether dragging the handle moves the top edge.
func (h Handle) movesTop() bool {
	return h == HandleTopLeft || h == HandleTopRight || h == HandleTop
}

func (h Handle) movesRight() bool {
	return h == HandleTopRight || h == HandleBottomRight || h == HandleRight
}

func (h Handle) movesBottom() bool {
	return h == HandleBottomLeft || h == HandleBottomRight || h == HandleBottom
}

// Cursor is the pointer affordance for a position.
type Cursor int

const (
	CursorDraw Cursor = iota
	CursorMove
	CursorResizeDiagonal     // tl / br
	CursorResizeAntiDiagonal // tr / bl
	CursorResizeVertical     // top / bottom
	CursorResizeHorizontal   // left / right
)

func (c Cursor) String() string {
	switch c {
	case CursorDraw:
		return "crosshair"
	case CursorMove:
		return "move"
	case CursorResizeDiagonal:
		return "nwse-resize"
	case CursorResizeAntiDiagonal:
		return "nesw-resize"
	case CursorResizeVertical:
		return "ns-resize"
	case CursorResizeHorizontal:
		return "ew-resize"
	default:
		return "default"
	}
}

// CursorFor maps a handle to its resize cursor.
func CursorFor(h Handle) Cursor {
	switch h {
	case HandleTopLeft, HandleBottomRight:
		return CursorResizeDiagonal
	case HandleTopRight, HandleBottomLeft:
		return CursorResizeAntiDiagonal
	case HandleTop, HandleBottom:
		return CursorResizeVertical
	case HandleLeft, HandleRight:
		return CursorResizeHorizontal
	default:
		return CursorMove
	}
}

// EventKind is the pointer event type. The Region kinds are editing
// commands that act on the region set rather than a pointer position.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	RegionDelete
	RegionRename
	RegionClear
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case RegionDelete:
		return "delete"
	case RegionRename:
		return "rename"
	case RegionClear:
		return "clear"
	default:
		return "unknown"
	}
}

func (k EventKind) pointer() bool {
	return k == PointerDown || k == PointerMove || k == PointerUp
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "down", "press":
		*k = PointerDown
	case "move", "drag", "motion":
		*k = PointerMove
	case "up", "release":
		*k = PointerUp
	case "delete", "remove":
		*k = RegionDelete
	case "rename":
		*k = RegionRename
	case "clear":
		*k = RegionClear
	default:
		return errors.Errorf("unknown event kind %q", string(b))
	}
	return nil
}

// Event is a pointer event in display coordinates, or a region command.
// Target names the region a command acts on, the selection when empty.
// Name is the new name for a rename.
type Event struct {
	Kind   EventKind `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Target string    `json:"target,omitempty"`
	Name   string    `json:"name,omitempty"`
}

// ParseEvents decodes a JSON array of events.
func ParseEvents(data []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, errors.Wrap(err, "failed to parse pointer events")
	}
	return events, nil
}

// Box is an axis-aligned box in source coordinates.
type Box struct {
	X, Y, Width, Height int
}

// NamePrompt asks for a name for a freshly drawn region. Returning an empty
// string keeps the generated name.
type NamePrompt func(suggested string) string

// StateListener is called on each state transition.
type StateListener func(prev, next State)
