package processor

import (
	"context"
	"image"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/display"
	"github.com/ZacxDev/video-toolkit/internal/interaction"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/region"
	"github.com/ZacxDev/video-toolkit/internal/template"
)

// EditResult is the state after a gesture script has been replayed.
type EditResult struct {
	Manager      *region.Manager
	Summary      region.Summary
	Validation   []string
	Cursor       interaction.Cursor
	SnapshotPath string
	TemplatePath string
}

// Editor replays recorded pointer gestures over a still frame and optionally
// saves the resulting regions as a template.
type Editor struct {
	opts    *config.EditOptions
	encoder Encoder
	frames  FrameGrabber
	store   *template.Store
	logger  *zap.Logger
}

// NewEditor creates a new editor
func NewEditor(opts *config.EditOptions, encoder Encoder, frames FrameGrabber, store *template.Store, logger *zap.Logger) *Editor {
	return &Editor{
		opts:    opts,
		encoder: encoder,
		frames:  frames,
		store:   store,
		logger:  logging.OrNop(logger),
	}
}

// namePrompt answers prompts from a fixed list, one name per drawn region.
func namePrompt(names []string) interaction.NamePrompt {
	next := 0
	return func(string) string {
		if next >= len(names) {
			return ""
		}
		next++
		return names[next-1]
	}
}

// Process runs the edit session.
func (e *Editor) Process(ctx context.Context) (*EditResult, error) {
	frame, err := e.frames.Still(ctx, e.opts.VideoPath, e.opts.Timestamp)
	if err != nil {
		return nil, err
	}
	bounds := frame.Bounds()

	m := region.NewManager()
	if e.opts.TemplateName != "" || e.opts.RegionsFile != "" {
		rects, err := LoadRegions(e.store, e.opts.TemplateName, e.opts.RegionsFile)
		if err != nil {
			return nil, err
		}
		m.Replace(rects)
	}

	c := interaction.NewController(m, e.logger, namePrompt(e.opts.Names))
	c.AddListener(func(prev, next interaction.State) {
		e.logger.Debug("gesture state", zap.Stringer("from", prev), zap.Stringer("to", next))
	})
	c.SetSource(bounds.Dx(), bounds.Dy())
	c.SetSurface(surfaceSize(e.opts.SurfaceWidth, e.opts.SurfaceHeight))

	cursor := interaction.CursorDraw

	if e.opts.EventsPath != "" {
		data, err := os.ReadFile(e.opts.EventsPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read gesture script")
		}
		events, err := interaction.ParseEvents(data)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			c.HandleEvent(ev)
			if ev.Kind == interaction.PointerMove {
				cursor = c.Affordance(ev.X, ev.Y)
				e.logger.Debug("cursor", zap.Stringer("cursor", cursor), zap.Float64("x", ev.X), zap.Float64("y", ev.Y))
			}
		}
		e.logger.Info("replayed gestures", zap.Int("events", len(events)), zap.Int("regions", m.Len()))
	}

	res := &EditResult{
		Manager:    m,
		Summary:    m.Summary(),
		Validation: m.Validate(),
		Cursor:     cursor,
	}
	if e.opts.SnapshotPath != "" {
		if res.SnapshotPath, err = e.snapshot(frame, c, m); err != nil {
			return res, err
		}
	}
	if e.opts.SaveAs == "" {
		return res, nil
	}
	if len(res.Validation) > 0 {
		return res, errors.Errorf("refusing to save invalid regions: %s", res.Validation[0])
	}

	var videoInfo map[string]any
	if metadata, err := e.encoder.GetVideoMetadata(e.opts.VideoPath); err == nil {
		videoInfo = metadata.Info()
	} else {
		e.logger.Warn("saving template without video info", zap.Error(err))
	}
	res.TemplatePath, err = e.store.SaveTemplate(m.Rectangles(), e.opts.SaveAs, videoInfo)
	if err != nil {
		return res, err
	}
	return res, nil
}

// snapshot renders the session as it stands, including the outline of a draw
// the script left unfinished.
func (e *Editor) snapshot(frame image.Image, c *interaction.Controller, m *region.Manager) (string, error) {
	canvas := display.NewCanvas(surfaceSize(e.opts.SurfaceWidth, e.opts.SurfaceHeight))
	mapper, err := display.MapperFor(canvas, frame.Bounds().Dx(), frame.Bounds().Dy())
	if err != nil {
		return "", err
	}
	canvas.DrawFrame(frame, mapper)
	canvas.DrawRegions(m.Rectangles(), mapper)
	if box, ok := c.Pending(); ok {
		canvas.DrawPending(box.X, box.Y, box.Width, box.Height, mapper)
	}

	outputPath, err := ensureOutputPath(e.opts.SnapshotPath)
	if err != nil {
		return "", err
	}
	if err := canvas.Save(outputPath); err != nil {
		return "", err
	}
	e.logger.Info("edit snapshot written", zap.String("path", outputPath))
	return outputPath, nil
}

func surfaceSize(w, h int) (int, int) {
	if w <= 0 {
		w = config.DefaultSurfaceWidth
	}
	if h <= 0 {
		h = config.DefaultSurfaceHeight
	}
	return w, h
}
