package processor

import (
	"context"

	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/display"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/region"
	"github.com/ZacxDev/video-toolkit/internal/template"
)

// Previewer renders regions over a still frame into a PNG.
type Previewer struct {
	opts   *config.PreviewOptions
	frames FrameGrabber
	store  *template.Store
	logger *zap.Logger
}

// NewPreviewer creates a new previewer
func NewPreviewer(opts *config.PreviewOptions, frames FrameGrabber, store *template.Store, logger *zap.Logger) *Previewer {
	return &Previewer{
		opts:   opts,
		frames: frames,
		store:  store,
		logger: logging.OrNop(logger),
	}
}

// Process writes the preview image and returns its path.
func (p *Previewer) Process(ctx context.Context) (string, error) {
	rects, err := LoadRegions(p.store, p.opts.TemplateName, p.opts.RegionsFile)
	if err != nil {
		return "", err
	}
	frame, err := p.frames.Still(ctx, p.opts.VideoPath, p.opts.Timestamp)
	if err != nil {
		return "", err
	}
	return p.Render(frame.Bounds().Dx(), frame.Bounds().Dy(), func(c *display.Canvas, m *display.Mapper) {
		c.DrawFrame(frame, m)
	}, rects)
}

// Render draws rects over a canvas prepared by drawFrame and saves it.
func (p *Previewer) Render(srcW, srcH int, drawFrame func(*display.Canvas, *display.Mapper), rects []*region.Rectangle) (string, error) {
	canvas := display.NewCanvas(surfaceSize(p.opts.SurfaceWidth, p.opts.SurfaceHeight))
	mapper, err := display.MapperFor(canvas, srcW, srcH)
	if err != nil {
		return "", err
	}

	m := region.NewManager()
	m.SetBounds(srcW, srcH)
	m.Replace(rects)
	if p.opts.Highlight != "" {
		m.Select(m.Find(p.opts.Highlight))
	}

	drawFrame(canvas, mapper)
	canvas.DrawRegions(m.Rectangles(), mapper)

	outputPath, err := ensureOutputPath(p.opts.OutputPath)
	if err != nil {
		return "", err
	}
	if err := canvas.Save(outputPath); err != nil {
		return "", err
	}
	p.logger.Info("preview written", zap.String("path", outputPath), zap.Int("regions", m.Len()))
	return outputPath, nil
}
