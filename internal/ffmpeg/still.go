package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
)

// Still decodes the frame at timestamp seconds.
func (p *Processor) Still(ctx context.Context, inputPath string, timestamp float64) (image.Image, error) {
	buf := bytes.NewBuffer(nil)
	stream := ffmpeg.Input(inputPath, ffmpeg.KwArgs{"ss": timestamp}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "png"}).
		WithOutput(buf)

	if err := p.run(ctx, stream, nil); err != nil {
		return nil, errors.Wrapf(err, "failed to read frame at %.2fs", timestamp)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("no frame at %.2fs in %s", timestamp, inputPath)
	}

	img, err := imaging.Decode(buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode frame")
	}
	return img, nil
}

type frameKey struct {
	path      string
	timestamp float64
}

// FrameSource serves still frames, caching recently used ones.
type FrameSource struct {
	grab   func(ctx context.Context, path string, timestamp float64) (image.Image, error)
	cache  *lru.Cache[frameKey, image.Image]
	logger *zap.Logger
}

// NewFrameSource creates a cached frame source over p.
func NewFrameSource(p *Processor) (*FrameSource, error) {
	cache, err := lru.New[frameKey, image.Image](config.FrameCacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &FrameSource{grab: p.Still, cache: cache, logger: p.logger}, nil
}

// Still returns the frame of path at timestamp.
func (f *FrameSource) Still(ctx context.Context, path string, timestamp float64) (image.Image, error) {
	key := frameKey{path: path, timestamp: timestamp}
	if img, ok := f.cache.Get(key); ok {
		f.logger.Debug("frame cache hit", zap.String("path", path), zap.Float64("timestamp", timestamp))
		return img, nil
	}

	img, err := f.grab(ctx, path, timestamp)
	if err != nil {
		return nil, err
	}
	f.cache.Add(key, img)
	return img, nil
}
