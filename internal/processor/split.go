package processor

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/profile"
	"github.com/ZacxDev/video-toolkit/pkg/types"
)

// Splitter handles video splitting operations
type Splitter struct {
	opts     *config.SplitOptions
	encoder  Encoder
	progress Progress
	logger   *zap.Logger
}

// NewSplitter creates a new video splitter
func NewSplitter(opts *config.SplitOptions, encoder Encoder, logger *zap.Logger) *Splitter {
	return &Splitter{
		opts:     opts,
		encoder:  encoder,
		progress: SilentProgress,
		logger:   logging.OrNop(logger),
	}
}

// WithProgress sets the progress sink factory.
func (s *Splitter) WithProgress(p Progress) *Splitter {
	if p != nil {
		s.progress = p
	}
	return s
}

func (s *Splitter) chunkDuration() float64 {
	if s.opts.ChunkDuration > 0 {
		return s.opts.ChunkDuration
	}
	return config.DefaultChunkDuration
}

// Plan lays out the chunks of a video of the given duration. Chunks are
// written to <out>/<stem>/<stem>_NNN<ext>; the last one holds the remainder.
func (s *Splitter) Plan(duration float64) []types.Chunk {
	chunk := s.chunkDuration()
	if duration <= 0 {
		return nil
	}

	name := sanitizeFilename(stem(s.opts.InputPath))
	dir := filepath.Join(s.opts.OutputDir, name)
	ext := filepath.Ext(s.opts.InputPath)

	numChunks := int(math.Ceil(duration/chunk - 1e-9))
	chunks := make([]types.Chunk, 0, numChunks)
	for i := 0; i < numChunks; i++ {
		start := float64(i) * chunk
		chunks = append(chunks, types.Chunk{
			Index:    i + 1,
			Start:    start,
			Duration: math.Min(chunk, duration-start),
			Path:     filepath.Join(dir, fmt.Sprintf("%s_%03d%s", name, i+1, ext)),
		})
	}
	return chunks
}

// Process splits the input. A video no longer than one chunk is copied as a
// single chunk. With DryRun only the plan is returned.
func (s *Splitter) Process(ctx context.Context) ([]types.Chunk, error) {
	prof := profile.MustGet(profile.Chunk)
	if s.opts.Profile != "" {
		p, err := profile.Get(s.opts.Profile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		prof = p
	}

	metadata, err := s.encoder.GetVideoMetadata(s.opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get video metadata: %v", err)
	}

	chunks := s.Plan(metadata.Duration)
	s.logger.Info("splitting video",
		zap.String("input", s.opts.InputPath),
		zap.Float64("duration", metadata.Duration),
		zap.Float64("chunk_duration", s.chunkDuration()),
		zap.Int("chunks", len(chunks)))

	if s.opts.DryRun || len(chunks) == 0 {
		return chunks, nil
	}

	if _, err := ensureOutputPath(chunks[0].Path); err != nil {
		return nil, err
	}

	if len(chunks) == 1 {
		if err := copyFile(s.opts.InputPath, chunks[0].Path); err != nil {
			return nil, err
		}
		s.logger.Info("copied as single chunk", zap.String("output", chunks[0].Path))
		return chunks, nil
	}

	done := make([]types.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		s.logger.Debug("processing chunk",
			zap.Int("index", c.Index), zap.Int("total", len(chunks)), zap.String("output", c.Path))

		w := s.progress(fmt.Sprintf("chunk %d/%d", c.Index, len(chunks)), c.Duration)
		err := s.encoder.Segment(ctx, s.opts.InputPath, c.Path, c.Start, c.Duration, prof, w)
		w.Finish()
		if err != nil {
			return done, errors.Wrapf(err, "error processing chunk %d", c.Index)
		}
		done = append(done, c)
	}

	return done, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s", src)
	}
	return errors.WithStack(out.Close())
}
