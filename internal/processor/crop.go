package processor

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/profile"
	"github.com/ZacxDev/video-toolkit/internal/region"
	"github.com/ZacxDev/video-toolkit/pkg/types"
)

// CropResult is the outcome of one region of one video.
type CropResult struct {
	Region  string
	Output  string
	Profile string
	Err     error
}

// Cropper cuts every region out of a video into its own file.
type Cropper struct {
	opts     *config.CropOptions
	encoder  Encoder
	progress Progress
	logger   *zap.Logger
}

// NewCropper creates a new cropper
func NewCropper(opts *config.CropOptions, encoder Encoder, logger *zap.Logger) *Cropper {
	return &Cropper{
		opts:     opts,
		encoder:  encoder,
		progress: SilentProgress,
		logger:   logging.OrNop(logger),
	}
}

// WithProgress sets the progress sink factory.
func (c *Cropper) WithProgress(p Progress) *Cropper {
	if p != nil {
		c.progress = p
	}
	return c
}

// regionStems gives every region a file-safe stem. Names that sanitize to
// the same stem, ignoring case, get _1, _2, ... in order.
func regionStems(rects []*region.Rectangle) map[string]string {
	stems := make(map[string]string, len(rects))
	used := make(map[string]bool, len(rects))
	for _, r := range rects {
		if _, ok := stems[r.Name]; ok {
			continue
		}
		base := sanitizeFilename(r.Name)
		name := base
		for n := 1; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		stems[r.Name] = name
	}
	return stems
}

// OutputLayout maps region names to the directories their crops go to.
func (c *Cropper) OutputLayout(rects []*region.Rectangle) map[string]string {
	layout := make(map[string]string, len(rects))
	for name, s := range regionStems(rects) {
		layout[name] = filepath.Join(c.opts.OutputDir, s)
	}
	return layout
}

// OutputPaths maps region names to the files their crops of inputPath are
// written to, <out>/<stem>/<video>_<stem><ext>.
func (c *Cropper) OutputPaths(inputPath string, rects []*region.Rectangle) map[string]string {
	paths := make(map[string]string, len(rects))
	for name, s := range regionStems(rects) {
		paths[name] = filepath.Join(c.opts.OutputDir, s, stem(inputPath)+"_"+s+filepath.Ext(inputPath))
	}
	return paths
}

// Inputs lists the configured input files plus every video found under InputDir.
func (c *Cropper) Inputs() ([]string, error) {
	inputs := slices.Clone(c.opts.InputPaths)
	if c.opts.InputDir != "" {
		found, err := FindVideoFiles(c.opts.InputDir)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, found...)
	}
	return inputs, nil
}

// Process crops each region out of inputPath. The regions are copied when
// the call starts. Per-region failures are reported in the result map; the
// returned error is for failures that affect the whole video.
func (c *Cropper) Process(ctx context.Context, inputPath string, rects []*region.Rectangle) (map[string]*CropResult, error) {
	results := make(map[string]*CropResult, len(rects))
	if len(rects) == 0 {
		return results, nil
	}

	specs := make([]types.CropSpec, 0, len(rects))
	for _, r := range rects {
		specs = append(specs, types.CropSpec{Name: r.Name, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	}

	metadata, err := c.encoder.GetVideoMetadata(inputPath)
	if err != nil {
		return results, errors.Wrap(err, "failed to get video metadata")
	}
	outputs := c.OutputPaths(inputPath, rects)

	c.logger.Info("cropping video",
		zap.String("input", inputPath),
		zap.String("resolution", metadata.Resolution()),
		zap.Int("regions", len(specs)))

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := &CropResult{Region: spec.Name, Output: outputs[spec.Name]}
		results[spec.Name] = res

		r := region.NewRectangle(spec.X, spec.Y, spec.Width, spec.Height, spec.Name)
		if !r.IsValid() {
			res.Err = errors.Errorf("rectangle '%s' has invalid dimensions", spec.Name)
			continue
		}
		if !r.InBounds(metadata.Width, metadata.Height) {
			res.Err = errors.Errorf("rectangle '%s' extends beyond video bounds", spec.Name)
			continue
		}
		if _, err := ensureOutputPath(res.Output); err != nil {
			res.Err = err
			continue
		}

		c.logger.Debug("processing region",
			zap.Int("index", i+1), zap.Int("total", len(specs)), zap.String("region", spec.Name))
		res.Profile, res.Err = c.cropRegion(ctx, inputPath, res.Output, spec, metadata.Duration)
		if res.Err != nil {
			c.logger.Error("region failed", zap.String("region", spec.Name), zap.Error(res.Err))
		}
	}

	return results, nil
}

// cropRegion tries a stream copy first and re-encodes when ffmpeg rejects it,
// unless a profile was forced.
func (c *Cropper) cropRegion(ctx context.Context, inputPath, outputPath string, spec types.CropSpec, duration float64) (string, error) {
	if c.opts.Profile != "" && c.opts.Profile != profile.Copy {
		prof, err := profile.Get(c.opts.Profile)
		if err != nil {
			return "", errors.WithStack(err)
		}
		return prof.GetName(), c.encode(ctx, inputPath, outputPath, spec, prof, duration)
	}

	err := c.encode(ctx, inputPath, outputPath, spec, profile.MustGet(profile.Copy), duration)
	if err == nil {
		return profile.Copy, nil
	}
	if ctx.Err() != nil {
		return profile.Copy, ctx.Err()
	}

	c.logger.Warn("stream copy failed, falling back to re-encoding",
		zap.String("region", spec.Name), zap.Error(err))
	return profile.Fast, c.encode(ctx, inputPath, outputPath, spec, profile.MustGet(profile.Fast), duration)
}

func (c *Cropper) encode(ctx context.Context, inputPath, outputPath string, spec types.CropSpec, prof profile.Profile, duration float64) error {
	w := c.progress(spec.Name, duration)
	defer w.Finish()
	return c.encoder.Crop(ctx, inputPath, outputPath, spec, prof, w)
}

// ProcessBatch crops every input with the same regions. Results are keyed by
// input path, then region name.
func (c *Cropper) ProcessBatch(ctx context.Context, inputs []string, rects []*region.Rectangle) (map[string]map[string]*CropResult, error) {
	snapshot := make([]*region.Rectangle, 0, len(rects))
	for _, r := range rects {
		snapshot = append(snapshot, r.Clone())
	}

	results := make(map[string]map[string]*CropResult, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		c.logger.Info("processing video",
			zap.Int("index", i+1), zap.Int("total", len(inputs)), zap.String("input", input))

		res, err := c.Process(ctx, input, snapshot)
		results[input] = res
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			c.logger.Error("video failed", zap.String("input", input), zap.Error(err))
		}
	}
	return results, nil
}

// FindVideoFiles walks dir and returns the video files in it, sorted.
func FindVideoFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if slices.Contains(config.VideoExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", dir)
	}
	slices.Sort(files)
	return files, nil
}
