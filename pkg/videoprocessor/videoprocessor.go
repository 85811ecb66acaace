package videoprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/ffmpeg"
	"github.com/ZacxDev/video-toolkit/internal/processor"
	"github.com/ZacxDev/video-toolkit/internal/profile"
	"github.com/ZacxDev/video-toolkit/internal/region"
	"github.com/ZacxDev/video-toolkit/internal/template"
	"github.com/ZacxDev/video-toolkit/pkg/types"
)

// ProgressOutput is where encode progress bars are drawn.
var ProgressOutput io.Writer = os.Stderr

// ValidationError lists the problems that stopped a region set from being used.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid regions: " + strings.Join(e.Problems, "; ")
}

// GetSupportedProfiles returns the names of all encoder profiles
func GetSupportedProfiles() []string {
	return profile.GetSupportedProfiles()
}

// NewTemplateStore opens the template store in dir, or the per-user default.
func NewTemplateStore(dir string, logger *zap.Logger) *template.Store {
	return template.NewStore(dir, logger)
}

// GetVideoMetadata probes a video file.
func GetVideoMetadata(inputPath string, logger *zap.Logger) (*ffmpeg.VideoMetadata, error) {
	return ffmpeg.NewProcessor(logger).GetVideoMetadata(inputPath)
}

// CompareVideos probes every input and reports where their metadata differs
// and which inputs miss the expected values.
func CompareVideos(opts *config.CompareOptions, logger *zap.Logger) (*processor.CompareResult, error) {
	if len(opts.InputPaths) == 0 {
		return nil, fmt.Errorf("no input videos given")
	}
	return processor.NewComparer(opts, ffmpeg.NewProcessor(logger), logger).Process()
}

// CropVideos crops every configured input with the regions of a template or
// crop file. Results are keyed by input, then region.
func CropVideos(ctx context.Context, opts *config.CropOptions, logger *zap.Logger) (map[string]map[string]*processor.CropResult, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.Profile != "" {
		if _, err := profile.Get(opts.Profile); err != nil {
			return nil, err
		}
	}

	store := template.NewStore(opts.TemplateDir, logger)
	rects, err := processor.LoadRegions(store, opts.TemplateName, opts.RegionsFile)
	if err != nil {
		return nil, err
	}

	m := region.NewManager()
	m.Replace(rects)
	if problems := m.Validate(); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	cropper := processor.NewCropper(opts, ffmpeg.NewProcessor(logger), logger).
		WithProgress(processor.BarProgress(ProgressOutput))
	inputs, err := cropper.Inputs()
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input videos found")
	}
	return cropper.ProcessBatch(ctx, inputs, m.Rectangles())
}

// OutputLayout returns the directory each region of a crop run writes to.
func OutputLayout(opts *config.CropOptions, logger *zap.Logger) (map[string]string, error) {
	store := template.NewStore(opts.TemplateDir, logger)
	rects, err := processor.LoadRegions(store, opts.TemplateName, opts.RegionsFile)
	if err != nil {
		return nil, err
	}
	return processor.NewCropper(opts, nil, logger).OutputLayout(rects), nil
}

// AdjustVideo writes a brightness/contrast adjusted copy of a video.
func AdjustVideo(ctx context.Context, opts *config.AdjustOptions, logger *zap.Logger) (string, error) {
	if opts.InputPath == "" {
		return "", fmt.Errorf("input path is required")
	}
	return processor.NewAdjuster(opts, ffmpeg.NewProcessor(logger), logger).
		WithProgress(processor.BarProgress(ProgressOutput)).
		Process(ctx)
}

// SplitVideo cuts a video into fixed length chunks.
func SplitVideo(ctx context.Context, opts *config.SplitOptions, logger *zap.Logger) ([]types.Chunk, error) {
	if opts.InputPath == "" || opts.OutputDir == "" {
		return nil, fmt.Errorf("input path and output directory are required")
	}
	return processor.NewSplitter(opts, ffmpeg.NewProcessor(logger), logger).
		WithProgress(processor.BarProgress(ProgressOutput)).
		Process(ctx)
}

// ExtractSnippets cuts a clip around each timestamp of a video.
func ExtractSnippets(ctx context.Context, opts *config.SnippetOptions, logger *zap.Logger) ([]processor.Snippet, error) {
	if opts.InputPath == "" || opts.OutputDir == "" {
		return nil, fmt.Errorf("input path and output directory are required")
	}
	return processor.NewSnippeter(opts, ffmpeg.NewProcessor(logger), logger).
		WithProgress(processor.BarProgress(ProgressOutput)).
		Process(ctx)
}

// EditRegions replays a gesture script over a still frame of a video.
func EditRegions(ctx context.Context, opts *config.EditOptions, logger *zap.Logger) (*processor.EditResult, error) {
	if opts.VideoPath == "" {
		return nil, fmt.Errorf("video path is required")
	}
	p := ffmpeg.NewProcessor(logger)
	frames, err := ffmpeg.NewFrameSource(p)
	if err != nil {
		return nil, err
	}
	store := template.NewStore(opts.TemplateDir, logger)
	return processor.NewEditor(opts, p, frames, store, logger).Process(ctx)
}

// PreviewRegions renders regions over a still frame into an image file.
func PreviewRegions(ctx context.Context, opts *config.PreviewOptions, logger *zap.Logger) (string, error) {
	if opts.VideoPath == "" || opts.OutputPath == "" {
		return "", fmt.Errorf("video path and output path are required")
	}
	frames, err := ffmpeg.NewFrameSource(ffmpeg.NewProcessor(logger))
	if err != nil {
		return "", err
	}
	store := template.NewStore(opts.TemplateDir, logger)
	return processor.NewPreviewer(opts, frames, store, logger).Process(ctx)
}

// AnalyzeVideo samples frames of a video and suggests a brightness/contrast adjustment.
func AnalyzeVideo(ctx context.Context, opts *config.AnalyzeOptions, logger *zap.Logger) (*processor.AnalyzeResult, error) {
	if opts.VideoPath == "" {
		return nil, fmt.Errorf("video path is required")
	}
	p := ffmpeg.NewProcessor(logger)
	frames, err := ffmpeg.NewFrameSource(p)
	if err != nil {
		return nil, err
	}
	return processor.NewAnalyzer(opts, p, frames, logger).Process(ctx)
}

// ValidateRegions checks a region set, and its fit inside videoPath when one
// is given. An empty result means the set is usable.
func ValidateRegions(templateName, regionsFile, templateDir, videoPath string, logger *zap.Logger) ([]string, error) {
	store := template.NewStore(templateDir, logger)
	rects, err := processor.LoadRegions(store, templateName, regionsFile)
	if err != nil {
		return nil, err
	}

	m := region.NewManager()
	m.Replace(rects)
	problems := m.Validate()
	if videoPath == "" || m.Len() == 0 {
		return problems, nil
	}

	metadata, err := ffmpeg.NewProcessor(logger).GetVideoMetadata(videoPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get video metadata")
	}
	for _, r := range m.Rectangles() {
		if !r.InBounds(metadata.Width, metadata.Height) {
			problems = append(problems, fmt.Sprintf("Rectangle '%s' extends beyond video bounds (%s)", r.Name, metadata.Resolution()))
		}
	}
	return problems, nil
}
