package processor

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ZacxDev/video-toolkit/internal/ffmpeg"
	"github.com/ZacxDev/video-toolkit/internal/profile"
	"github.com/ZacxDev/video-toolkit/internal/region"
	"github.com/ZacxDev/video-toolkit/internal/template"
	"github.com/ZacxDev/video-toolkit/pkg/types"
)

// Encoder runs the ffmpeg side of every processor.
type Encoder interface {
	GetVideoMetadata(inputPath string) (*ffmpeg.VideoMetadata, error)
	Crop(ctx context.Context, inputPath, outputPath string, spec types.CropSpec, prof profile.Profile, stderr io.Writer) error
	Adjust(ctx context.Context, inputPath, outputPath string, spec types.EqSpec, prof profile.Profile, stderr io.Writer) error
	Segment(ctx context.Context, inputPath, outputPath string, start, duration float64, prof profile.Profile, stderr io.Writer) error
}

// FrameGrabber returns still frames.
type FrameGrabber interface {
	Still(ctx context.Context, path string, timestamp float64) (image.Image, error)
}

// Progress creates the stderr sink of one encode.
type Progress func(description string, totalSeconds float64) *ffmpeg.ProgressWriter

// SilentProgress tracks progress without drawing anything.
func SilentProgress(string, float64) *ffmpeg.ProgressWriter {
	return ffmpeg.NewProgressWriter("", 0, nil)
}

// BarProgress draws a progress bar per encode on out.
func BarProgress(out io.Writer) Progress {
	return func(description string, total float64) *ffmpeg.ProgressWriter {
		return ffmpeg.NewProgressWriter(description, total, out)
	}
}

// LoadRegions reads regions from a crop file when one is given, otherwise
// from the named template.
func LoadRegions(store *template.Store, templateName, regionsFile string) ([]*region.Rectangle, error) {
	switch {
	case regionsFile != "":
		return store.Load(regionsFile)
	case templateName != "":
		return store.LoadTemplate(templateName)
	default:
		return nil, fmt.Errorf("either a template name or a regions file is required")
	}
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

func sanitizeFilename(filename string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(filename, "_")
	sanitized = strings.Trim(sanitized, " .")
	if sanitized == "" {
		return "unnamed_file"
	}
	return sanitized
}

// stem returns the file name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// samePath reports whether a and b name the same file, following symlinks
// when both exist.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

func ensureOutputPath(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return path, nil
}
