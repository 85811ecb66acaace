package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// CropOptions defines options for cropping regions out of videos
type CropOptions struct {
	InputPaths   []string
	InputDir     string
	OutputDir    string
	TemplateName string
	RegionsFile  string
	TemplateDir  string
	Profile      string // falls back to the re-encode profile when stream copy fails
	Verbose      bool
}

// AdjustOptions defines options for brightness/contrast adjustment
type AdjustOptions struct {
	InputPath  string
	OutputPath string
	OutputDir  string
	Brightness int // -100..100
	Contrast   int // -100..100
	Profile    string
	Verbose    bool
}

// SplitOptions defines options for chunked segmentation
type SplitOptions struct {
	InputPath     string
	OutputDir     string
	ChunkDuration float64
	Profile       string
	DryRun        bool
	Verbose       bool
}

// EditOptions defines options for replaying a gesture script against a video frame
type EditOptions struct {
	VideoPath     string
	Timestamp     float64
	EventsPath    string
	RegionsFile   string
	SurfaceWidth  int
	SurfaceHeight int
	TemplateName  string
	SaveAs        string
	Names         []string
	SnapshotPath  string
	TemplateDir   string
	Verbose       bool
}

// PreviewOptions defines options for rendering regions over a still frame
type PreviewOptions struct {
	VideoPath     string
	Timestamp     float64
	TemplateName  string
	RegionsFile   string
	OutputPath    string
	Highlight     string // region drawn with handles
	SurfaceWidth  int
	SurfaceHeight int
	TemplateDir   string
	Verbose       bool
}

// AnalyzeOptions defines options for exposure analysis
type AnalyzeOptions struct {
	VideoPath string
	Samples   int
	Verbose   bool
}

// CompareOptions defines options for comparing the metadata of several videos
type CompareOptions struct {
	InputPaths []string
	Fields     []string
	// Expect maps a field name to the value every video must have.
	Expect           map[string]string
	AnomalyThreshold float64
	Verbose          bool
}

// SnippetOptions defines options for cutting clips around timestamps
type SnippetOptions struct {
	InputPath  string
	OutputDir  string
	Timestamps []string
	Before     float64
	After      float64
	Label      string
	Profile    string
	DryRun     bool
	Verbose    bool
}

type VideoDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

const (
	// Smallest region a draw gesture may create and a resize may leave behind
	MinRegionSize = 10

	// Resize handle size in display pixels
	HandlePixels = 8

	// Drawn handle square size in display pixels
	HandleDrawPixels = 6

	// Default display surface for edit/preview
	DefaultSurfaceWidth  = 800
	DefaultSurfaceHeight = 450

	// Template persistence
	TemplateVersion   = "1.0"
	TemplateExtension = ".crop"
	TemplateDirName   = ".video_processing"
	TemplateSubDir    = "crop_templates"
	UnnamedTemplate   = "unnamed_template"

	// Colors
	DefaultRegionColor = "#FF0000"
	PendingRegionColor = "#FFFF00"

	// Brightness/contrast ranges
	MinAdjustment = -100
	MaxAdjustment = 100

	// Default chunk duration in seconds
	DefaultChunkDuration = 60

	// Still-frame cache size
	FrameCacheSize = 16

	// Frames sampled by analyze
	DefaultAnalysisSamples = 10

	// Relative deviation from the mean reported as an anomaly
	DefaultAnomalyThreshold = 0.1

	// Snippet window around a timestamp, in seconds
	DefaultSnippetBefore = 5
	DefaultSnippetAfter  = 10
	MinSnippetDuration   = 1.0
)

// RegionPalette is assigned round-robin to new regions.
var RegionPalette = []string{
	"#FF0000", // red
	"#00FF00", // green
	"#0000FF", // blue
	"#FFFF00", // yellow
	"#FF00FF", // magenta
	"#00FFFF", // cyan
	"#FFA500", // orange
	"#800080", // purple
	"#FFC0CB", // pink
	"#A52A2A", // brown
}

// VideoExtensions lists the file extensions treated as videos when scanning directories.
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v"}

// DefaultTemplateDir returns the per-user template store.
func DefaultTemplateDir() string {
	return filepath.Join(xdg.Home, TemplateDirName, TemplateSubDir)
}
