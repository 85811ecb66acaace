package videoprocessor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/region"
	"github.com/ZacxDev/video-toolkit/internal/template"
)

func saveRegions(t *testing.T, dir string, rects ...*region.Rectangle) string {
	t.Helper()
	path, err := template.NewStore(dir, nil).Save(rects, filepath.Join(dir, "regions"), nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestValidateRegions(t *testing.T) {
	dir := t.TempDir()
	path := saveRegions(t, dir,
		region.NewRectangle(0, 0, 100, 100, "face"),
		region.NewRectangle(10, 10, 0, 50, "broken"))

	problems, err := ValidateRegions("", path, dir, "", nil)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(problems) != 1 || problems[0] != "Rectangle 'broken' has invalid dimensions" {
		t.Fatalf("unexpected problems %v", problems)
	}

	if _, err := ValidateRegions("", "", dir, "", nil); err == nil {
		t.Fatalf("expected an error without a region source")
	}
}

func TestCropVideos_RejectsInvalidRegions(t *testing.T) {
	dir := t.TempDir()
	path := saveRegions(t, dir, region.NewRectangle(10, 10, 0, 50, "broken"))

	_, err := CropVideos(context.Background(), &config.CropOptions{
		InputPaths:  []string{"clip.mp4"},
		OutputDir:   filepath.Join(dir, "out"),
		RegionsFile: path,
		TemplateDir: dir,
	}, nil)

	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) != 1 {
		t.Fatalf("expected a validation error, got %v", err)
	}

	if _, err := CropVideos(context.Background(), &config.CropOptions{RegionsFile: path, Profile: "nope", OutputDir: dir}, nil); err == nil {
		t.Fatalf("expected unknown profile error")
	}
}

func TestOutputLayout(t *testing.T) {
	dir := t.TempDir()
	path := saveRegions(t, dir, region.NewRectangle(0, 0, 100, 100, "top/left"))

	layout, err := OutputLayout(&config.CropOptions{OutputDir: "/out", RegionsFile: path, TemplateDir: dir}, nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if layout["top/left"] != filepath.Join("/out", "top_left") {
		t.Fatalf("unexpected layout %v", layout)
	}
}

func TestFacadeRequiresInputs(t *testing.T) {
	if _, err := CompareVideos(&config.CompareOptions{}, nil); err == nil {
		t.Fatalf("expected an error without inputs")
	}
	if _, err := ExtractSnippets(context.Background(), &config.SnippetOptions{InputPath: "a.mp4"}, nil); err == nil {
		t.Fatalf("expected an error without an output directory")
	}
}
