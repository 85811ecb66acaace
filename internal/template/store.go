package template

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/region"
)

var (
	// ErrMalformed is returned when a file does not have the template shape.
	ErrMalformed = errors.New("malformed crop configuration")
	// ErrNotFound is returned when a named template does not exist.
	ErrNotFound = errors.New("template not found")
)

var requiredFields = []string{"x", "y", "width", "height", "name"}

// BoundingBox is the box enclosing every rectangle of a template.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata is derived from the rectangles on save.
type Metadata struct {
	Count       int          `json:"count"`
	Names       []string     `json:"names"`
	ExportDate  string       `json:"export_date,omitempty"`
	TotalArea   *int         `json:"total_area,omitempty"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// File is the on-disk template document.
type File struct {
	Version    string          `json:"version"`
	VideoInfo  map[string]any  `json:"video_info"`
	Rectangles []region.Record `json:"rectangles"`
	Metadata   Metadata        `json:"metadata"`
}

// Info summarizes a template file without building rectangles.
type Info struct {
	Path           string
	Version        string
	RectangleCount int
	VideoInfo      map[string]any
	Metadata       map[string]any
	FileSize       int64
}

// VideoInfoKeys returns the video_info keys in sorted order.
func (i *Info) VideoInfoKeys() []string {
	keys := maps.Keys(i.VideoInfo)
	slices.Sort(keys)
	return keys
}

// Store reads and writes crop templates. Named templates live in Dir.
type Store struct {
	Dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir, or the per-user default when dir is empty.
func NewStore(dir string, logger *zap.Logger) *Store {
	if dir == "" {
		dir = config.DefaultTemplateDir()
	}
	return &Store{Dir: dir, logger: logging.OrNop(logger)}
}

// Save writes rects to path, appending the template extension when missing.
func (s *Store) Save(rects []*region.Rectangle, path string, videoInfo map[string]any) (string, error) {
	return s.write(newFile(rects, videoInfo), path)
}

// Export is Save with extra metadata: export date, total area and bounding box.
func (s *Store) Export(rects []*region.Rectangle, path string, videoInfo map[string]any) (string, error) {
	f := newFile(rects, videoInfo)
	f.Metadata.ExportDate = time.Now().Format(time.RFC3339)
	area := 0
	for _, r := range rects {
		area += r.Width * r.Height
	}
	f.Metadata.TotalArea = &area
	if len(rects) > 0 {
		f.Metadata.BoundingBox = boundingBox(rects)
	}
	return s.write(f, path)
}

func newFile(rects []*region.Rectangle, videoInfo map[string]any) *File {
	if videoInfo == nil {
		videoInfo = map[string]any{}
	}
	f := &File{
		Version:    config.TemplateVersion,
		VideoInfo:  videoInfo,
		Rectangles: make([]region.Record, 0, len(rects)),
		Metadata:   Metadata{Count: len(rects), Names: make([]string, 0, len(rects))},
	}
	for _, r := range rects {
		f.Rectangles = append(f.Rectangles, r.Record())
		f.Metadata.Names = append(f.Metadata.Names, r.Name)
	}
	return f
}

func (s *Store) write(f *File, path string) (string, error) {
	if !strings.HasSuffix(path, config.TemplateExtension) {
		path += config.TemplateExtension
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return "", errors.Wrap(err, "failed to encode crop configuration")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}

	s.logger.Info("crop configuration saved", zap.String("path", path), zap.Int("count", f.Metadata.Count))
	return path, nil
}

// Load reads rectangles from path. A document without a rectangles list is
// rejected with ErrMalformed; individual records that are missing a required
// field or fail to decode are logged and skipped.
func (s *Store) Load(path string) ([]*region.Rectangle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("crop configuration not readable", zap.String("path", path), zap.Error(err))
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	entries, err := s.entries(data)
	if err != nil {
		s.logger.Warn("invalid crop configuration format", zap.String("path", path), zap.Error(err))
		return nil, errors.Wrapf(err, "invalid crop configuration %s", path)
	}

	rects := make([]*region.Rectangle, 0, len(entries))
	for i, raw := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			s.logger.Warn("skipping rectangle", zap.Int("index", i), zap.Error(err))
			continue
		}
		if missing := missingFields(fields); len(missing) > 0 {
			s.logger.Warn("skipping rectangle with missing fields",
				zap.Int("index", i), zap.Strings("missing", missing))
			continue
		}
		var rec region.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("skipping rectangle", zap.Int("index", i), zap.Error(err))
			continue
		}
		rects = append(rects, region.FromRecord(rec))
	}

	s.logger.Info("loaded crop rectangles", zap.String("path", path), zap.Int("count", len(rects)))
	return rects, nil
}

// entries checks the top-level shape and returns the raw rectangle records.
func (s *Store) entries(data []byte) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	raw, ok := doc["rectangles"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, errors.Wrap(ErrMalformed, "missing rectangles list")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(ErrMalformed, "rectangles is not a list")
	}
	for i, e := range entries {
		if t := bytes.TrimSpace(e); len(t) == 0 || t[0] != '{' {
			return nil, errors.Wrapf(ErrMalformed, "rectangle %d is not an object", i)
		}
	}
	return entries, nil
}

func missingFields(fields map[string]json.RawMessage) []string {
	var missing []string
	for _, f := range requiredFields {
		if v, ok := fields[f]; !ok || string(bytes.TrimSpace(v)) == "null" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Info reads the header of a template file.
func (s *Store) Info(path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var doc struct {
		Version    *string           `json:"version"`
		VideoInfo  map[string]any    `json:"video_info"`
		Rectangles []json.RawMessage `json:"rectangles"`
		Metadata   map[string]any    `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: %v", path, err)
	}

	info := &Info{
		Path:           path,
		Version:        "unknown",
		RectangleCount: len(doc.Rectangles),
		VideoInfo:      doc.VideoInfo,
		Metadata:       doc.Metadata,
		FileSize:       st.Size(),
	}
	if doc.Version != nil {
		info.Version = *doc.Version
	}
	if info.VideoInfo == nil {
		info.VideoInfo = map[string]any{}
	}
	if info.Metadata == nil {
		info.Metadata = map[string]any{}
	}
	return info, nil
}

// Path returns the file backing the named template.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, SanitizeName(name)+config.TemplateExtension)
}

// SaveTemplate stores rects under a template name.
func (s *Store) SaveTemplate(rects []*region.Rectangle, name string, videoInfo map[string]any) (string, error) {
	return s.Save(rects, s.Path(name), videoInfo)
}

// LoadTemplate loads a named template.
func (s *Store) LoadTemplate(name string) ([]*region.Rectangle, error) {
	path := s.Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Warn("template not found", zap.String("name", name))
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return s.Load(path)
}

// ListTemplates returns the stored template names, sorted.
func (s *Store) ListTemplates() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", s.Dir)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != config.TemplateExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), config.TemplateExtension))
	}
	slices.Sort(names)
	return names, nil
}

// DeleteTemplate removes a named template.
func (s *Store) DeleteTemplate(name string) error {
	path := s.Path(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		return errors.Wrapf(err, "failed to delete template %q", name)
	}
	s.logger.Info("template deleted", zap.String("name", name))
	return nil
}

// SanitizeName turns a template name into a safe file stem.
func SanitizeName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
	sanitized = strings.Trim(sanitized, " .")
	if sanitized == "" {
		return config.UnnamedTemplate
	}
	return sanitized
}

func boundingBox(rects []*region.Rectangle) *BoundingBox {
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].X2(), rects[0].Y2()
	for _, r := range rects[1:] {
		minX, minY = min(minX, r.X), min(minY, r.Y)
		maxX, maxY = max(maxX, r.X2()), max(maxY, r.Y2())
	}
	return &BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
