package profile

import (
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Profile defines the encoder settings used for an output file
type Profile interface {
	// GetName returns the profile name
	GetName() string

	// GetVideoCodec returns the video codec, "copy" for stream copy
	GetVideoCodec() string

	// GetAudioCodec returns the audio codec, "copy" to keep the input audio
	GetAudioCodec() string

	// GetCRF returns the constant rate factor, 0 when not encoding
	GetCRF() int

	// GetPreset returns the encoder speed preset
	GetPreset() string

	// StreamCopy reports whether streams are copied without re-encoding
	StreamCopy() bool
}

const (
	Copy    = "copy"
	Fast    = "fast"
	Quality = "quality"
	Chunk   = "chunk"
)

var profiles = make(map[string]Profile)

// Register adds a profile to the registry
func Register(p Profile) {
	profiles[p.GetName()] = p
}

// Get returns a profile by name
func Get(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unsupported profile: %s", name)
	}
	return p, nil
}

// MustGet returns a built-in profile and panics if it is not registered
func MustGet(name string) Profile {
	p, err := Get(name)
	if err != nil {
		panic(err)
	}
	return p
}

// GetSupportedProfiles returns the registered profile names, sorted
func GetSupportedProfiles() []string {
	names := maps.Keys(profiles)
	slices.Sort(names)
	return names
}

// OutputArgs builds the ffmpeg output arguments for p.
func OutputArgs(p Profile) ffmpeg.KwArgs {
	if p.StreamCopy() {
		return ffmpeg.KwArgs{"c": "copy"}
	}
	args := ffmpeg.KwArgs{
		"c:v": p.GetVideoCodec(),
		"c:a": p.GetAudioCodec(),
	}
	if p.GetPreset() != "" {
		args["preset"] = p.GetPreset()
	}
	if p.GetCRF() > 0 {
		args["crf"] = p.GetCRF()
	}
	return args
}
