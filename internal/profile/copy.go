package profile

// StreamCopyProfile remuxes without re-encoding. It is the first attempt when
// cropping; ffmpeg rejects it when a filter is applied and the caller falls
// back to Fast.
type StreamCopyProfile struct{}

func init() {
	Register(&StreamCopyProfile{})
}

func (p *StreamCopyProfile) GetName() string {
	return Copy
}

func (p *StreamCopyProfile) GetVideoCodec() string {
	return "copy"
}

func (p *StreamCopyProfile) GetAudioCodec() string {
	return "copy"
}

func (p *StreamCopyProfile) GetCRF() int {
	return 0
}

func (p *StreamCopyProfile) GetPreset() string {
	return ""
}

func (p *StreamCopyProfile) StreamCopy() bool {
	return true
}
