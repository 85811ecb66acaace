package profile

type FastProfile struct{}

func init() {
	Register(&FastProfile{})
}

func (p *FastProfile) GetName() string {
	return Fast
}

func (p *FastProfile) GetVideoCodec() string {
	return "libx264"
}

func (p *FastProfile) GetAudioCodec() string {
	return "copy"
}

func (p *FastProfile) GetCRF() int {
	return 23
}

func (p *FastProfile) GetPreset() string {
	return "fast"
}

func (p *FastProfile) StreamCopy() bool {
	return false
}
