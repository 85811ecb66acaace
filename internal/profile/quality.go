package profile

// QualityProfile is used for brightness/contrast adjustment.
type QualityProfile struct{}

func init() {
	Register(&QualityProfile{})
}

func (p *QualityProfile) GetName() string {
	return Quality
}

func (p *QualityProfile) GetVideoCodec() string {
	return "libx264"
}

func (p *QualityProfile) GetAudioCodec() string {
	return "copy"
}

func (p *QualityProfile) GetCRF() int {
	return 18
}

func (p *QualityProfile) GetPreset() string {
	return "medium"
}

func (p *QualityProfile) StreamCopy() bool {
	return false
}
