package profile

type ChunkProfile struct{}

func init() {
	Register(&ChunkProfile{})
}

func (p *ChunkProfile) GetName() string {
	return Chunk
}

func (p *ChunkProfile) GetVideoCodec() string {
	return "libx264"
}

func (p *ChunkProfile) GetAudioCodec() string {
	return "aac"
}

func (p *ChunkProfile) GetCRF() int {
	return 23
}

func (p *ChunkProfile) GetPreset() string {
	return "medium"
}

func (p *ChunkProfile) StreamCopy() bool {
	return false
}
