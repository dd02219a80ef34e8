package buffer

// Block is a planar multichannel buffer with fixed capacity.
type Block struct {
	data  []float64
	chans [][]float64
	views [][]float64
	max   int
}

// NewBlock returns a zero-filled Block with numChannels channels of
// maxSamples capacity each. Negative sizes are treated as zero.
func NewBlock(numChannels, maxSamples int) *Block {
	if numChannels < 0 {
		numChannels = 0
	}
	if maxSamples < 0 {
		maxSamples = 0
	}

	b := &Block{
		data:  make([]float64, numChannels*maxSamples),
		chans: make([][]float64, numChannels),
		views: make([][]float64, numChannels),
		max:   maxSamples,
	}
	for ch := range b.chans {
		b.chans[ch] = b.data[ch*maxSamples : (ch+1)*maxSamples : (ch+1)*maxSamples]
	}
	return b
}

// NumChannels returns the channel capacity.
func (b *Block) NumChannels() int {
	return len(b.chans)
}

// MaxSamples returns the per-channel sample capacity.
func (b *Block) MaxSamples() int {
	return b.max
}

// View returns numChannels channel slices of numSamples samples each.
// Both counts are clamped to the Block's capacity. The returned slice
// header array is owned by the Block and is overwritten by the next call.
func (b *Block) View(numChannels, numSamples int) [][]float64 {
	numChannels = clampInt(numChannels, 0, len(b.chans))
	numSamples = clampInt(numSamples, 0, b.max)
	for ch := 0; ch < numChannels; ch++ {
		b.views[ch] = b.chans[ch][:numSamples]
	}
	return b.views[:numChannels]
}

// Zero sets all samples in every channel to 0.
func (b *Block) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
