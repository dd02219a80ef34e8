package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ZeroChannels zeroes every channel of chans from index from onwards.
func ZeroChannels(chans [][]float64, from int) {
	if from < 0 {
		from = 0
	}
	for ch := from; ch < len(chans); ch++ {
		Zero(chans[ch])
	}
}

// MinLen returns the shortest channel length in chans, or 0 if chans is empty.
func MinLen(chans [][]float64) int {
	if len(chans) == 0 {
		return 0
	}
	n := len(chans[0])
	for _, ch := range chans[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}
