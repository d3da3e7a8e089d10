package preprocess

// maxPhred is the largest Phred+33 score representable in a FASTQ quality
// string ('~' - '!').
const maxPhred = 93

// QualityHistogram counts Phred+33 base quality scores. Workers build
// private histograms which are combined element-wise with Merge, so any
// partitioning of the input yields the same aggregate.
type QualityHistogram [maxPhred + 1]int64

// Add accumulates every base quality of qual. Characters outside the
// Phred+33 range are clamped into it.
func (h *QualityHistogram) Add(qual string) {
	for i := 0; i < len(qual); i++ {
		q := int(qual[i]) - '!'
		if q < 0 {
			q = 0
		} else if q > maxPhred {
			q = maxPhred
		}
		h[q]++
	}
}

// Merge adds the bin values of the two histograms and creates a new
// histogram.
func (h QualityHistogram) Merge(o QualityHistogram) QualityHistogram {
	for i, n := range o {
		h[i] += n
	}
	return h
}

// Total is the number of bases accumulated.
func (h QualityHistogram) Total() int64 {
	var n int64
	for _, c := range h {
		n += c
	}
	return n
}

// Mean is the average Phred score, or 0 for an empty histogram.
func (h QualityHistogram) Mean() float64 {
	var n, sum int64
	for q, c := range h {
		n += c
		sum += int64(q) * c
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
