package preprocess

// Opts holds the tunable thresholds of the preprocessing pipeline. An Opts
// value is threaded through every component so that a run's parameters are
// explicit and immutable.
type Opts struct {
	// MaxShift is the maximum displacement, in bases, allowed between the
	// start of a primer and the start of a read during primer search.
	MaxShift int
	// RecognitionThreshold is the minimum fraction of compatible positions
	// over the compared span for a primer trial to count as a match.
	RecognitionThreshold float64
	// TrimPrimers removes a matched primer prefix from both the sequence
	// and the quality string of a read.
	TrimPrimers bool

	// SeedLen is the length of the forward-read tail used as the seed of
	// the naive overlap search. It doubles as the minimum overlap length
	// accepted on the reference-anchored path.
	SeedLen int
	// MaxNaiveShift bounds how far the seed slides across the reverse read.
	MaxNaiveShift int
	// MinSeedIdent is the exact-match fraction the seed window must exceed
	// for the naive overlap search to accept a shift.
	MinSeedIdent float64

	// MaxAlignOffset flags a pairwise alignment as off-center when the
	// alignment ends more than this many bases before the forward read's
	// end, or starts more than this many bases into the reverse read.
	MaxAlignOffset int
	// MinOverlap is the overlap length, in reference coordinates, above
	// which the reference-anchored path requires the constant-region check.
	MinOverlap int
	// MaxCredGapLen is the longest credible gap between the two reads in
	// reference coordinates; longer gaps are classified as chimeras.
	MaxCredGapLen int

	// MaxConstMidOffset constrains where the constant marker region may
	// align within a merged sequence.
	MaxConstMidOffset int
	// MinConstCov is the minimum aligned fraction of the constant marker
	// region.
	MinConstCov float64
	// MinConstIdent is the minimum percent identity of the constant marker
	// alignment.
	MinConstIdent float64
}

// DefaultOpts sets the default values of Opts. The thresholds were chosen
// empirically for Illumina 16S V3-V4 libraries.
var DefaultOpts = Opts{
	MaxShift:             4,
	RecognitionThreshold: 0.52,
	TrimPrimers:          false,
	SeedLen:              11,
	MaxNaiveShift:        120,
	MinSeedIdent:         0.90,
	MaxAlignOffset:       40,
	MinOverlap:           11,
	MaxCredGapLen:        90,
	MaxConstMidOffset:    70,
	MinConstCov:          0.90,
	MinConstIdent:        80.0,
}
