package preprocess

// Stats represents high-level counters of a preprocessing run. Workers
// accumulate private Stats which are combined with Merge; the combination
// is associative and order independent, so any partitioning of the input
// yields the same aggregate.
type Stats struct {
	// PairsProcessed counts read pairs seen by the classifier or merger.
	PairsProcessed int
	// MatchedReads counts reads of kept pairs (two per pair).
	MatchedReads int
	// TrashReads counts reads of trashed pairs (two per pair).
	TrashReads int
	// MergedPairs counts pairs reconstructed into a single fragment.
	MergedPairs int
	// ChimeraPairs counts pairs rejected as putative chimeras.
	ChimeraPairs int
	// TooShortPairs counts pairs rejected as too short to merge.
	TooShortPairs int
	// FatalPairs counts pairs that hit an unforeseen alignment shape.
	FatalPairs int
}

// Merge adds the field values of the two Stats objects and creates new
// Stats.
func (s Stats) Merge(o Stats) Stats {
	s.PairsProcessed += o.PairsProcessed
	s.MatchedReads += o.MatchedReads
	s.TrashReads += o.TrashReads
	s.MergedPairs += o.MergedPairs
	s.ChimeraPairs += o.ChimeraPairs
	s.TooShortPairs += o.TooShortPairs
	s.FatalPairs += o.FatalPairs
	return s
}

// Count records one merge outcome.
func (s *Stats) Count(kind OutcomeKind) {
	switch kind {
	case MergedPair:
		s.MergedPairs++
	case ChimeraPair:
		s.ChimeraPairs++
	case TooShortPair:
		s.TooShortPairs++
	case FatalPair:
		s.FatalPairs++
	}
}

// TrashFraction is the fraction of reads routed to the trash streams.
func (s Stats) TrashFraction() float64 {
	total := s.MatchedReads + s.TrashReads
	if total == 0 {
		return 0
	}
	return float64(s.TrashReads) / float64(total)
}

// MergeRate is the fraction of processed pairs that merged successfully.
func (s Stats) MergeRate() float64 {
	if s.PairsProcessed == 0 {
		return 0
	}
	return float64(s.MergedPairs) / float64(s.PairsProcessed)
}
