package preprocess

// MatchResult is the outcome of scanning one read prefix for a primer set.
// When Found, TrimOffset is the length of the matched prefix to remove from
// the read.
type MatchResult struct {
	Found      bool
	TrimOffset int
}

// ScanPrimer searches for primer at the 5' end of seq, tolerating a
// displacement of up to opts.MaxShift bases in either direction. At each
// shift two alignments are tried: the primer shifted right over the read,
// then the read shifted right over the primer. A trial succeeds when the
// fraction of compatible positions over the span primerLen-shift reaches
// opts.RecognitionThreshold; the first success wins. Trials whose span is
// empty, or that have no read bases to compare, are skipped.
func ScanPrimer(primer string, seq string, opts Opts) MatchResult {
	plen := len(primer)
	for shift := 0; shift <= opts.MaxShift && shift < plen; shift++ {
		span := plen - shift

		// Primer shifted right over the read:
		//   read   RRRRRRRR
		//   primer   PPPPPP   (primer[shift:] vs read[0:])
		n := span
		if n > len(seq) {
			n = len(seq)
		}
		if n > 0 && ratioOK(primer[shift:], seq, n, span, opts.RecognitionThreshold) {
			return MatchResult{Found: true, TrimOffset: span}
		}

		// Read shifted right over the primer:
		//   read     RRRRRR   (primer[0:] vs read[shift:])
		//   primer PPPPPPPP
		n = span
		if rest := len(seq) - shift; n > rest {
			n = rest
		}
		if n > 0 && ratioOK(primer, seq[shift:], n, span, opts.RecognitionThreshold) {
			return MatchResult{Found: true, TrimOffset: span}
		}
	}
	return MatchResult{}
}

// ratioOK scores the first n positions of primer p against read s and
// compares score/span against the threshold.
func ratioOK(p, s string, n, span int, threshold float64) bool {
	score := 0
	for i := 0; i < n; i++ {
		if BaseMatch(s[i], p[i]) {
			score++
		}
	}
	return float64(score)/float64(span) >= threshold
}

// Scan tries each primer of the set in order against seq and returns the
// first match. Primer order is a hit-rate optimization, never a
// correctness concern: a read either matches some primer or none.
func Scan(primers []Primer, seq string, opts Opts) MatchResult {
	for _, p := range primers {
		if m := ScanPrimer(p.Seq, seq, opts); m.Found {
			return m
		}
	}
	return MatchResult{}
}
