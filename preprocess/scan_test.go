package preprocess

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func scanOpts() Opts {
	opts := DefaultOpts
	opts.MaxShift = 4
	opts.RecognitionThreshold = 0.52
	return opts
}

func TestScanExactPrefix(t *testing.T) {
	// A primer that is an exact prefix matches at shift 0 with trim
	// offset len(primer), at any threshold up to 1.0.
	opts := scanOpts()
	for _, th := range []float64{0.52, 0.9, 1.0} {
		opts.RecognitionThreshold = th
		m := ScanPrimer("ACGT", "ACGTTTTT", opts)
		expect.EQ(t, m, MatchResult{Found: true, TrimOffset: 4})
	}
}

func TestScanShiftedRead(t *testing.T) {
	// The primer sits two bases into the read: found at shift 2 in the
	// read-shifted direction, trim offset primerLen-shift = 2.
	m := ScanPrimer("ACGT", "TTACGTTT", scanOpts())
	expect.EQ(t, m, MatchResult{Found: true, TrimOffset: 2})
}

func TestScanNoMatch(t *testing.T) {
	m := ScanPrimer("ACGT", "GGGGGGGG", scanOpts())
	expect.EQ(t, m, MatchResult{})
}

func TestScanDegenerate(t *testing.T) {
	// W = A/T, N = any: every position of the read prefix satisfies the
	// primer.
	m := ScanPrimer("WNGT", "ATGTCCCC", scanOpts())
	expect.EQ(t, m, MatchResult{Found: true, TrimOffset: 4})
}

func TestScanReadN(t *testing.T) {
	// N in the read matches nothing, so an all-N prefix can never reach
	// the threshold.
	m := ScanPrimer("NNNN", "NNNNNNNN", scanOpts())
	expect.EQ(t, m, MatchResult{})
}

func TestScanShortRead(t *testing.T) {
	// Reads shorter than the primer restrict the compared span but keep
	// the full-span denominator; scanning must not panic.
	opts := scanOpts()
	opts.RecognitionThreshold = 0.5
	m := ScanPrimer("ACGTACGT", "ACGT", opts)
	expect.EQ(t, m, MatchResult{Found: true, TrimOffset: 8})

	// Empty read never matches.
	expect.EQ(t, ScanPrimer("ACGT", "", opts), MatchResult{})
}

func TestScanShiftEqualsPrimerLen(t *testing.T) {
	// Shifts at or past the primer length have an empty span and must be
	// skipped, never divided by.
	opts := scanOpts()
	opts.MaxShift = 10
	m := ScanPrimer("AC", "GGGGGGGG", opts)
	expect.EQ(t, m, MatchResult{})
}

func TestScanPrimerSetOrder(t *testing.T) {
	// The first matching primer in set order wins, but order never
	// changes whether a read matches.
	primers := []Primer{{ID: "p1", Seq: "GGGG"}, {ID: "p2", Seq: "ACGT"}}
	m := Scan(primers, "ACGTTTTT", scanOpts())
	expect.EQ(t, m, MatchResult{Found: true, TrimOffset: 4})
	m = Scan(ReversePrimers(primers), "ACGTTTTT", scanOpts())
	expect.EQ(t, m, MatchResult{Found: true, TrimOffset: 4})
}
