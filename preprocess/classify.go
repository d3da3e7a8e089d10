package preprocess

import "github.com/grailbio/amplicon/encoding/fastq"

// Class is the verdict of the cross-talk classifier for one read pair.
type Class int

const (
	// Kept pairs carry the expected primer in at least one read.
	Kept Class = iota
	// Trash pairs carry no recognizable primer and are routed to the
	// trash streams.
	Trash
)

// Classifier decides, per read pair, whether the pair belongs to the
// targeted amplicon. R1 is scanned with the primer set in loaded order,
// R2 with the set reversed, since the reverse primer is the more likely
// hit at the 5' end of the reverse read. Thread compatible: Classify may
// be called concurrently with distinct read pairs and Stats.
type Classifier struct {
	fwd, rev []Primer
	opts     Opts
}

// NewClassifier creates a Classifier for the given primer set.
func NewClassifier(primers []Primer, opts Opts) *Classifier {
	return &Classifier{
		fwd:  primers,
		rev:  ReversePrimers(primers),
		opts: opts,
	}
}

// Classify scans both reads of the pair, trims matched primers when
// Opts.TrimPrimers is set, and updates the matched/trash counters. A pair
// is kept when either read matches its primer set.
func (c *Classifier) Classify(r1, r2 *fastq.Read, stats *Stats) Class {
	m1 := Scan(c.fwd, r1.Seq, c.opts)
	m2 := Scan(c.rev, r2.Seq, c.opts)
	if c.opts.TrimPrimers {
		if m1.Found {
			r1.TrimPrefix(m1.TrimOffset)
		}
		if m2.Found {
			r2.TrimPrefix(m2.TrimOffset)
		}
	}
	stats.PairsProcessed++
	if m1.Found || m2.Found {
		stats.MatchedReads += 2
		return Kept
	}
	stats.TrashReads += 2
	return Trash
}
