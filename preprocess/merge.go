package preprocess

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/amplicon/encoding/fastq"
	"github.com/grailbio/base/log"
)

// OutcomeKind classifies the result of merging one read pair.
type OutcomeKind int

const (
	// MergedPair means the pair was reconstructed into one fragment.
	MergedPair OutcomeKind = iota
	// ChimeraPair means the reads do not come from one contiguous
	// fragment.
	ChimeraPair
	// TooShortPair means the reads are too short, or barely overlap at
	// their far ends.
	TooShortPair
	// FatalPair means the alignment coordinates matched no known shape; a
	// diagnostic report is written for offline inspection.
	FatalPair
)

func (k OutcomeKind) String() string {
	switch k {
	case MergedPair:
		return "merged"
	case ChimeraPair:
		return "chimera"
	case TooShortPair:
		return "too-short"
	case FatalPair:
		return "fatal"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// MergeOutcome is the terminal result of merging one read pair. Seq and
// Qual are set only when Kind is MergedPair.
type MergeOutcome struct {
	Kind OutcomeKind
	Seq  string
	Qual string
}

// Merger reconstructs full-length fragments from overlapping read pairs.
// Strategies are tried in order: a naive seed-shift search, a direct
// pairwise alignment of the two reads, and a reference-anchored alignment
// of each read against a database hit. Thread compatible as long as
// workers use distinct diagnostic writers or none.
type Merger struct {
	aligner Aligner
	// constRegion is the constant marker sequence expected near the center
	// of a correctly merged fragment.
	constRegion NamedSeq
	// diag receives unforeseen-case reports. May be nil.
	diag io.Writer
	opts Opts
}

// NewMerger creates a Merger. constRegion is the constant marker region
// used to vet reference-anchored merges; diag, when non-nil, receives a
// report for every unforeseen alignment shape.
func NewMerger(aligner Aligner, constRegion NamedSeq, diag io.Writer, opts Opts) *Merger {
	return &Merger{aligner: aligner, constRegion: constRegion, diag: diag, opts: opts}
}

// Merge merges one read pair. The reverse read is reverse-complemented
// (and its quality string reversed) so both reads face the same strand
// before any comparison. Per-pair classifications are returned in the
// outcome; an error is returned only for external-tool failure, which
// aborts the run.
func (m *Merger) Merge(ctx context.Context, r1, r2 *fastq.Read) (MergeOutcome, error) {
	fseq, fqual := r1.Seq, r1.Qual
	rseq := ReverseComplement(r2.Seq)
	rqual := reverseString(r2.Qual)

	if len(fseq) < m.opts.SeedLen || len(rseq) < m.opts.SeedLen {
		log.Error.Printf("%s: pair too short to merge (forward %d | reverse %d)", r1.ID, len(fseq), len(rseq))
		return MergeOutcome{Kind: TooShortPair}, nil
	}

	if shift, ok := m.naiveAlign(fseq, rseq); ok {
		overlap := shift + m.opts.SeedLen
		loffset := len(fseq) - overlap
		seq, qual := mergeByOverlap(loffset, overlap, fseq, fqual, rseq, rqual)
		return MergeOutcome{Kind: MergedPair, Seq: seq, Qual: qual}, nil
	}

	far, err := m.aligner.AlignPair(ctx, NamedSeq{ID: seqID(r1.ID), Seq: fseq}, NamedSeq{ID: seqID(r2.ID), Seq: rseq})
	if err != nil {
		return MergeOutcome{}, err
	}

	// Reads that barely overlap at their far ends:
	//   --FFFFFF
	//   RRRRRR--
	tooShort := far.QueryStart < far.SubjectStart ||
		float64(far.QueryEnd)/float64(len(fseq)) < float64(far.SubjectEnd)/float64(len(rseq))
	if tooShort {
		return MergeOutcome{Kind: TooShortPair}, nil
	}

	// A coincidental match in the middle of the reads rather than a true
	// 3'/5' overlap.
	offCenter := len(fseq)-far.QueryEnd > m.opts.MaxAlignOffset ||
		far.SubjectStart > m.opts.MaxAlignOffset
	if offCenter {
		return m.anchorToReference(ctx, r1, r2, fseq, fqual, rseq, rqual)
	}

	// Normal overlap:
	//   FFFFFFFF----
	//   ----RRRRRRRR
	loffset := far.QueryStart - far.SubjectStart
	// Coordinates are 1-based inclusive, hence the -1.
	overlap := far.Length + far.SubjectStart + (len(fseq) - far.QueryEnd) - 1
	if !validOverlap(loffset, overlap, len(fseq), len(rseq)) {
		return m.unforeseen(ctx, r1, r2, fseq, rseq)
	}
	seq, qual := mergeByOverlap(loffset, overlap, fseq, fqual, rseq, rqual)
	return MergeOutcome{Kind: MergedPair, Seq: seq, Qual: qual}, nil
}

// naiveAlign slides the tail of the forward read across the reverse read
// and returns the first shift whose exact-match fraction over the seed
// exceeds MinSeedIdent.
func (m *Merger) naiveAlign(fseq, rseq string) (int, bool) {
	seedLen := m.opts.SeedLen
	seed := fseq[len(fseq)-seedLen:]
	for shift := 0; shift < m.opts.MaxNaiveShift; shift++ {
		if shift+seedLen > len(rseq) || shift+seedLen > len(fseq) {
			break
		}
		score := 0
		for pos := 0; pos < seedLen; pos++ {
			if seed[pos] == rseq[pos+shift] {
				score++
			}
		}
		if float64(score)/float64(seedLen) > m.opts.MinSeedIdent {
			return shift, true
		}
	}
	return 0, false
}

// anchorToReference resolves an off-center pairwise alignment by aligning
// both reads against the best database hit and reasoning in the
// reference's coordinate frame.
func (m *Merger) anchorToReference(ctx context.Context, r1, r2 *fastq.Read, fseq, fqual, rseq, rqual string) (MergeOutcome, error) {
	faref, err := m.aligner.AlignDB(ctx, NamedSeq{ID: seqID(r1.ID), Seq: fseq})
	if err != nil {
		return MergeOutcome{}, err
	}
	refSeq, err := m.aligner.FetchSubject(ctx, faref.SubjectAcc)
	if err != nil {
		return MergeOutcome{}, err
	}
	if faref.Minus() {
		refSeq = ReverseComplement(refSeq)
	}
	raref, err := m.aligner.AlignPair(ctx, NamedSeq{ID: seqID(r2.ID), Seq: rseq}, NamedSeq{ID: faref.SubjectAcc, Seq: refSeq})
	if err != nil {
		return MergeOutcome{}, err
	}

	// Projected read positions in the reference frame.
	forwStart := faref.SubjectStart - faref.QueryStart
	forwEnd := forwStart + len(fseq)
	revStart := raref.SubjectStart - raref.QueryStart

	switch {
	case forwEnd < revStart:
		gapLen := revStart - forwEnd
		if gapLen > m.opts.MaxCredGapLen {
			// A gap this long is not credible.
			return MergeOutcome{Kind: ChimeraPair}, nil
		}
		seq := fseq + strings.Repeat("N", gapLen-1) + rseq
		qual := fqual + strings.Repeat("!", gapLen-1) + rqual
		return MergeOutcome{Kind: MergedPair, Seq: seq, Qual: qual}, nil

	case forwEnd-revStart > m.opts.MinOverlap && forwStart < revStart:
		loffset := revStart - forwStart
		overlap := forwEnd - revStart
		if !validOverlap(loffset, overlap, len(fseq), len(rseq)) {
			return m.unforeseen(ctx, r1, r2, fseq, rseq)
		}
		seq, qual := mergeByOverlap(loffset, overlap, fseq, fqual, rseq, rqual)
		ok, err := m.constantRegionPresent(ctx, seq)
		if err != nil {
			return MergeOutcome{}, err
		}
		if !ok {
			return MergeOutcome{Kind: ChimeraPair}, nil
		}
		return MergeOutcome{Kind: MergedPair, Seq: seq, Qual: qual}, nil

	default:
		// Short overlap, or the forward read does not start before the
		// reverse read in reference coordinates.
		return MergeOutcome{Kind: ChimeraPair}, nil
	}
}

// constantRegionPresent aligns the constant marker region against the
// candidate merged sequence and checks coverage, identity, and that the
// aligned span sits near the center.
func (m *Merger) constantRegionPresent(ctx context.Context, merged string) (bool, error) {
	rep, err := m.aligner.AlignPair(ctx, m.constRegion, NamedSeq{ID: "presumably-merged-read", Seq: merged})
	if err != nil {
		return false, err
	}
	enoughCov := float64(rep.Length)/float64(len(m.constRegion.Seq)) > m.opts.MinConstCov
	enoughIdent := rep.PercentIdent > m.opts.MinConstIdent
	inMidLeft := rep.SubjectStart > m.opts.MaxConstMidOffset
	inMidRight := rep.SubjectEnd > len(merged)-m.opts.MaxConstMidOffset
	return enoughCov && enoughIdent && inMidLeft && inMidRight, nil
}

// mergeByOverlap builds the position-wise quality-weighted consensus:
// forward prefix, then per overlap position the base from whichever read
// has the higher quality (ties keep the forward base), then the reverse
// suffix.
func mergeByOverlap(loffset, overlap int, fseq, fqual, rseq, rqual string) (string, string) {
	var seq, qual strings.Builder
	seq.Grow(loffset + len(rseq))
	qual.Grow(loffset + len(rqual))
	seq.WriteString(fseq[:loffset])
	qual.WriteString(fqual[:loffset])
	for i := 0; i < overlap; i++ {
		fi := loffset + i
		if fqual[fi] >= rqual[i] {
			seq.WriteByte(fseq[fi])
			qual.WriteByte(fqual[fi])
		} else {
			seq.WriteByte(rseq[i])
			qual.WriteByte(rqual[i])
		}
	}
	seq.WriteString(rseq[overlap:])
	qual.WriteString(rqual[overlap:])
	return seq.String(), qual.String()
}

// validOverlap rejects overlap geometries that fall outside either read.
func validOverlap(loffset, overlap, flen, rlen int) bool {
	return loffset >= 0 && overlap > 0 && loffset+overlap <= flen && overlap <= rlen
}

// unforeseen records an alignment-coordinate combination the state machine
// does not cover. This indicates a gap in the shape classification, not
// routine control flow.
func (m *Merger) unforeseen(ctx context.Context, r1, r2 *fastq.Read, fseq, rseq string) (MergeOutcome, error) {
	log.Error.Printf("unforeseen alignment shape for %s / %s", r1.ID, r2.ID)
	if m.diag != nil {
		fmt.Fprintf(m.diag, "Forward read:\n%s\n%s\n\n", r1.ID, fseq)
		fmt.Fprintf(m.diag, "Reverse read (reverse-complemented):\n%s\n%s\n\n", r2.ID, rseq)
		if rep, err := m.aligner.AlignPair(ctx, NamedSeq{ID: seqID(r1.ID), Seq: fseq}, NamedSeq{ID: seqID(r2.ID), Seq: rseq}); err == nil {
			fmt.Fprintf(m.diag, "Forward-against-reverse alignment:\n%+v\n\n", rep)
		} else {
			fmt.Fprintf(m.diag, "Forward-against-reverse alignment failed: %v\n\n", err)
		}
	}
	return MergeOutcome{Kind: FatalPair}, nil
}

// seqID strips the FASTQ '@' marker from an ID line.
func seqID(id string) string {
	if len(id) > 0 && id[0] == '@' {
		return id[1:]
	}
	return id
}
