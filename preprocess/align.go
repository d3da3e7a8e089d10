package preprocess

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// NamedSeq is a sequence with the identifier used in alignment requests
// and reports.
type NamedSeq struct {
	ID  string
	Seq string
}

// AlignmentReport is one tabular report line produced by the external
// aligner, in the 14-column layout "qseqid sseqid pident length mismatch
// gapopen qstart qend sstart send evalue bitscore sacc sstrand". All
// coordinates are 1-based inclusive.
type AlignmentReport struct {
	QueryID       string
	SubjectID     string
	PercentIdent  float64
	Length        int
	Mismatches    int
	GapOpens      int
	QueryStart    int
	QueryEnd      int
	SubjectStart  int
	SubjectEnd    int
	EValue        float64
	BitScore      float64
	SubjectAcc    string
	SubjectStrand string
}

// Minus reports whether the subject was hit on the minus strand.
func (r AlignmentReport) Minus() bool { return r.SubjectStrand == "minus" }

// ParseReport reads the first record of a tab-separated alignment report.
// An empty report is an error: the caller treats it as a failed alignment,
// never as a silent no-hit.
func ParseReport(r io.Reader) (AlignmentReport, error) {
	tr := tsv.NewReader(r)
	var rep AlignmentReport
	if err := tr.Read(&rep); err != nil {
		if err == io.EOF {
			return AlignmentReport{}, errors.E("empty alignment report")
		}
		return AlignmentReport{}, errors.E(err, "malformed alignment report")
	}
	return rep, nil
}

// Aligner is the gateway to the external sequence aligner. Implementations
// run a collaborator tool; any aligner producing AlignmentReport-shaped
// rows is substitutable. A failed invocation (nonzero exit, empty report)
// is returned as an error and never retried.
type Aligner interface {
	// AlignPair aligns query against subject and returns the best report
	// line.
	AlignPair(ctx context.Context, query, subject NamedSeq) (AlignmentReport, error)
	// AlignDB aligns query against the configured reference database and
	// returns the best hit.
	AlignDB(ctx context.Context, query NamedSeq) (AlignmentReport, error)
	// FetchSubject retrieves the full reference sequence for a database
	// accession, as stored (plus strand).
	FetchSubject(ctx context.Context, accession string) (string, error)
}
