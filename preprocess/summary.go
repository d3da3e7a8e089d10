package preprocess

import (
	"io"

	"github.com/grailbio/base/tsv"
)

// summaryColumns are the column names of the end-of-run report, in output
// order.
var summaryColumns = []string{
	"pairs",
	"matched_reads",
	"trash_reads",
	"trash_fraction",
	"merged_pairs",
	"chimera_pairs",
	"too_short_pairs",
	"fatal_pairs",
	"merge_rate",
	"mean_base_quality",
}

// WriteSummaryTSV writes the run summary as a single TSV row with a
// header line. The report is consumed by downstream reporting tooling.
func WriteSummaryTSV(w io.Writer, stats Stats, qual QualityHistogram) error {
	tw := tsv.NewWriter(w)
	for _, col := range summaryColumns {
		tw.WriteString(col)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	tw.WriteInt64(int64(stats.PairsProcessed))
	tw.WriteInt64(int64(stats.MatchedReads))
	tw.WriteInt64(int64(stats.TrashReads))
	tw.WriteFloat64(stats.TrashFraction(), 'g', -1)
	tw.WriteInt64(int64(stats.MergedPairs))
	tw.WriteInt64(int64(stats.ChimeraPairs))
	tw.WriteInt64(int64(stats.TooShortPairs))
	tw.WriteInt64(int64(stats.FatalPairs))
	tw.WriteFloat64(stats.MergeRate(), 'g', -1)
	tw.WriteFloat64(qual.Mean(), 'g', -1)
	if err := tw.EndLine(); err != nil {
		return err
	}
	return tw.Flush()
}
