package preprocess

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestParseReport(t *testing.T) {
	const line = "read1\tNR_074246.1\t98.519\t270\t4\t0\t1\t270\t341\t610\t2.5e-131\t479\tNR_074246\tplus\n"
	rep, err := ParseReport(strings.NewReader(line))
	expect.NoError(t, err)
	expect.EQ(t, rep, AlignmentReport{
		QueryID:       "read1",
		SubjectID:     "NR_074246.1",
		PercentIdent:  98.519,
		Length:        270,
		Mismatches:    4,
		GapOpens:      0,
		QueryStart:    1,
		QueryEnd:      270,
		SubjectStart:  341,
		SubjectEnd:    610,
		EValue:        2.5e-131,
		BitScore:      479,
		SubjectAcc:    "NR_074246",
		SubjectStrand: "plus",
	})
	expect.False(t, rep.Minus())
}

func TestParseReportFirstOfMany(t *testing.T) {
	const lines = "r\ts\t90.0\t10\t1\t0\t1\t10\t5\t14\t1e-3\t20\tacc\tminus\n" +
		"r\ts2\t80.0\t10\t2\t0\t1\t10\t5\t14\t1e-2\t15\tacc2\tplus\n"
	rep, err := ParseReport(strings.NewReader(lines))
	expect.NoError(t, err)
	expect.EQ(t, rep.SubjectID, "s")
	expect.True(t, rep.Minus())
}

func TestParseReportEmpty(t *testing.T) {
	_, err := ParseReport(strings.NewReader(""))
	expect.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "empty alignment report"))
}

func TestParseReportMalformed(t *testing.T) {
	_, err := ParseReport(strings.NewReader("read1\tonly-two-columns\n"))
	expect.NotNil(t, err)
}
