package fastq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	r := Read{ID: "@r1", Seq: "ACGT", Unk: "+", Qual: "AAFF"}
	require.NoError(t, w.Write(&r))
	assert.Equal(t, "@r1\nACGT\n+\nAAFF\n", buf.String())

	sc := NewScanner(strings.NewReader(buf.String()))
	var got Read
	require.True(t, sc.Scan(&got))
	assert.Equal(t, r, got)
}

func TestPairWriter(t *testing.T) {
	var b1, b2 bytes.Buffer
	w := NewPairWriter(&b1, &b2)
	r1 := Read{ID: "@r1", Seq: "ACGT", Unk: "+", Qual: "AAFF"}
	r2 := Read{ID: "@r2", Seq: "TTTT", Unk: "+", Qual: "JJJJ"}
	require.NoError(t, w.Write(&r1, &r2))
	require.NoError(t, w.Write(&r1, &r2))
	assert.Equal(t, 2, strings.Count(b1.String(), "@r1"))
	assert.Equal(t, 2, strings.Count(b2.String(), "@r2"))
}
