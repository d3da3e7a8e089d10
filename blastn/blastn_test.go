package blastn

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/amplicon/preprocess"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
)

func TestParseFASTA(t *testing.T) {
	seq, err := parseFASTA(strings.NewReader(">NR_1234 some organism\nACGT\nTTGG\n"))
	expect.NoError(t, err)
	expect.EQ(t, seq, "ACGTTTGG")

	// Blank lines are skipped.
	seq, err = parseFASTA(strings.NewReader(">acc\n\nACGT\n\n"))
	expect.NoError(t, err)
	expect.EQ(t, seq, "ACGT")

	_, err = parseFASTA(strings.NewReader(">acc\n"))
	expect.NotNil(t, err)
	_, err = parseFASTA(strings.NewReader(""))
	expect.NotNil(t, err)
}

func TestWriteFASTA(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	tool := New("refdb", tempDir)

	path, err := tool.writeFASTA("query.fasta", preprocess.NamedSeq{ID: "read1", Seq: "ACGT"})
	expect.NoError(t, err)
	expect.EQ(t, path, filepath.Join(tempDir, "query.fasta"))
	data, err := ioutil.ReadFile(path)
	expect.NoError(t, err)
	expect.EQ(t, string(data), ">read1\nACGT\n")

	tool.RemoveTempFiles()
	_, err = ioutil.ReadFile(path)
	expect.NotNil(t, err)
}
