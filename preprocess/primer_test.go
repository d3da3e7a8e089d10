package preprocess

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestLoadPrimers(t *testing.T) {
	in := ">V3-F\ncctacgggnggcwgcag\n>V4-R\nGACTACHVGGGTATCTAATCC\n\n"
	primers, err := LoadPrimers(strings.NewReader(in))
	expect.NoError(t, err)
	expect.EQ(t, primers, []Primer{
		{ID: "V3-F", Seq: "CCTACGGGNGGCWGCAG"},
		{ID: "V4-R", Seq: "GACTACHVGGGTATCTAATCC"},
	})
}

func TestLoadPrimersInvalidAlphabet(t *testing.T) {
	_, err := LoadPrimers(strings.NewReader(">p1\nACGTXQ\n"))
	expect.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "X"))
	expect.True(t, strings.Contains(err.Error(), "Q"))
}

func TestLoadPrimersTruncated(t *testing.T) {
	_, err := LoadPrimers(strings.NewReader(">p1\n"))
	expect.NotNil(t, err)
	_, err = LoadPrimers(strings.NewReader(""))
	expect.NotNil(t, err)
}

func TestReversePrimers(t *testing.T) {
	ps := []Primer{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	expect.EQ(t, ReversePrimers(ps), []Primer{{ID: "c"}, {ID: "b"}, {ID: "a"}})
	// The input is left untouched.
	expect.EQ(t, ps[0].ID, "a")
	expect.EQ(t, ReversePrimers(nil), []Primer{})
}
