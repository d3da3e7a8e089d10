package preprocess

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestReverseComplement(t *testing.T) {
	expect.EQ(t, ReverseComplement(""), "")
	expect.EQ(t, ReverseComplement("A"), "T")
	expect.EQ(t, ReverseComplement("ACGTN"), "NACGT")
	expect.EQ(t, ReverseComplement("CCGGGGTTTT"), "AAAACCCCGG")
	// An involution on ACGTN.
	expect.EQ(t, ReverseComplement(ReverseComplement("GATTACA")), "GATTACA")
}

func TestReverseString(t *testing.T) {
	expect.EQ(t, reverseString(""), "")
	expect.EQ(t, reverseString("IIJJA"), "AJJII")
}
