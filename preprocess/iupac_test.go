package preprocess

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestBaseMatch(t *testing.T) {
	// Concrete bases match themselves and N.
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		expect.True(t, BaseMatch(b, b))
		expect.True(t, BaseMatch(b, 'N'))
	}
	expect.False(t, BaseMatch('A', 'C'))
	expect.False(t, BaseMatch('T', 'G'))

	// Two-base ambiguity codes.
	expect.True(t, BaseMatch('A', 'R'))
	expect.True(t, BaseMatch('G', 'R'))
	expect.False(t, BaseMatch('C', 'R'))
	expect.True(t, BaseMatch('C', 'Y'))
	expect.True(t, BaseMatch('T', 'Y'))
	expect.True(t, BaseMatch('C', 'S'))
	expect.True(t, BaseMatch('G', 'S'))
	expect.True(t, BaseMatch('A', 'W'))
	expect.True(t, BaseMatch('T', 'W'))
	expect.True(t, BaseMatch('G', 'K'))
	expect.True(t, BaseMatch('T', 'K'))
	expect.True(t, BaseMatch('A', 'M'))
	expect.True(t, BaseMatch('C', 'M'))

	// Three-base codes exclude exactly one base.
	expect.False(t, BaseMatch('A', 'B'))
	expect.False(t, BaseMatch('C', 'D'))
	expect.False(t, BaseMatch('G', 'H'))
	expect.False(t, BaseMatch('T', 'V'))
	expect.True(t, BaseMatch('C', 'B'))
	expect.True(t, BaseMatch('A', 'D'))
	expect.True(t, BaseMatch('T', 'H'))
	expect.True(t, BaseMatch('G', 'V'))

	// N in a read matches nothing, not even primer N.
	for _, p := range []byte("ATGCRYSWKMBDHVN") {
		expect.False(t, BaseMatch('N', p))
	}
}
