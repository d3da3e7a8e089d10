package preprocess

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

// Primer is one named primer sequence over the degenerate alphabet
// ATGCRYSWKMBDHVN. Primers are immutable once loaded.
type Primer struct {
	ID  string
	Seq string
}

// LoadPrimers parses primers from a FASTA-like stream of alternating ID and
// sequence lines. Sequences are uppercased. Any symbol outside the
// degenerate alphabet is a validation error naming the offending symbols;
// no processing may start after such an error. Trailing blank lines are
// tolerated.
func LoadPrimers(r io.Reader) ([]Primer, error) {
	var (
		primers []Primer
		id      string
		haveID  bool
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !haveID {
			id = line
			haveID = true
			continue
		}
		seq := strings.ToUpper(line)
		if bad := invalidSymbols(seq); bad != "" {
			return nil, errors.E("primer", id, "contains symbols outside the ATGCRYSWKMBDHVN alphabet:", bad)
		}
		primers = append(primers, Primer{ID: strings.TrimPrefix(id, ">"), Seq: seq})
		haveID = false
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if haveID {
		return nil, errors.E("primer", id, "has no sequence line")
	}
	if len(primers) == 0 {
		return nil, errors.E("no primers found")
	}
	return primers, nil
}

// invalidSymbols returns the distinct symbols of seq that fall outside the
// primer alphabet, in order of first appearance.
func invalidSymbols(seq string) string {
	var bad []byte
	seen := [256]bool{}
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if !validPrimerSymbol(c) && !seen[c] {
			seen[c] = true
			bad = append(bad, c)
		}
	}
	return string(bad)
}

// ReversePrimers returns the primer set in reversed order. The reverse
// primer is the most likely match at the 5' end of the reverse read, so
// scanning R2 with the reversed set tries it first. Order is an
// optimization hint only; it never affects which reads match.
func ReversePrimers(ps []Primer) []Primer {
	rev := make([]Primer, len(ps))
	for i, p := range ps {
		rev[len(ps)-1-i] = p
	}
	return rev
}
