package preprocess

// rcTable maps a base to its Watson-Crick complement. U complements to A
// and N stays N; anything else maps to N.
var rcTable [256]byte

func init() {
	for i := range rcTable {
		rcTable[i] = 'N'
	}
	rcTable['A'] = 'T'
	rcTable['T'] = 'A'
	rcTable['C'] = 'G'
	rcTable['G'] = 'C'
	rcTable['U'] = 'A'
	rcTable['N'] = 'N'
}

// ReverseComplement computes the reverse complement of a DNA string.
func ReverseComplement(seq string) string {
	buf := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		buf[len(seq)-1-i] = rcTable[seq[i]]
	}
	return string(buf)
}

// reverseString reverses s byte-wise. Used for quality strings, which
// follow their read base-for-base.
func reverseString(s string) string {
	buf := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		buf[len(s)-1-i] = s[i]
	}
	return string(buf)
}
