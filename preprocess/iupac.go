package preprocess

// iupacMask maps a primer symbol to the set of concrete bases it stands
// for. bit0=A bit1=C bit2=G bit3=T.
var iupacMask [256]byte

func init() {
	set := func(c byte, bits byte) { iupacMask[c] = bits }
	set('A', 1)
	set('C', 2)
	set('G', 4)
	set('T', 8)
	set('R', 1|4)     // A/G
	set('Y', 2|8)     // C/T
	set('S', 2|4)     // C/G
	set('W', 1|8)     // A/T
	set('K', 4|8)     // G/T
	set('M', 1|2)     // A/C
	set('B', 2|4|8)   // C/G/T
	set('D', 1|4|8)   // A/G/T
	set('H', 1|2|8)   // A/C/T
	set('V', 1|2|4)   // A/C/G
	set('N', 1|2|4|8) // any, primer side only
}

// BaseMatch reports whether primer symbol p is compatible with read base r
// under the IUPAC ambiguity codes. A read base outside ACGT (notably 'N')
// matches no primer symbol.
func BaseMatch(r, p byte) bool {
	if r != 'A' && r != 'C' && r != 'G' && r != 'T' {
		return false
	}
	return iupacMask[p]&iupacMask[r] != 0
}

// validPrimerSymbol reports whether c belongs to the degenerate primer
// alphabet.
func validPrimerSymbol(c byte) bool {
	return iupacMask[c] != 0
}
