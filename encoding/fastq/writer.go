package fastq

import "io"

var newline = []byte{'\n'}

// Writer is a FASTQ file writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r in FASTQ format.
// An error is returned if the write failed.
func (w *Writer) Write(r *Read) error {
	w.writeln(r.ID)
	w.writeln(r.Seq)
	w.writeln(r.Unk)
	w.writeln(r.Qual)
	return w.err
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}

// PairWriter writes read pairs to a pair of FASTQ streams in lock step.
// It is used for the kept and trash output streams, where R1 and R2
// records must stay synchronized.
type PairWriter struct {
	r1, r2 *Writer
}

// NewPairWriter constructs a PairWriter that writes R1 records to w1 and
// R2 records to w2.
func NewPairWriter(w1, w2 io.Writer) *PairWriter {
	return &PairWriter{r1: NewWriter(w1), r2: NewWriter(w2)}
}

// Write writes one read pair. An error is returned if either write
// failed.
func (p *PairWriter) Write(r1, r2 *Read) error {
	if err := p.r1.Write(r1); err != nil {
		return err
	}
	return p.r2.Write(r2)
}
