package fastq

import (
	"bufio"
	"errors"
	"io"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when two underlying FASTQ files are discordant.
	ErrDiscordant = errors.New("discordant FASTQ pairs")
	// ErrLength is returned when a record's sequence and quality strings
	// differ in length.
	ErrLength = errors.New("sequence/quality length mismatch")
)

// A Read is one FASTQ record, comprising an ID line, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Validate checks the structural invariants of the record: the ID line
// starts with "@", line 3 starts with "+", and the sequence and quality
// strings are of equal length.
func (r *Read) Validate() error {
	if len(r.ID) == 0 || r.ID[0] != '@' {
		return ErrInvalid
	}
	if len(r.Unk) == 0 || r.Unk[0] != '+' {
		return ErrInvalid
	}
	if len(r.Seq) != len(r.Qual) {
		return ErrLength
	}
	return nil
}

// TrimPrefix removes the first n bases from the sequence and the quality
// string in lock step. n is clamped to [0, len(Seq)].
func (r *Read) TrimPrefix(n int) {
	if n <= 0 {
		return
	}
	if n > len(r.Seq) {
		n = len(r.Seq)
	}
	r.Seq = r.Seq[n:]
	r.Qual = r.Qual[n:]
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Scanner validates each record structurally: the ID line must begin
// with "@", line 3 must begin with "+", and sequence and quality must
// have equal lengths.
type Scanner struct {
	b   *bufio.Scanner
	err error
}

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{b: bufio.NewScanner(r)}
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	read.ID = f.b.Text()
	if !f.scan() {
		return false
	}
	read.Seq = f.b.Text()
	if !f.scan() {
		return false
	}
	read.Unk = f.b.Text()
	if !f.scan() {
		return false
	}
	read.Qual = f.b.Text()
	if err := read.Validate(); err != nil {
		f.err = err
		return false
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
	}
	return ok
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// PairScanner composes a pair of scanners to scan a pair of FASTQ
// streams.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner creates a new FASTQ pair scanner from the provided
// R1 and R2 readers.
func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{
		r1: NewScanner(r1),
		r2: NewScanner(r2),
	}
}

// Scan scans the next read pair into r1, r2. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
func (p *PairScanner) Scan(r1, r2 *Read) bool {
	ok1 := p.r1.Scan(r1)
	ok2 := p.r2.Scan(r2)
	if ok1 != ok2 {
		p.err = ErrDiscordant
	}
	return ok1 && ok2
}

// Err returns the scanning error, if any. It should be checked
// after Scan returns false.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}

// CountRecords reads r to the end and reports the number of 4-line FASTQ
// records it contains. A trailing partial record yields ErrShort.
func CountRecords(r io.Reader) (int, error) {
	b := bufio.NewScanner(r)
	lines := 0
	for b.Scan() {
		lines++
	}
	if err := b.Err(); err != nil {
		return 0, err
	}
	if lines%4 != 0 {
		return 0, ErrShort
	}
	return lines / 4, nil
}
