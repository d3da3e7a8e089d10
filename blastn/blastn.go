// Package blastn drives the NCBI BLAST+ toolchain as the external
// sequence aligner. It implements preprocess.Aligner: pairwise alignments
// run blastn in -subject mode, database alignments run blastn against a
// preformatted nucleotide database, and reference sequences are retrieved
// with blastdbcmd.
package blastn

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grailbio/amplicon/preprocess"
	"github.com/grailbio/base/errors"
)

// outFormat is the 14-column tabular report the gateway parses. All
// coordinates in it are 1-based inclusive.
const outFormat = "6 qseqid sseqid pident length mismatch gapopen qstart qend sstart send evalue bitscore sacc sstrand"

// Tool invokes the BLAST+ binaries. One Tool owns a private work
// directory for its query/subject/report files, so concurrent use
// requires one Tool per worker.
type Tool struct {
	// BlastN and BlastDBCmd are the binary names or paths. Zero values
	// mean "blastn" and "blastdbcmd" resolved via PATH.
	BlastN     string
	BlastDBCmd string
	// DB is the preformatted reference database for AlignDB and
	// FetchSubject.
	DB string

	workDir string
}

// New creates a Tool using db as the reference database and workDir for
// temporary files.
func New(db, workDir string) *Tool {
	return &Tool{BlastN: "blastn", BlastDBCmd: "blastdbcmd", DB: db, workDir: workDir}
}

// CheckTools verifies that the required binaries are on PATH (or at their
// configured paths). Missing tools are fatal before any processing.
func (t *Tool) CheckTools() error {
	for _, bin := range []string{t.BlastN, t.BlastDBCmd} {
		if _, err := exec.LookPath(bin); err != nil {
			return errors.E(err, "required aligner tool not found:", bin)
		}
	}
	return nil
}

// AlignPair aligns query against subject and returns the best report
// line.
func (t *Tool) AlignPair(ctx context.Context, query, subject preprocess.NamedSeq) (preprocess.AlignmentReport, error) {
	queryPath, err := t.writeFASTA("query.fasta", query)
	if err != nil {
		return preprocess.AlignmentReport{}, err
	}
	subjectPath, err := t.writeFASTA("subject.fasta", subject)
	if err != nil {
		return preprocess.AlignmentReport{}, err
	}
	return t.run(ctx,
		"-task", "blastn",
		"-query", queryPath,
		"-subject", subjectPath,
		"-penalty", "-1",
		"-reward", "2",
		"-outfmt", outFormat,
	)
}

// AlignDB aligns query against the reference database and returns the
// best hit.
func (t *Tool) AlignDB(ctx context.Context, query preprocess.NamedSeq) (preprocess.AlignmentReport, error) {
	queryPath, err := t.writeFASTA("query.fasta", query)
	if err != nil {
		return preprocess.AlignmentReport{}, err
	}
	return t.run(ctx,
		"-task", "blastn",
		"-query", queryPath,
		"-db", t.DB,
		"-max_target_seqs", "1",
		"-penalty", "-1",
		"-reward", "2",
		"-ungapped",
		"-outfmt", outFormat,
	)
}

// FetchSubject retrieves the full plus-strand sequence of a database
// accession via blastdbcmd.
func (t *Tool) FetchSubject(ctx context.Context, accession string) (string, error) {
	cmd := exec.CommandContext(ctx, t.BlastDBCmd, "-db", t.DB, "-entry", accession)
	out, err := cmd.Output()
	if err != nil {
		return "", errors.E(err, "blastdbcmd failed for entry", accession, stderrOf(err))
	}
	seq, err := parseFASTA(bytes.NewReader(out))
	if err != nil {
		return "", errors.E(err, "blastdbcmd returned no sequence for entry", accession)
	}
	return seq, nil
}

// run executes blastn with the given arguments and parses the first
// report line. A nonzero exit or an empty report is an error; there is no
// retry, since rerunning the tool on identical inputs will not succeed
// differently.
func (t *Tool) run(ctx context.Context, args ...string) (preprocess.AlignmentReport, error) {
	cmd := exec.CommandContext(ctx, t.BlastN, args...)
	out, err := cmd.Output()
	if err != nil {
		return preprocess.AlignmentReport{}, errors.E(err, "blastn failed", stderrOf(err))
	}
	rep, err := preprocess.ParseReport(bytes.NewReader(out))
	if err != nil {
		return preprocess.AlignmentReport{}, err
	}
	return rep, nil
}

// writeFASTA writes one single-record FASTA file into the work dir and
// returns its path.
func (t *Tool) writeFASTA(name string, seq preprocess.NamedSeq) (string, error) {
	path := filepath.Join(t.workDir, name)
	data := ">" + seq.ID + "\n" + seq.Seq + "\n"
	if err := ioutil.WriteFile(path, []byte(data), 0666); err != nil {
		return "", errors.E(err, "failed to create aligner input file", path)
	}
	return path, nil
}

// parseFASTA concatenates the sequence lines of a single-record FASTA
// stream.
func parseFASTA(r io.Reader) (string, error) {
	var seq strings.Builder
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ">") {
			continue
		}
		seq.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if seq.Len() == 0 {
		return "", errors.E("empty FASTA record")
	}
	return seq.String(), nil
}

// stderrOf extracts captured stderr from an exec error, if any.
func stderrOf(err error) string {
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok && len(exitErr.Stderr) > 0 {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}

func asExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

// RemoveTempFiles deletes the temporary query/subject files left in the
// work dir. Safe to call whether or not they exist.
func (t *Tool) RemoveTempFiles() {
	for _, name := range []string{"query.fasta", "subject.fasta"} {
		os.Remove(filepath.Join(t.workDir, name))
	}
}
