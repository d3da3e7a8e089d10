package main

//
// bio-amplicon preprocesses paired-end amplicon sequencing reads.
//
// The pipeline has two stages:
//
//   1. cross-talk classification: pairs carrying a known primer in either
//      read are kept, the rest are routed to the trash streams.
//
//   2. (optional, -merge) read merging: kept pairs are reconstructed into
//      full-length fragments using a naive overlap search with alignment
//      fallbacks through NCBI BLAST+.
//
// Example 1: classify only, trimming matched primers.
//
//    bio-amplicon -primers=primers.fa -r1=r1.fastq.gz -r2=r2.fastq.gz -trim-primers
//
// Example 2: classify and merge against a 16S reference database.
//
//    bio-amplicon -primers=primers.fa -r1=r1.fastq -r2=r2.fastq -merge \
//      -blast-db=SILVA_db -const-region=constant_region.fa

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/grailbio/amplicon/blastn"
	"github.com/grailbio/amplicon/encoding/fastq"
	"github.com/grailbio/amplicon/preprocess"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

// Collection of options set via cmdline flags.
type ampliconFlags struct {
	primersPath     string
	r1, r2          string
	outputDir       string
	name            string
	workers         int
	merge           bool
	blastDB         string
	constRegionPath string
	blastnPath      string
	blastDBCmdPath  string
}

// openInput opens path through the file package and decompresses it
// transparently based on the path extension.
func openInput(ctx context.Context, path string) (io.Reader, func() error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Panicf("open %v: %v", path, err)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	return r, func() error { return in.Close(ctx) }
}

// countRecords makes a first pass over the R1 stream to size the pair
// buffer and report the workload before processing starts.
func countRecords(ctx context.Context, path string) int {
	in, closeIn := openInput(ctx, path)
	n, err := fastq.CountRecords(in)
	if err != nil {
		log.Panicf("count records %v: %v", path, err)
	}
	if err := closeIn(); err != nil {
		log.Panicf("close %v: %v", path, err)
	}
	log.Printf("%s: %d records", path, n)
	return n
}

// readPairs loads the full R1/R2 streams into memory. The scheduler hands
// contiguous slices of the result to the workers.
func readPairs(ctx context.Context, r1Path, r2Path string) []preprocess.ReadPair {
	n := countRecords(ctx, r1Path)
	in1, close1 := openInput(ctx, r1Path)
	in2, close2 := openInput(ctx, r2Path)
	sc := fastq.NewPairScanner(in1, in2)
	var (
		pairs  = make([]preprocess.ReadPair, 0, n)
		r1, r2 fastq.Read
	)
	for sc.Scan(&r1, &r2) {
		pairs = append(pairs, preprocess.ReadPair{R1: r1, R2: r2})
		if len(pairs)%(1024*1024) == 0 {
			log.Printf("%s: %dMi readpairs", r1Path, len(pairs)/(1024*1024))
		}
	}
	once := errors.Once{}
	once.Set(sc.Err())
	once.Set(close1())
	once.Set(close2())
	if err := once.Err(); err != nil {
		log.Panicf("read %v,%v: %v", r1Path, r2Path, err)
	}
	log.Printf("Read %d pairs from %s", len(pairs), r1Path)
	return pairs
}

// loadPrimers reads and validates the primer set. Validation failure is
// fatal before any read is processed.
func loadPrimers(ctx context.Context, path string) []preprocess.Primer {
	in, closeIn := openInput(ctx, path)
	primers, err := preprocess.LoadPrimers(in)
	if err != nil {
		log.Panicf("load primers %v: %v", path, err)
	}
	if err := closeIn(); err != nil {
		log.Panicf("close %v: %v", path, err)
	}
	for _, p := range primers {
		log.Printf("Primer %s: %s", p.ID, p.Seq)
	}
	return primers
}

// loadConstRegion reads the single-record FASTA constant marker region.
func loadConstRegion(ctx context.Context, path string) preprocess.NamedSeq {
	in, closeIn := openInput(ctx, path)
	var (
		id  string
		seq strings.Builder
	)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, ">"):
			id = strings.TrimPrefix(line, ">")
		default:
			seq.WriteString(strings.ToUpper(line))
		}
	}
	once := errors.Once{}
	once.Set(sc.Err())
	once.Set(closeIn())
	if err := once.Err(); err != nil {
		log.Panicf("read %v: %v", path, err)
	}
	if seq.Len() == 0 {
		log.Panicf("%v: no constant region sequence found", path)
	}
	return preprocess.NamedSeq{ID: id, Seq: seq.String()}
}

func createOutput(ctx context.Context, path string) (*bufio.Writer, func() error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Panicf("create %v: %v", path, err)
	}
	w := bufio.NewWriter(out.Writer(ctx))
	return w, func() error {
		once := errors.Once{}
		once.Set(w.Flush())
		once.Set(out.Close(ctx))
		return once.Err()
	}
}

// classify runs the cross-talk classifier over all pairs and returns the
// per-pair verdicts along with the aggregated counters. Matched primers
// are trimmed in place when opts.TrimPrimers is set.
func classify(pairs []preprocess.ReadPair, primers []preprocess.Primer, workers int, opts preprocess.Opts) ([]preprocess.Class, preprocess.ChunkResult) {
	classifier := preprocess.NewClassifier(primers, opts)
	classes := make([]preprocess.Class, len(pairs))
	res, err := preprocess.ProcessPairs(pairs, workers, func(start int, chunk []preprocess.ReadPair, res *preprocess.ChunkResult) error {
		for i := range chunk {
			p := &chunk[i]
			class := classifier.Classify(&p.R1, &p.R2, &res.Stats)
			classes[start+i] = class
			if class == preprocess.Kept {
				res.Quality.Add(p.R1.Qual)
				res.Quality.Add(p.R2.Qual)
			}
		}
		return nil
	})
	if err != nil {
		log.Panicf("classification failed: %v", err)
	}
	return classes, res
}

// mergePairs reconstructs the kept pairs into fragments. Each worker owns
// a private blastn.Tool with its own work directory, so temporary
// query/subject files never collide. Per-pair outcomes land in the
// returned slice in input order; diagnostics for unforeseen alignment
// shapes are concatenated in chunk order.
func mergePairs(ctx context.Context, kept []preprocess.ReadPair, flags ampliconFlags, constRegion preprocess.NamedSeq, opts preprocess.Opts) ([]preprocess.MergeOutcome, preprocess.ChunkResult, []byte) {
	outcomes := make([]preprocess.MergeOutcome, len(kept))
	chunks := preprocess.Partition(len(kept), flags.workers)
	diags := make([]strings.Builder, len(chunks))
	chunkIdx := map[int]int{}
	for i, c := range chunks {
		chunkIdx[c.Start] = i
	}
	res, err := preprocess.ProcessPairs(kept, flags.workers, func(start int, chunk []preprocess.ReadPair, res *preprocess.ChunkResult) error {
		workDir, err := ioutil.TempDir("", "bio-amplicon-blast")
		if err != nil {
			return errors.E(err, "failed to create aligner work dir")
		}
		defer os.RemoveAll(workDir)
		tool := blastn.New(flags.blastDB, workDir)
		if flags.blastnPath != "" {
			tool.BlastN = flags.blastnPath
		}
		if flags.blastDBCmdPath != "" {
			tool.BlastDBCmd = flags.blastDBCmdPath
		}
		merger := preprocess.NewMerger(tool, constRegion, &diags[chunkIdx[start]], opts)
		for i := range chunk {
			out, err := merger.Merge(ctx, &chunk[i].R1, &chunk[i].R2)
			if err != nil {
				return err
			}
			outcomes[start+i] = out
			res.Stats.Count(out.Kind)
			if out.Kind == preprocess.MergedPair {
				res.Quality.Add(out.Qual)
			}
		}
		return nil
	})
	if err != nil {
		log.Panicf("read merging failed: %v", err)
	}
	var diag strings.Builder
	for i := range diags {
		diag.WriteString(diags[i].String())
	}
	return outcomes, res, []byte(diag.String())
}

func writeClassified(ctx context.Context, pairs []preprocess.ReadPair, classes []preprocess.Class, flags ampliconFlags) []preprocess.ReadPair {
	keptR1, closeKept1 := createOutput(ctx, outPath(flags, ".16S.R1.fastq"))
	keptR2, closeKept2 := createOutput(ctx, outPath(flags, ".16S.R2.fastq"))
	trashR1, closeTrash1 := createOutput(ctx, outPath(flags, ".trash.R1.fastq"))
	trashR2, closeTrash2 := createOutput(ctx, outPath(flags, ".trash.R2.fastq"))
	keptOut := fastq.NewPairWriter(keptR1, keptR2)
	trashOut := fastq.NewPairWriter(trashR1, trashR2)

	var kept []preprocess.ReadPair
	for i := range pairs {
		p := &pairs[i]
		var err error
		if classes[i] == preprocess.Kept {
			kept = append(kept, *p)
			err = keptOut.Write(&p.R1, &p.R2)
		} else {
			err = trashOut.Write(&p.R1, &p.R2)
		}
		if err != nil {
			log.Panicf("write classified pair: %v", err)
		}
	}
	once := errors.Once{}
	once.Set(closeKept1())
	once.Set(closeKept2())
	once.Set(closeTrash1())
	once.Set(closeTrash2())
	if err := once.Err(); err != nil {
		log.Panicf("close classified outputs: %v", err)
	}
	return kept
}

func writeMerged(ctx context.Context, kept []preprocess.ReadPair, outcomes []preprocess.MergeOutcome, diag []byte, flags ampliconFlags) {
	merged, closeMerged := createOutput(ctx, outPath(flags, ".merged.fastq"))
	w := fastq.NewWriter(merged)
	for i := range kept {
		out := outcomes[i]
		if out.Kind != preprocess.MergedPair {
			continue
		}
		rec := fastq.Read{ID: kept[i].R1.ID, Seq: out.Seq, Unk: "+", Qual: out.Qual}
		if err := w.Write(&rec); err != nil {
			log.Panicf("write merged read: %v", err)
		}
	}
	if err := closeMerged(); err != nil {
		log.Panicf("close merged output: %v", err)
	}
	if len(diag) > 0 {
		w, closeDiag := createOutput(ctx, outPath(flags, ".unforeseen.txt"))
		if _, err := w.Write(diag); err != nil {
			log.Panicf("write diagnostics: %v", err)
		}
		if err := closeDiag(); err != nil {
			log.Panicf("close diagnostics: %v", err)
		}
	}
}

func writeSummary(ctx context.Context, res preprocess.ChunkResult, flags ampliconFlags) {
	w, closeSummary := createOutput(ctx, outPath(flags, ".summary.tsv"))
	if err := preprocess.WriteSummaryTSV(w, res.Stats, res.Quality); err != nil {
		log.Panicf("write summary: %v", err)
	}
	if err := closeSummary(); err != nil {
		log.Panicf("close summary: %v", err)
	}
}

func outPath(flags ampliconFlags, suffix string) string {
	return filepath.Join(flags.outputDir, flags.name+suffix)
}

// sampleName strips compression and FASTQ extensions from an input path.
func sampleName(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".gz", ".bz2", ".fastq", ".fq"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func run(ctx context.Context, flags ampliconFlags, opts preprocess.Opts) {
	if flags.primersPath == "" || flags.r1 == "" || flags.r2 == "" {
		log.Fatal("-primers, -r1, and -r2 are required")
	}
	var constRegion preprocess.NamedSeq
	if flags.merge {
		if flags.blastDB == "" || flags.constRegionPath == "" {
			log.Fatal("-merge requires -blast-db and -const-region")
		}
		tool := blastn.New(flags.blastDB, "")
		if flags.blastnPath != "" {
			tool.BlastN = flags.blastnPath
		}
		if flags.blastDBCmdPath != "" {
			tool.BlastDBCmd = flags.blastDBCmdPath
		}
		if err := tool.CheckTools(); err != nil {
			log.Fatalf("aligner tools unavailable: %v", err)
		}
		constRegion = loadConstRegion(ctx, flags.constRegionPath)
	}

	primers := loadPrimers(ctx, flags.primersPath)
	pairs := readPairs(ctx, flags.r1, flags.r2)

	classes, res := classify(pairs, primers, flags.workers, opts)
	kept := writeClassified(ctx, pairs, classes, flags)
	log.Printf("Stats: %d pairs, %d matched reads, %d trash reads (%.4f trash fraction)",
		res.Stats.PairsProcessed, res.Stats.MatchedReads, res.Stats.TrashReads, res.Stats.TrashFraction())

	if flags.merge {
		outcomes, mergeRes, diag := mergePairs(ctx, kept, flags, constRegion, opts)
		writeMerged(ctx, kept, outcomes, diag, flags)
		res.Stats = res.Stats.Merge(mergeRes.Stats)
		// The summary reports the quality of the merged fragments, not of
		// the raw kept reads.
		res.Quality = mergeRes.Quality
		rate := 0.0
		if len(kept) > 0 {
			rate = float64(mergeRes.Stats.MergedPairs) / float64(len(kept))
		}
		log.Printf("Stats: %d merged, %d chimera, %d too short, %d fatal (%.4f merge rate of %d kept pairs)",
			mergeRes.Stats.MergedPairs, mergeRes.Stats.ChimeraPairs, mergeRes.Stats.TooShortPairs,
			mergeRes.Stats.FatalPairs, rate, len(kept))
	}

	writeSummary(ctx, res, flags)
}

func usage() {
	fmt.Fprint(os.Stderr, `
bio-amplicon classifies paired-end amplicon reads by primer content and
optionally merges the kept pairs into full-length fragments.

Examples:

1. Classify only, trimming matched primers:

    bio-amplicon -primers=primers.fa -r1=r1.fastq.gz -r2=r2.fastq.gz -trim-primers

2. Classify and merge:

    bio-amplicon -primers=primers.fa -r1=r1.fastq -r2=r2.fastq -merge \
      -blast-db=SILVA_db -const-region=constant_region.fa
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage

	opts := preprocess.DefaultOpts
	flags := ampliconFlags{}
	flag.StringVar(&flags.primersPath, "primers", "", "FASTA-like file of primer sequences (alternating ID and sequence lines).")
	flag.StringVar(&flags.r1, "r1", "", "FASTQ file containing R1 reads. May be gzip or bzip2 compressed.")
	flag.StringVar(&flags.r2, "r2", "", "FASTQ file containing R2 reads. May be gzip or bzip2 compressed.")
	flag.StringVar(&flags.outputDir, "output-dir", ".", "Directory for all output files.")
	flag.StringVar(&flags.name, "name", "", "Base name of output files. Defaults to the R1 file name without extensions.")
	flag.IntVar(&flags.workers, "workers", runtime.NumCPU(), "Number of concurrent workers.")
	flag.BoolVar(&flags.merge, "merge", false, "Merge kept pairs into full-length fragments.")
	flag.StringVar(&flags.blastDB, "blast-db", "", "Preformatted BLAST nucleotide database for the reference-anchored merge fallback.")
	flag.StringVar(&flags.constRegionPath, "const-region", "", "Single-record FASTA file with the constant marker region.")
	flag.StringVar(&flags.blastnPath, "blastn", "", "Path to the blastn binary. Defaults to PATH lookup.")
	flag.StringVar(&flags.blastDBCmdPath, "blastdbcmd", "", "Path to the blastdbcmd binary. Defaults to PATH lookup.")

	flag.BoolVar(&opts.TrimPrimers, "trim-primers", preprocess.DefaultOpts.TrimPrimers, "Trim matched primers from kept reads.")
	flag.IntVar(&opts.MaxShift, "max-shift", preprocess.DefaultOpts.MaxShift, "Maximum primer/read start displacement during primer search.")
	flag.Float64Var(&opts.RecognitionThreshold, "recognition-threshold", preprocess.DefaultOpts.RecognitionThreshold, "Minimum compatible fraction for a primer match.")
	flag.IntVar(&opts.SeedLen, "seed-len", preprocess.DefaultOpts.SeedLen, "Seed length of the naive overlap search.")
	flag.Float64Var(&opts.MinSeedIdent, "min-seed-ident", preprocess.DefaultOpts.MinSeedIdent, "Minimum exact-match fraction for a naive overlap hit.")
	flag.IntVar(&opts.MaxAlignOffset, "max-align-offset", preprocess.DefaultOpts.MaxAlignOffset, "Offset beyond which a pairwise alignment counts as off-center.")
	flag.IntVar(&opts.MaxCredGapLen, "max-cred-gap-len", preprocess.DefaultOpts.MaxCredGapLen, "Longest credible gap between reads in reference coordinates.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.name == "" {
		flags.name = sampleName(flags.r1)
	}
	run(ctx, flags, opts)
	log.Printf("All done")
}
