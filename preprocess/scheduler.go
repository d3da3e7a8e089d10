package preprocess

import (
	"github.com/grailbio/amplicon/encoding/fastq"
	"github.com/grailbio/base/traverse"
)

// ReadPair is one synchronized forward/reverse record pair.
type ReadPair struct {
	R1, R2 fastq.Read
}

// Chunk is a half-open range of pair indices owned by one worker.
type Chunk struct {
	Start, End int
}

// Partition splits n items into at most workers contiguous chunks of equal
// size (the last chunk may be shorter). workers < 1 is treated as 1.
func Partition(n, workers int) []Chunk {
	if workers < 1 {
		workers = 1
	}
	if n <= 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	var chunks []Chunk
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
	}
	return chunks
}

// ChunkResult is one worker's partial result. Results are reduced in chunk
// order; every field combines with an associative, order-independent sum,
// so the aggregate is identical for any worker count.
type ChunkResult struct {
	Stats   Stats
	Quality QualityHistogram
}

// merge combines two partial results.
func (r ChunkResult) merge(o ChunkResult) ChunkResult {
	r.Stats = r.Stats.Merge(o.Stats)
	r.Quality = r.Quality.Merge(o.Quality)
	return r
}

// ChunkFunc processes the pairs of one chunk. start is the index of the
// chunk's first pair in the full stream; the function owns pairs
// exclusively for the chunk's duration and may mutate them (primer
// trimming does). A returned error stops the whole run: partial results
// of a failed run are meaningless.
type ChunkFunc func(start int, pairs []ReadPair, res *ChunkResult) error

// ProcessPairs partitions pairs into contiguous chunks, runs fn over each
// chunk with at most workers running concurrently, and reduces the partial
// results deterministically. workers == 1 produces results bit-identical
// to any parallel run.
func ProcessPairs(pairs []ReadPair, workers int, fn ChunkFunc) (ChunkResult, error) {
	if workers < 1 {
		workers = 1
	}
	chunks := Partition(len(pairs), workers)
	partials := make([]ChunkResult, len(chunks))
	err := traverse.Limit(workers).Each(len(chunks), func(i int) error {
		c := chunks[i]
		return fn(c.Start, pairs[c.Start:c.End], &partials[i])
	})
	if err != nil {
		return ChunkResult{}, err
	}
	var total ChunkResult
	for _, p := range partials {
		total = total.merge(p)
	}
	return total, nil
}
