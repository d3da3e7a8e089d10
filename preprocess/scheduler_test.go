package preprocess

import (
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/amplicon/encoding/fastq"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
)

func TestPartition(t *testing.T) {
	expect.EQ(t, Partition(0, 4), []Chunk(nil))
	expect.EQ(t, Partition(10, 1), []Chunk{{0, 10}})
	expect.EQ(t, Partition(10, 3), []Chunk{{0, 4}, {4, 8}, {8, 10}})
	expect.EQ(t, Partition(4, 4), []Chunk{{0, 1}, {1, 2}, {2, 3}, {3, 4}})
	// More workers than items degenerates to one item per chunk.
	expect.EQ(t, Partition(2, 8), []Chunk{{0, 1}, {1, 2}})
	expect.EQ(t, Partition(10, 0), []Chunk{{0, 10}})
}

func testPairs(n int) []ReadPair {
	pairs := make([]ReadPair, n)
	for i := range pairs {
		qual := string(rune('!' + i%40))
		pairs[i] = ReadPair{
			R1: fastq.Read{ID: fmt.Sprintf("@pair%d/1", i), Seq: "A", Unk: "+", Qual: qual},
			R2: fastq.Read{ID: fmt.Sprintf("@pair%d/2", i), Seq: "T", Unk: "+", Qual: qual},
		}
	}
	return pairs
}

func countChunk(start int, pairs []ReadPair, res *ChunkResult) error {
	for i, p := range pairs {
		if want := fmt.Sprintf("@pair%d/1", start+i); p.R1.ID != want {
			return errors.E("chunk offset mismatch", p.R1.ID)
		}
		res.Stats.PairsProcessed++
		res.Quality.Add(p.R1.Qual)
		res.Quality.Add(p.R2.Qual)
	}
	return nil
}

func TestProcessPairs(t *testing.T) {
	pairs := testPairs(17)
	res, err := ProcessPairs(pairs, 4, countChunk)
	expect.NoError(t, err)
	expect.EQ(t, res.Stats.PairsProcessed, 17)
	expect.EQ(t, res.Quality.Total(), int64(34))
}

func TestProcessPairsDeterministic(t *testing.T) {
	pairs := testPairs(103)
	serial, err := ProcessPairs(pairs, 1, countChunk)
	expect.NoError(t, err)
	for _, workers := range []int{2, 3, 8, 64} {
		parallel, err := ProcessPairs(pairs, workers, countChunk)
		expect.NoError(t, err)
		expect.EQ(t, parallel, serial)
	}
}

func TestProcessPairsEmpty(t *testing.T) {
	res, err := ProcessPairs(nil, 4, countChunk)
	expect.NoError(t, err)
	expect.EQ(t, res, ChunkResult{})
}

func TestProcessPairsError(t *testing.T) {
	pairs := testPairs(8)
	_, err := ProcessPairs(pairs, 2, func(start int, pairs []ReadPair, res *ChunkResult) error {
		if start > 0 {
			return errors.E("worker failed")
		}
		return nil
	})
	expect.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "worker failed"))
}
