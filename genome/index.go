package genome

import (
	"sort"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/linkedread/align"
)

// The index is sharded nIndexShard ways on the low bits of farmhash(kmer).
// Shards are filled in parallel.
const nIndexShard = 256

// IndexOpts configures an Index.
type IndexOpts struct {
	// KmerLength is the seed length.
	KmerLength int
	// MaxHits is the popular-seed cutoff. A k-mer that occurs more than
	// MaxHits times is recorded as popular, without its locations.
	MaxHits int
}

// DefaultIndexOpts sets the default values of IndexOpts.
var DefaultIndexOpts = IndexOpts{
	KmerLength: 20,
	MaxHits:    300,
}

// Index maps the forward-strand k-mers of a genome to their locations.
// It is immutable and safe for concurrent use once built.
type Index struct {
	opts   IndexOpts
	genome *Genome
	// A popular k-mer maps to a nil slice.
	shards [nIndexShard]map[Kmer][]align.GenomeLocation
}

func indexShard(k Kmer) int {
	return int(farm.Hash64WithSeed(nil, uint64(k)) & (nIndexShard - 1))
}

// NewIndex indexes every k-mer of g.
//
// REQUIRES: 0 < opts.KmerLength <= MaxKmerLength.
func NewIndex(g *Genome, opts IndexOpts) *Index {
	if opts.KmerLength <= 0 || opts.KmerLength > MaxKmerLength {
		log.Panicf("genome: invalid kmer length %d", opts.KmerLength)
	}
	var input [nIndexShard]map[Kmer][]align.GenomeLocation
	for i := range input {
		input[i] = map[Kmer][]align.GenomeLocation{}
	}
	kmerizer := NewKmerizer(opts.KmerLength, 1)
	for _, c := range g.contigs {
		kmerizer.Reset(g.Substring(c.Start, c.Len))
		for kmerizer.Scan() {
			km := kmerizer.Get()
			shard := input[indexShard(km.Kmer)]
			shard[km.Kmer] = append(shard[km.Kmer], c.Start+align.GenomeLocation(km.Pos))
		}
	}

	idx := &Index{opts: opts, genome: g}
	var nPopular [nIndexShard]int
	err := traverse.Each(nIndexShard, func(shard int) error {
		m := input[shard]
		for km, locs := range m {
			if len(locs) > opts.MaxHits {
				m[km] = nil
				nPopular[shard]++
				continue
			}
			sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
		}
		idx.shards[shard] = m
		return nil
	})
	if err != nil {
		log.Panic(err)
	}
	total, popular := 0, 0
	for shard := range idx.shards {
		total += len(idx.shards[shard])
		popular += nPopular[shard]
	}
	log.Printf("genome: indexed %d distinct %d-mers (%d popular) over %d bases",
		total, opts.KmerLength, popular, g.Len())
	return idx
}

// KmerLength returns the seed length.
func (idx *Index) KmerLength() int { return idx.opts.KmerLength }

// Genome returns the indexed genome.
func (idx *Index) Genome() *Genome { return idx.genome }

// Lookup returns the sorted locations of k. If k occurs more than MaxHits
// times, Lookup returns popular=true and no locations.
func (idx *Index) Lookup(k Kmer) (locs []align.GenomeLocation, popular bool) {
	locs, ok := idx.shards[indexShard(k)][k]
	if ok && locs == nil {
		return nil, true
	}
	return locs, false
}
