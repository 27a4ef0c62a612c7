package main

// bio-linked-align aligns linked-read (barcoded) paired-end FASTQ files
// against a reference. Reads are grouped into barcode clusters, and each
// cluster is aligned jointly so that pairs sharing a barcode can steer each
// other toward the molecule they came from.
//
// Example:
//
//    bio-linked-align -reference=ref.fa -r1=r1.fastq.gz -r2=r2.fastq.gz \
//      -whitelist=4M-with-alts.txt -output=aligned.tsv

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/encoding/fastq"
	"github.com/grailbio/linkedread/genome"
	"github.com/grailbio/linkedread/platform"
	"github.com/grailbio/linkedread/seedaligner"
)

type memStats struct {
	mu sync.Mutex
	// Peak values of the corresponding runtime.MemStats fields.
	alloc   uint64
	sys     uint64
	heapSys uint64
}

func (m *memStats) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("Alloc: %v, Sys: %v, HeapSys: %v", m.alloc, m.sys, m.heapSys)
}

func (m *memStats) update() {
	var s runtime.MemStats
	runtime.ReadMemStats(&s)
	m.mu.Lock()
	if m.alloc < s.Alloc {
		m.alloc = s.Alloc
	}
	if m.sys < s.Sys {
		m.sys = s.Sys
	}
	if m.heapSys < s.HeapSys {
		m.heapSys = s.HeapSys
	}
	m.mu.Unlock()
}

// Collection of options set via cmdline flags.
type alignFlags struct {
	referencePath   string
	r1, r2          string
	outputPath      string
	whitelistPath   string
	unalignedPrefix string
	parallelism     int
	cpuAffinity     bool
	maxRetries      int
	locusPolicy     string
	trace           bool
	maxBCEdits      int

	align   align.Opts
	params  align.Params
	seed    seedaligner.Opts
	index   genome.IndexOpts
	cluster fastq.ClusterOpts
}

func usage() {
	fmt.Fprintln(os.Stderr, `
bio-linked-align aligns barcoded read pairs, one barcode cluster at a time.

Usage:
  bio-linked-align -reference=ref.fa -r1=r1.fastq[.gz] -r2=r2.fastq[.gz] [flags]

The output is a TSV file with one row per mate.

Flags:`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	f := alignFlags{
		align:   align.DefaultOpts,
		seed:    seedaligner.DefaultOpts,
		index:   genome.DefaultIndexOpts,
		cluster: fastq.DefaultClusterOpts,
	}
	flag.StringVar(&f.referencePath, "reference", "", "Reference FASTA file.")
	flag.StringVar(&f.r1, "r1", "", "FASTQ file containing R1 reads. Files ending in .gz are decompressed.")
	flag.StringVar(&f.r2, "r2", "", "FASTQ file containing R2 reads.")
	flag.StringVar(&f.outputPath, "output", "./aligned.tsv", "TSV file to store the alignments.")
	flag.StringVar(&f.whitelistPath, "whitelist", "", "If set, barcodes are corrected against the barcodes listed in this file.")
	flag.StringVar(&f.unalignedPrefix, "unaligned-output", "", `If set, pairs with neither mate aligned are written to
<prefix>_R1.fastq and <prefix>_R2.fastq.`)
	flag.IntVar(&f.parallelism, "parallelism", platform.NumProcessors(), "Number of alignment workers.")
	flag.BoolVar(&f.cpuAffinity, "cpu-affinity", false, "Pin each worker to one processor.")
	flag.IntVar(&f.maxRetries, "max-retries", 16, "Max number of buffer growths per cluster.")
	flag.StringVar(&f.locusPolicy, "locus-policy", "none", `Cluster target locus policy: "none", "median" or "densest".`)
	flag.BoolVar(&f.trace, "trace", false, "Log alignment stages at -v=1 and above.")

	flag.IntVar(&f.align.MinReadLength, "min-read-length", align.DefaultOpts.MinReadLength, "Reads shorter than this are not aligned.")
	flag.BoolVar(&f.align.ForceSpacing, "force-spacing", align.DefaultOpts.ForceSpacing, "Never align the mates of a pair independently.")
	flag.IntVar(&f.align.MinPairsPerCluster, "min-pairs-per-cluster", align.DefaultOpts.MinPairsPerCluster,
		"Min number of pairs near a locus for the densest locus policy to target it.")
	flag.Uint64Var(&f.align.MaxClusterSpan, "max-cluster-span", align.DefaultOpts.MaxClusterSpan,
		"Window size of the densest locus policy.")
	flag.IntVar(&f.params.MaxEditDistanceForSecondary, "secondary-edit-distance", 2,
		"Report secondary alignments within this many edits of the best.")
	flag.IntVar(&f.params.MaxSecondaryToReturn, "max-secondary", 8, "Max number of secondary alignments per pair.")
	flag.IntVar(&f.seed.MinSpacing, "min-spacing", seedaligner.DefaultOpts.MinSpacing, "Min distance between mates of a pair.")
	flag.IntVar(&f.seed.MaxSpacing, "max-spacing", seedaligner.DefaultOpts.MaxSpacing, "Max distance between mates of a pair.")
	flag.IntVar(&f.seed.MaxK, "max-k", seedaligner.DefaultOpts.MaxK, "Max edit distance of an alignment.")
	flag.IntVar(&f.index.KmerLength, "seed-length", genome.DefaultIndexOpts.KmerLength, "Seed length.")
	flag.IntVar(&f.index.MaxHits, "max-hits", genome.DefaultIndexOpts.MaxHits, "Seeds with more hits than this are skipped.")
	flag.IntVar(&f.cluster.MaxClusterSize, "max-cluster-size", fastq.DefaultClusterOpts.MaxClusterSize,
		"Max number of pairs aligned together. Larger barcode groups are split.")
	flag.IntVar(&f.cluster.BarcodeLength, "barcode-in-read", 0,
		"If positive, the barcode is this many bases at the start of R1. Otherwise it is parsed from the read name.")
	flag.IntVar(&f.cluster.BarcodeTrim, "barcode-trim", 7, "Bases discarded after an in-read barcode.")
	flag.Float64Var(&f.cluster.SampleRate, "sample-rate", 1, "Fraction of barcode clusters to align.")
	flag.IntVar(&f.maxBCEdits, "barcode-edits", 1, "Max Hamming distance of a barcode correction.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()
	var memStats memStats
	go func() {
		for {
			time.Sleep(500 * time.Millisecond)
			memStats.update()
		}
	}()

	if f.referencePath == "" || f.r1 == "" || f.r2 == "" {
		log.Fatal("-reference, -r1 and -r2 are required")
	}
	start := platform.TimeInMillis()
	stats, err := run(ctx, f)
	if err != nil {
		log.Fatal(err)
	}
	memStats.update()
	log.Printf("Stats: %v", stats)
	log.Printf("MemStats: %s", memStats.String())
	log.Printf("All done in %v", time.Duration(platform.TimeInMillis()-start)*time.Millisecond)
}
