package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/traverse"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/barcode"
	"github.com/grailbio/linkedread/encoding/fastq"
	"github.com/grailbio/linkedread/genome"
	"github.com/grailbio/linkedread/platform"
	"github.com/grailbio/linkedread/seedaligner"
	"github.com/klauspost/compress/gzip"
)

// Number of clusters buffered per worker.
const workerQueueLen = 16

type clusterReq struct {
	seq   int
	pairs []align.ReadPair
}

type clusterRes struct {
	pairs   []align.ReadPair
	results []align.PairedResult
	// Number of secondary alignments, per pair and mate.
	nSecondary [][align.NumReadsPerPair]int
}

// worker aligns the clusters assigned to it. Each worker owns a cluster
// aligner along with its trackers and edit-distance cache.
type worker struct {
	ca         *align.ClusterAligner
	params     align.Params
	maxRetries int
}

func newWorker(idx *genome.Index, f *alignFlags) (*worker, error) {
	policy, err := align.NewLocusPolicy(f.locusPolicy, f.align)
	if err != nil {
		return nil, err
	}
	trackers := align.NewProgressTrackers(f.align, func() align.PairPhaser {
		return seedaligner.New(idx, f.seed)
	})
	ca := align.NewClusterAligner(f.align, trackers, seedaligner.New(idx, f.seed), nil)
	ca.SetLocusPolicy(policy)
	if f.trace {
		ca.SetTracer(align.VlogTracer{})
	}
	return &worker{ca: ca, params: f.params, maxRetries: f.maxRetries}, nil
}

func (w *worker) align(req clusterReq) (clusterRes, error) {
	trackers := w.ca.Trackers()[:len(req.pairs)]
	for _, t := range trackers {
		t.Reset()
	}
	if _, err := w.ca.AlignUntilComplete(req.pairs, w.params, w.maxRetries); err != nil {
		return clusterRes{}, err
	}
	res := clusterRes{
		pairs:      req.pairs,
		results:    make([]align.PairedResult, len(req.pairs)),
		nSecondary: make([][align.NumReadsPerPair]int, len(req.pairs)),
	}
	for i, t := range trackers {
		res.results[i] = t.Result
		for mate := 0; mate < align.NumReadsPerPair; mate++ {
			if t.Result.AlignedAsPair {
				res.nSecondary[i][mate] = t.NumSecondary
			} else {
				res.nSecondary[i][mate] = t.NumSingleSecondary[mate]
			}
		}
	}
	return res, nil
}

// workerFor picks the worker for a cluster. Clusters of one barcode always
// go to the same worker.
func workerFor(bc string, seq, nWorkers int) int {
	if bc == "" {
		return seq % nWorkers
	}
	return int(seahash.Sum64(gunsafe.StringToBytes(bc)) % uint64(nWorkers))
}

// input is a FASTQ file, decompressed if its name ends in ".gz".
type input struct {
	f  file.File
	gz *gzip.Reader
	r  io.Reader
}

func openInput(ctx context.Context, path string) (*input, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	in := &input{f: f, r: f.Reader(ctx)}
	if strings.HasSuffix(path, ".gz") {
		if in.gz, err = gzip.NewReader(in.r); err != nil {
			f.Close(ctx) // nolint: errcheck
			return nil, errors.E(err, "open", path)
		}
		in.r = in.gz
	}
	if size, err := platform.QueryFileSize(ctx, path); err == nil {
		log.Printf("%s: %d bytes", path, size)
	}
	return in, nil
}

func (in *input) close(ctx context.Context) error {
	e := errors.Once{}
	if in.gz != nil {
		e.Set(in.gz.Close())
	}
	e.Set(in.f.Close(ctx))
	return e.Err()
}

func loadCorrector(ctx context.Context, path string, maxEdits int) (*barcode.Corrector, error) {
	in, err := openInput(ctx, path)
	if err != nil {
		return nil, err
	}
	c, err := barcode.NewCorrector(in.r, maxEdits)
	if err2 := in.close(ctx); err == nil {
		err = err2
	}
	if err != nil {
		return nil, err
	}
	log.Printf("%s: %d whitelisted barcodes", path, c.Len())
	return c, nil
}

// run aligns the clusters read from f.r1 and f.r2 and writes the results in
// input order.
func run(ctx context.Context, f alignFlags) (align.Stats, error) {
	if f.parallelism <= 0 {
		f.parallelism = platform.NumProcessors()
	}
	if f.cluster.MaxClusterSize <= 0 {
		f.cluster.MaxClusterSize = fastq.DefaultClusterOpts.MaxClusterSize
	}
	f.align.MaxBarcodeSize = f.cluster.MaxClusterSize

	g, err := genome.Load(ctx, f.referencePath)
	if err != nil {
		return align.Stats{}, err
	}
	idx := genome.NewIndex(g, f.index)
	if f.whitelistPath != "" {
		if f.cluster.Corrector, err = loadCorrector(ctx, f.whitelistPath, f.maxBCEdits); err != nil {
			return align.Stats{}, err
		}
	}
	workers := make([]*worker, f.parallelism)
	for i := range workers {
		if workers[i], err = newWorker(idx, &f); err != nil {
			return align.Stats{}, err
		}
	}
	log.Printf("%d workers, %d bytes reserved per worker", len(workers), align.Reservation(f.align))

	e := errors.Once{}
	r1, err := openInput(ctx, f.r1)
	if err != nil {
		return align.Stats{}, err
	}
	r2, err := openInput(ctx, f.r2)
	if err != nil {
		r1.close(ctx) // nolint: errcheck
		return align.Stats{}, err
	}
	out, err := newOutput(ctx, f.outputPath, f.unalignedPrefix, g)
	if err != nil {
		r1.close(ctx) // nolint: errcheck
		r2.close(ctx) // nolint: errcheck
		return align.Stats{}, err
	}

	var (
		queue     = syncqueue.NewOrderedQueue(f.parallelism * workerQueueLen)
		reqChs    = make([]chan clusterReq, f.parallelism)
		failed    platform.Counter32
		processed platform.Counter64
		mu        sync.Mutex
		stats     align.Stats
	)
	for i := range reqChs {
		reqChs[i] = make(chan clusterReq, workerQueueLen)
	}

	scanner := fastq.NewClusterScanner(fastq.NewPairScanner(r1.r, r2.r), f.cluster)
	go func() {
		defer func() {
			for _, ch := range reqChs {
				close(ch)
			}
		}()
		for seq := 0; scanner.Scan(); seq++ {
			if failed.Load() != 0 {
				return
			}
			pairs := scanner.Cluster()
			reqChs[workerFor(pairs[0].Barcode, seq, len(reqChs))] <- clusterReq{seq: seq, pairs: pairs}
		}
		if err := scanner.Err(); err != nil {
			e.Set(err)
			failed.Increment()
			queue.Close(err) // nolint: errcheck
		}
	}()

	done := platform.NewSingleWaiter()
	start := platform.StartThread
	if f.cpuAffinity {
		// The writer takes the processor after the workers'.
		start = func(fn func()) { platform.StartBoundThread(len(workers), fn) }
	}
	start(func() {
		defer done.Signal()
		for {
			v, ok, err := queue.Next()
			if err != nil {
				e.Set(err)
				return
			}
			if !ok {
				return
			}
			res := v.(clusterRes)
			if err := out.write(&res); err != nil {
				e.Set(err)
				failed.Increment()
				queue.Close(err) // nolint: errcheck
				return
			}
		}
	})

	err = traverse.Each(len(workers), func(i int) error {
		if f.cpuAffinity {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			if err := platform.BindThreadToProcessor(i); err != nil {
				log.Error.Printf("worker %d: %v", i, err)
			}
		}
		w := workers[i]
		var err error
		// After an error the channel is still drained, so that the reader
		// never blocks.
		for req := range reqChs[i] {
			if err != nil {
				continue
			}
			var res clusterRes
			if res, err = w.align(req); err == nil {
				err = queue.Insert(req.seq, res)
			}
			if err != nil {
				failed.Increment()
				queue.Close(err) // nolint: errcheck
				continue
			}
			if n := processed.Increment(); n%100000 == 0 {
				log.Printf("%d clusters aligned", n)
			}
		}
		mu.Lock()
		stats = stats.Merge(w.ca.Stats())
		mu.Unlock()
		return err
	})
	e.Set(err)
	// Failures have already closed the queue.
	if failed.Load() == 0 {
		e.Set(queue.Close(nil))
	}
	e.Set(done.Wait(ctx))
	e.Set(out.close())
	e.Set(r1.close(ctx))
	e.Set(r2.close(ctx))
	cs := scanner.Stats()
	log.Printf("Clusters: %s", clusterStatsString(cs))
	return stats, e.Err()
}

func clusterStatsString(s fastq.ClusterStats) string {
	return fmt.Sprintf("pairs: %d, clusters: %d, splits: %d, no barcode: %d, uncorrectable: %d, corrected: %d, sampled out: %d",
		s.Pairs, s.Clusters, s.Splits, s.NoBarcode, s.Uncorrectable, s.Corrected, s.SampledOut)
}
