package fastq

import (
	"math/rand"

	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/barcode"
)

// ClusterOpts configures a ClusterScanner.
type ClusterOpts struct {
	// MaxClusterSize is the largest cluster returned. Longer runs of one
	// barcode are split.
	MaxClusterSize int
	// Corrector, if set, snaps barcodes to its whitelist. Barcodes that
	// cannot be corrected are dropped.
	Corrector *barcode.Corrector
	// BarcodeLength, if positive, means the barcode is the first
	// BarcodeLength bases of mate 0, followed by BarcodeTrim bases to
	// discard. Otherwise the barcode is parsed from the name of mate 0.
	BarcodeLength int
	BarcodeTrim   int
	// SampleRate is the probability of keeping a cluster. Clusters are
	// kept or dropped whole.
	SampleRate float64
}

// DefaultClusterOpts sets the default values of ClusterOpts.
var DefaultClusterOpts = ClusterOpts{
	MaxClusterSize: 1024,
	SampleRate:     1,
}

// ClusterStats counts what a ClusterScanner read.
type ClusterStats struct {
	// Pairs and Clusters count what Scan returned.
	Pairs    int
	Clusters int
	// Splits counts clusters cut at MaxClusterSize.
	Splits int
	// NoBarcode counts pairs without a barcode, and Uncorrectable the pairs
	// whose barcode was dropped by the corrector. Each such pair is a cluster
	// of its own.
	NoBarcode     int
	Uncorrectable int
	// Corrected counts pairs whose barcode was changed by the corrector.
	Corrected int
	// SampledOut counts pairs dropped by sampling.
	SampledOut int
}

// ClusterScanner groups consecutive read pairs with the same barcode into
// clusters. Input sorted or grouped by barcode yields one cluster per
// barcode, up to MaxClusterSize pairs.
type ClusterScanner struct {
	ps     *PairScanner
	opts   ClusterOpts
	random *rand.Rand

	cluster []align.ReadPair
	next    align.ReadPair
	hasNext bool

	// The last barcode read and its correction.
	lastRaw, lastBarcode string

	stats ClusterStats
}

// NewClusterScanner creates a ClusterScanner that reads pairs from ps.
func NewClusterScanner(ps *PairScanner, opts ClusterOpts) *ClusterScanner {
	if opts.MaxClusterSize <= 0 {
		opts.MaxClusterSize = DefaultClusterOpts.MaxClusterSize
	}
	return &ClusterScanner{
		ps:     ps,
		opts:   opts,
		random: rand.New(rand.NewSource(0)),
	}
}

// Scan reads the next cluster. It returns false at the end of the input or on
// error; the caller should check Err afterwards.
func (c *ClusterScanner) Scan() bool {
	for c.fill() {
		if c.opts.SampleRate < 1 && c.random.Float64() >= c.opts.SampleRate {
			c.stats.SampledOut += len(c.cluster)
			continue
		}
		c.stats.Clusters++
		c.stats.Pairs += len(c.cluster)
		return true
	}
	return false
}

// Cluster returns the cluster read by the last Scan. Each cluster is a new
// slice, so it may be retained after the next Scan.
func (c *ClusterScanner) Cluster() []align.ReadPair { return c.cluster }

// Stats returns the counters accumulated so far.
func (c *ClusterScanner) Stats() ClusterStats { return c.stats }

// Err returns the scanning error, if any.
func (c *ClusterScanner) Err() error { return c.ps.Err() }

func (c *ClusterScanner) fill() bool {
	c.cluster = nil
	if !c.hasNext && !c.readPair(&c.next) {
		return false
	}
	c.hasNext = false
	c.cluster = append(c.cluster, c.next)
	bc := c.next.Barcode
	if bc == "" {
		return true
	}
	for c.readPair(&c.next) {
		if c.next.Barcode == bc && len(c.cluster) < c.opts.MaxClusterSize {
			c.cluster = append(c.cluster, c.next)
			continue
		}
		if c.next.Barcode == bc {
			c.stats.Splits++
		}
		c.hasNext = true
		break
	}
	return true
}

// readPair reads the next pair and sets its barcode.
func (c *ClusterScanner) readPair(p *align.ReadPair) bool {
	if !c.ps.Scan(p) {
		return false
	}
	var (
		raw, downstream string
		ok              bool
	)
	if c.opts.BarcodeLength > 0 {
		r := p.Reads[0]
		if n := c.opts.BarcodeLength + c.opts.BarcodeTrim; len(r.Seq) >= n {
			downstream = string(r.Seq[c.opts.BarcodeLength:n])
		}
		raw, r.Seq, r.Qual, ok = barcode.FromSequence(r.Seq, r.Qual, c.opts.BarcodeLength, c.opts.BarcodeTrim)
	} else {
		raw, ok = barcode.Parse(p.Reads[0].Name)
	}
	if !ok {
		c.stats.NoBarcode++
		return true
	}
	if c.opts.Corrector == nil {
		p.Barcode = raw
		return true
	}
	// Runs of one barcode are corrected once, unless the correction depends
	// on the bases that follow an in-read barcode.
	if raw != c.lastRaw || c.lastRaw == "" || downstream != "" {
		c.lastRaw = raw
		corrected, edits, ok := c.opts.Corrector.CorrectWithDownstream(raw, downstream)
		switch {
		case edits < 0:
			c.lastBarcode = ""
		case ok:
			c.lastBarcode = corrected
		default:
			c.lastBarcode = raw
		}
	}
	switch {
	case c.lastBarcode == "":
		c.stats.Uncorrectable++
	case c.lastBarcode != raw:
		c.stats.Corrected++
	}
	p.Barcode = c.lastBarcode
	return true
}
