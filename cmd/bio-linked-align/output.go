package main

import (
	"bufio"
	"context"
	"hash"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/encoding/fastq"
	"github.com/grailbio/linkedread/genome"
	"github.com/grailbio/linkedread/platform"
	"github.com/minio/highwayhash"
)

// Key of the output checksum.
var checksumKey [32]byte

var header = []string{"#name", "mate", "barcode", "contig", "pos", "strand", "mapq", "score", "status", "paired", "joint", "secondary"}

// output writes alignment rows, one per mate, to a TSV file. Pairs with
// neither mate aligned are optionally also written as FASTQ.
type output struct {
	g    *genome.Genome
	f    *platform.LargeFile
	buf  *bufio.Writer
	w    *tsv.Writer
	hash hash.Hash64
	rows int64

	unaligned    [align.NumReadsPerPair]*platform.LargeFile
	unalignedBuf [align.NumReadsPerPair]*bufio.Writer
	fq           [align.NumReadsPerPair]*fastq.Writer
	nUnaligned   int
}

func newOutput(ctx context.Context, path, unalignedPrefix string, g *genome.Genome) (*output, error) {
	h, err := highwayhash.New64(checksumKey[:])
	if err != nil {
		return nil, err
	}
	f, err := platform.OpenLargeFile(ctx, path, 'w')
	if err != nil {
		return nil, err
	}
	o := &output{g: g, f: f, buf: bufio.NewWriterSize(f, 1<<20), hash: h}
	o.w = tsv.NewWriter(io.MultiWriter(o.buf, h))
	if unalignedPrefix != "" {
		for mate := range o.unaligned {
			p := unalignedPrefix + []string{"_R1.fastq", "_R2.fastq"}[mate]
			if o.unaligned[mate], err = platform.OpenLargeFile(ctx, p, 'w'); err != nil {
				o.close() // nolint: errcheck
				return nil, err
			}
			o.unalignedBuf[mate] = bufio.NewWriterSize(o.unaligned[mate], 1<<20)
			o.fq[mate] = fastq.NewWriter(o.unalignedBuf[mate])
		}
	}
	for _, col := range header {
		o.w.WriteString(col)
	}
	if err := o.w.EndLine(); err != nil {
		o.close() // nolint: errcheck
		return nil, err
	}
	return o, nil
}

// readName returns the first word of a read name.
func readName(name string) string {
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		return name[:i]
	}
	return name
}

func boolField(v bool) byte {
	if v {
		return 'Y'
	}
	return 'N'
}

func (o *output) write(res *clusterRes) error {
	for i := range res.pairs {
		pair := &res.pairs[i]
		r := &res.results[i]
		for mate := 0; mate < align.NumReadsPerPair; mate++ {
			bc := pair.Barcode
			if bc == "" {
				bc = "*"
			}
			contig, pos := "*", 0
			if r.Status[mate].Found() {
				if c, off, ok := o.g.Contig(r.Location[mate]); ok {
					contig, pos = c.Name, off+1
				}
			}
			o.w.WriteString(readName(pair.Reads[mate].Name))
			o.w.WriteUint32(uint32(mate + 1))
			o.w.WriteString(bc)
			o.w.WriteString(contig)
			o.w.WriteInt64(int64(pos))
			o.w.WriteString(r.Direction[mate].String())
			o.w.WriteInt64(int64(r.MAPQ[mate]))
			o.w.WriteInt64(int64(r.Score[mate]))
			o.w.WriteString(r.Status[mate].String())
			o.w.WriteByte(boolField(r.AlignedAsPair))
			o.w.WriteByte(boolField(r.FromJointSearch))
			o.w.WriteInt64(int64(res.nSecondary[i][mate]))
			if err := o.w.EndLine(); err != nil {
				return err
			}
			o.rows++
		}
		if o.fq[0] != nil && !r.Status[0].Found() && !r.Status[1].Found() {
			if err := fastq.WritePair(o.fq[0], o.fq[1], pair); err != nil {
				return err
			}
			o.nUnaligned++
		}
	}
	return nil
}

func (o *output) close() error {
	e := errors.Once{}
	if o.w != nil {
		e.Set(o.w.Flush())
		e.Set(o.buf.Flush())
		log.Printf("%s: %d rows, checksum %016x", o.f.Name(), o.rows, o.hash.Sum64())
	}
	e.Set(o.f.Close())
	for mate, f := range o.unaligned {
		if f == nil {
			continue
		}
		e.Set(o.unalignedBuf[mate].Flush())
		e.Set(f.Close())
	}
	if o.fq[0] != nil {
		log.Printf("%d unaligned pairs", o.nUnaligned)
	}
	return e.Err()
}
