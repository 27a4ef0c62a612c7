// Package genome holds a reference genome in one flat coordinate space, and
// the k-mer seed index the seed aligner looks reads up in.
//
// Contigs are laid end to end in the order of the FASTA file, separated by
// runs of 'N' so that no k-mer and no alignment spans two contigs.
package genome

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sort"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/platform"
	"github.com/pkg/errors"
)

const (
	// ContigPadding is the number of 'N' bases before each contig.
	ContigPadding = 128

	maxLineSize = 300 * 1024 * 1024
)

// Contig is one named sequence of the genome.
type Contig struct {
	Name string
	// Start is the flat location of the contig's first base.
	Start align.GenomeLocation
	// Len is the number of bases.
	Len int
}

// End returns the location one past the contig's last base.
func (c Contig) End() align.GenomeLocation { return c.Start + align.GenomeLocation(c.Len) }

// Genome is an in-memory reference. It is immutable and safe for concurrent
// use once created.
type Genome struct {
	bases   []byte
	contigs []Contig
}

// FromFASTA reads a FASTA file. Sequence names are the text between '>' and
// the first space. Bases are stored in upper case.
func FromFASTA(r io.Reader) (*Genome, error) {
	g := &Genome{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	cur := -1
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			name := strings.Split(string(line[1:]), " ")[0]
			if name == "" {
				return nil, errors.Errorf("malformed FASTA header: %q", line)
			}
			if cur >= 0 && g.contigs[cur].Len == 0 {
				return nil, errors.Errorf("empty FASTA sequence: %s", g.contigs[cur].Name)
			}
			g.pad()
			g.contigs = append(g.contigs, Contig{Name: name, Start: align.GenomeLocation(len(g.bases))})
			cur++
			continue
		}
		if cur < 0 {
			return nil, errors.Errorf("malformed FASTA file: sequence before first header")
		}
		g.bases = append(g.bases, bytes.ToUpper(line)...)
		g.contigs[cur].Len += len(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	if cur < 0 {
		return nil, errors.Errorf("empty FASTA file")
	}
	if g.contigs[cur].Len == 0 {
		return nil, errors.Errorf("empty FASTA sequence: %s", g.contigs[cur].Name)
	}
	g.pad()
	return g, nil
}

func (g *Genome) pad() {
	for i := 0; i < ContigPadding; i++ {
		g.bases = append(g.bases, 'N')
	}
}

// Load reads the FASTA file at path. Local files are memory mapped while they
// are parsed; other paths are read through grailbio/base/file.
func Load(ctx context.Context, path string) (*Genome, error) {
	if !strings.Contains(path, "://") {
		m, err := platform.OpenMappedFile(path)
		if err != nil {
			return nil, err
		}
		g, err := FromFASTA(bytes.NewReader(m.Bytes()))
		if cerr := m.Close(); err == nil {
			err = cerr
		}
		return g, err
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	g, err := FromFASTA(in.Reader(ctx))
	if cerr := in.Close(ctx); err == nil {
		err = cerr
	}
	return g, err
}

// Len returns the size of the flat coordinate space.
func (g *Genome) Len() int { return len(g.bases) }

// Contigs returns the contigs in file order.
func (g *Genome) Contigs() []Contig { return g.contigs }

// Contig returns the contig containing loc and the offset of loc within it.
// It returns false if loc falls in padding or outside the genome.
func (g *Genome) Contig(loc align.GenomeLocation) (Contig, int, bool) {
	i := sort.Search(len(g.contigs), func(i int) bool { return g.contigs[i].End() > loc })
	if i == len(g.contigs) || loc < g.contigs[i].Start {
		return Contig{}, 0, false
	}
	return g.contigs[i], int(loc - g.contigs[i].Start), true
}

// Substring returns up to n bases starting at loc, clipped at the end of the
// genome. The result aliases the genome and must not be modified.
func (g *Genome) Substring(loc align.GenomeLocation, n int) []byte {
	if loc >= align.GenomeLocation(len(g.bases)) {
		return nil
	}
	end := int(loc) + n
	if end > len(g.bases) {
		end = len(g.bases)
	}
	return g.bases[loc:end]
}
