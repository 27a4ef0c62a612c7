package genome

import (
	"io/ioutil"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const testFASTA = `>chr1 test contig
ACGTACGTAAAACCCCGGGGTTTT
acgt
>chr2
NNNNGATTACA
`

func TestFromFASTA(t *testing.T) {
	g, err := FromFASTA(strings.NewReader(testFASTA))
	assert.NoError(t, err)
	expect.EQ(t, g.Contigs(), []Contig{
		{Name: "chr1", Start: 128, Len: 28},
		{Name: "chr2", Start: 284, Len: 11},
	})
	expect.EQ(t, g.Len(), 423)

	for _, test := range []struct {
		loc    align.GenomeLocation
		name   string
		offset int
		ok     bool
	}{
		{0, "", 0, false},
		{128, "chr1", 0, true},
		{155, "chr1", 27, true},
		{156, "", 0, false},
		{288, "chr2", 4, true},
		{294, "chr2", 10, true},
		{295, "", 0, false},
		{1000, "", 0, false},
	} {
		c, offset, ok := g.Contig(test.loc)
		expect.EQ(t, ok, test.ok, "loc %d", test.loc)
		expect.EQ(t, c.Name, test.name, "loc %d", test.loc)
		expect.EQ(t, offset, test.offset, "loc %d", test.loc)
	}

	expect.EQ(t, string(g.Substring(128, 4)), "ACGT")
	expect.EQ(t, string(g.Substring(152, 4)), "ACGT")
	expect.EQ(t, string(g.Substring(420, 10)), "NNN")
	expect.EQ(t, len(g.Substring(423, 1)), 0)
}

func TestFromFASTAErrors(t *testing.T) {
	for _, data := range []string{
		"",
		"ACGT\n",
		">a\n>b\nAC\n",
		">a\nAC\n>b\n",
		"> x\nAC\n",
	} {
		_, err := FromFASTA(strings.NewReader(data))
		expect.NotNil(t, err, "data: %q", data)
	}
}

func TestLoad(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	path := filepath.Join(tmpdir, "ref.fa")
	assert.NoError(t, ioutil.WriteFile(path, []byte(testFASTA), 0644))

	g, err := Load(vcontext.Background(), path)
	assert.NoError(t, err)
	expect.EQ(t, len(g.Contigs()), 2)
	expect.EQ(t, string(g.Substring(284, 11)), "NNNNGATTACA")

	_, err = Load(vcontext.Background(), filepath.Join(tmpdir, "missing.fa"))
	expect.NotNil(t, err)
}

func TestKmer(t *testing.T) {
	expect.EQ(t, NewKmer([]byte("ACGT")), Kmer(27))
	expect.EQ(t, NewKmer([]byte("acgt")), Kmer(27))
	expect.EQ(t, NewKmer([]byte("ACNT")), InvalidKmer)

	var rc []byte
	ReverseComplement(&rc, []byte("AACGTn"))
	expect.EQ(t, string(rc), "NACGTT")
	ReverseComplement(&rc, []byte("GA"))
	expect.EQ(t, string(rc), "TC")
}

func scanAll(k *Kmerizer, seq string) ([]int, []Kmer) {
	var pos []int
	var kmers []Kmer
	k.Reset([]byte(seq))
	for k.Scan() {
		pos = append(pos, k.Get().Pos)
		kmers = append(kmers, k.Get().Kmer)
	}
	return pos, kmers
}

func TestKmerizer(t *testing.T) {
	pos, kmers := scanAll(NewKmerizer(4, 1), "ACGTNACGTA")
	expect.EQ(t, pos, []int{0, 5, 6})
	expect.EQ(t, kmers, []Kmer{NewKmer([]byte("ACGT")), NewKmer([]byte("ACGT")), NewKmer([]byte("CGTA"))})

	pos, _ = scanAll(NewKmerizer(4, 4), "ACGTACGTAC")
	expect.EQ(t, pos, []int{0, 4})

	pos, _ = scanAll(NewKmerizer(4, 1), "ACG")
	expect.EQ(t, len(pos), 0)

	r := rand.New(rand.NewSource(0))
	seq := make([]byte, 500)
	for i := range seq {
		seq[i] = "ACGTN"[r.Intn(5)]
		if i%7 != 0 && seq[i] == 'N' {
			seq[i] = 'A'
		}
	}
	for _, length := range []int{1, 5, 17, 32} {
		pos, kmers = scanAll(NewKmerizer(length, 1), string(seq))
		n := 0
		for i := 0; i+length <= len(seq); i++ {
			km := NewKmer(seq[i : i+length])
			if km == InvalidKmer {
				continue
			}
			assert.True(t, n < len(pos))
			expect.EQ(t, pos[n], i)
			expect.EQ(t, kmers[n], km)
			n++
		}
		expect.EQ(t, n, len(pos))
	}
}

func TestIndex(t *testing.T) {
	g, err := FromFASTA(strings.NewReader(testFASTA))
	assert.NoError(t, err)

	idx := NewIndex(g, IndexOpts{KmerLength: 4, MaxHits: 10})
	expect.EQ(t, idx.KmerLength(), 4)
	locs, popular := idx.Lookup(NewKmer([]byte("ACGT")))
	expect.False(t, popular)
	expect.EQ(t, locs, []align.GenomeLocation{128, 132, 152})
	locs, _ = idx.Lookup(NewKmer([]byte("GATT")))
	expect.EQ(t, locs, []align.GenomeLocation{288})
	locs, _ = idx.Lookup(NewKmer([]byte("TTTT")))
	expect.EQ(t, locs, []align.GenomeLocation{148})
	locs, popular = idx.Lookup(NewKmer([]byte("CATG")))
	expect.False(t, popular)
	expect.EQ(t, len(locs), 0)

	idx = NewIndex(g, IndexOpts{KmerLength: 4, MaxHits: 2})
	locs, popular = idx.Lookup(NewKmer([]byte("ACGT")))
	expect.True(t, popular)
	expect.EQ(t, len(locs), 0)
	locs, popular = idx.Lookup(NewKmer([]byte("GATT")))
	expect.False(t, popular)
	expect.EQ(t, locs, []align.GenomeLocation{288})
}
