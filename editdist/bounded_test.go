package editdist

import (
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		text, pattern string
		k             int
		want          int
	}{
		{"ACGT", "ACGT", 0, 0},
		{"ACGTTTTT", "ACGT", 0, 0},
		{"ACGA", "ACGT", 1, 1},
		{"ACGA", "ACGT", 0, -1},
		{"ACGTAAAA", "ACGGT", 1, 1},
		{"ACGTAAAA", "ACT", 1, 1},
		{"TTTTTTTT", "ACGT", 2, -1},
		{"TTTTTTTT", "ACGT", 4, 3},
		{"ACGT", "", 3, 0},
		{"AC", "ACGTACGT", 2, -1},
		{"ACGTACGTAC", "ACGTACGTACGT", 2, 2},
	}
	for _, test := range tests {
		expect.EQ(t, Distance([]byte(test.text), []byte(test.pattern), test.k), test.want,
			"text %s pattern %s k %d", test.text, test.pattern, test.k)
	}
	assert.Equal(t, -1, Distance([]byte("ACGT"), []byte("ACGT"), -1))
}

// fullDistance fills the whole matrix; it is the reference for Distance.
func fullDistance(text, pattern []byte, k int) int {
	m, n := len(pattern), len(text)
	prev := make([]int, n+1)
	cur := make([]int, n+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		cur[0] = i
		for j := 1; j <= n; j++ {
			v := prev[j-1]
			if pattern[i-1] != text[j-1] {
				v++
			}
			if prev[j]+1 < v {
				v = prev[j] + 1
			}
			if cur[j-1]+1 < v {
				v = cur[j-1] + 1
			}
			cur[j] = v
		}
		prev, cur = cur, prev
	}
	best := prev[0]
	for _, v := range prev {
		if v < best {
			best = v
		}
	}
	if best > k {
		return -1
	}
	return best
}

func randBases(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return b
}

func TestDistanceReusedRows(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	c := NewCache(1 << 12)
	for iter := 0; iter < 2000; iter++ {
		pattern := randBases(r, r.Intn(30))
		text := append([]byte(nil), pattern...)
		// A few random edits, then random trailing bases.
		for e := r.Intn(5); e > 0 && len(text) > 0; e-- {
			text[r.Intn(len(text))] = "ACGT"[r.Intn(4)]
		}
		if r.Intn(2) == 0 && len(text) > 0 {
			text = text[1:]
		}
		text = append(text, randBases(r, r.Intn(10))...)
		k := r.Intn(6)
		want := fullDistance(text, pattern, k)
		expect.EQ(t, Distance(text, pattern, k), want, "text %s pattern %s k %d", text, pattern, k)
		expect.EQ(t, c.Distance(text, pattern, k), want, "text %s pattern %s k %d", text, pattern, k)
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	text := []byte("ACGTACGTAAAAAAAAAAAA")
	expect.EQ(t, c.Distance(text, []byte("ACGTACGT"), 2), 0)
	expect.EQ(t, c.Distance(text, []byte("ACGTACGT"), 2), 0)
	expect.EQ(t, c.Calls(), int64(2))
	expect.EQ(t, c.Hits(), int64(1))
	expect.EQ(t, c.Len(), 1)

	// Text beyond len(pattern)+k cannot change the answer, so it must not
	// defeat the cache.
	expect.EQ(t, c.Distance([]byte("ACGTACGTAACCCCCCCCCC"), []byte("ACGTACGT"), 2), 0)
	expect.EQ(t, c.Hits(), int64(2))
	expect.EQ(t, c.Len(), 1)

	expect.EQ(t, c.Distance(text, []byte("ACGAACGT"), 2), 1)
	expect.EQ(t, c.Len(), 2)
	expect.EQ(t, c.Distance(text, []byte("TCGAACGT"), 2), 2)
	expect.EQ(t, c.Len(), 1) // cleared when full
	c.Reset()
	expect.EQ(t, c.Len(), 0)
	expect.EQ(t, c.Calls(), int64(5))
}
