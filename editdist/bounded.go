package editdist

const infinity = 1 << 30

// rows holds the two dynamic-programming rows of Distance, reused across
// calls.
type rows struct {
	prev, cur []int
}

func (r *rows) get(n int) ([]int, []int) {
	if cap(r.prev) < n {
		r.prev = make([]int, n)
		r.cur = make([]int, n)
	}
	return r.prev[:n], r.cur[:n]
}

// Distance returns the edit distance between pattern and the best-matching
// prefix of text, or -1 if that distance exceeds k. The alignment is anchored
// at text[0]; text may be longer than needed, trailing text is free.
//
// Only the diagonal band of width 2k+1 is evaluated, so the cost is
// O(len(pattern)*k).
func Distance(text, pattern []byte, k int) int {
	var r rows
	return r.distance(text, pattern, k)
}

func (r *rows) distance(text, pattern []byte, k int) int {
	if k < 0 {
		return -1
	}
	m := len(pattern)
	n := len(text)
	if n > m+k {
		n = m + k
	}
	if m-k > n {
		return -1
	}
	prev, cur := r.get(n + 1)
	// Row 0. Cells outside a row's band are never written; the one cell on
	// each side of the band that the next row reads is set to infinity.
	for j := 0; j <= k && j <= n; j++ {
		prev[j] = j
	}
	if k+1 <= n {
		prev[k+1] = infinity
	}
	for i := 1; i <= m; i++ {
		lo, hi := i-k, i+k
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		rowMin := infinity
		start := lo
		if lo == 0 {
			cur[0] = i
			rowMin = i
			start = 1
		} else {
			cur[lo-1] = infinity
		}
		for j := start; j <= hi; j++ {
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
			if v < rowMin {
				rowMin = v
			}
		}
		if hi+1 <= n {
			cur[hi+1] = infinity
		}
		if rowMin > k {
			return -1
		}
		prev, cur = cur, prev
	}
	best := infinity
	lo := m - k
	if lo < 0 {
		lo = 0
	}
	for j := lo; j <= n; j++ {
		if prev[j] < best {
			best = prev[j]
		}
	}
	if best > k {
		return -1
	}
	return best
}
