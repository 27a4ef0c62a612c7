package editdist

import (
	"fmt"
)

// step is a bitmask of the traversals in a Levenshtein matrix that reach a
// cell with its minimum value.
//
//   ___|___
//    1 | 3
//    2 | 4
//
// diagonal is 1 -> 4, right is 2 -> 4 and down is 3 -> 4.
type step uint8

const (
	stepDiagonal step = 1 << iota
	stepRight
	stepDown
)

// Levenshteiner computes the barcode-aware Levenshtein distance. It keeps the
// working matrix between calls, so a single Levenshteiner should be reused by
// one goroutine for many pairs.
type Levenshteiner struct {
	nCol int
	data []int // row-major matrix
	r1   []byte
	r2   []byte
}

func (l *Levenshteiner) reset(nRow, nCol int) {
	l.nCol = nCol
	if n := nRow * nCol; cap(l.data) < n {
		l.data = make([]int, n)
	} else {
		l.data = l.data[:n]
	}
}

func (l *Levenshteiner) at(i, j int) int { return l.data[i*l.nCol+j] }

func (l *Levenshteiner) set(i, j, v int) { l.data[i*l.nCol+j] = v }

// cell computes the cell (i, j) and returns the steps that reach its minimum.
func (l *Levenshteiner) cell(i, j int) step {
	if i == 0 {
		l.set(i, j, j)
		return 0
	}
	if j == 0 {
		l.set(i, j, i)
		return 0
	}
	if l.r1[i-1] == l.r2[j-1] {
		l.set(i, j, l.at(i-1, j-1))
		return stepDiagonal
	}
	down := l.at(i-1, j) + 1
	diag := l.at(i-1, j-1) + 1
	right := l.at(i, j-1) + 1
	v := down
	if diag < v {
		v = diag
	}
	if right < v {
		v = right
	}
	l.set(i, j, v)
	var s step
	if down == v {
		s |= stepDown
	}
	if diag == v {
		s |= stepDiagonal
	}
	if right == v {
		s |= stepRight
	}
	return s
}

// Distance returns the number of insertions, deletions and substitutions that
// transform barcode s1 into s2. A fixed number of barcode bases is always
// sequenced, so a deletion inside the barcode pulls in bases that follow it;
// a1 and a2 are the sequences downstream of s1 and s2 and are consumed as
// needed. s1 and s2 must have equal length.
func (l *Levenshteiner) Distance(s1, s2, a1, a2 string) int {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: '%s', '%s'", s1, s2))
	}
	l.r1 = append(l.r1[:0], s1...)
	l.r2 = append(l.r2[:0], s2...)
	rows, cols := len(s1), len(s2)
	l.reset(rows+len(a1)+1, cols+len(a2)+1)

	i, j := 1, 1
	iEnd, jEnd := rows, cols
	for {
		if i <= iEnd {
			for c := 0; c < j; c++ {
				l.cell(i, c)
			}
		}
		if j <= jEnd {
			for r := 0; r < i; r++ {
				l.cell(r, j)
			}
		}
		s := l.cell(i, j)
		if i < rows {
			i++
			j++
			continue
		}
		extended := false
		if s&stepDown != 0 && len(a2) > 0 {
			l.r2 = append(l.r2, a2[0])
			a2 = a2[1:]
			extended = true
			j++
			jEnd++
		}
		if s&stepRight != 0 && len(a1) > 0 {
			l.r1 = append(l.r1, a1[0])
			a1 = a1[1:]
			extended = true
			i++
			iEnd++
		}
		if !extended {
			if d := l.at(rows, cols); d <= l.at(i, j) {
				return d
			}
			return l.at(i, j)
		}
	}
}

// Levenshtein is a convenience wrapper around a fresh Levenshteiner.
func Levenshtein(s1, s2, a1, a2 string) int {
	var l Levenshteiner
	return l.Distance(s1, s2, a1, a2)
}
