package barcode

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/linkedread/editdist"
)

type correction struct {
	barcode string
	edits   int
	ok      bool
}

// Corrector snaps barcodes to a whitelist. A barcode B is snappable if there
// is a whitelisted barcode W that is closer to B than all other whitelisted
// barcodes in Hamming distance, and that distance is at most MaxEdits.
// Corrector is safe for concurrent use.
type Corrector struct {
	maxEdits  int
	length    int
	whitelist []string
	known     map[string]struct{}

	mu sync.Mutex
	// memo caches the corrections of barcodes not in the whitelist. It is
	// cleared when it reaches memoCap entries.
	memo    map[string]correction
	memoCap int
}

// DefaultMemoEntries bounds the number of memoized corrections.
const DefaultMemoEntries = 1 << 16

// NewCorrector reads a whitelist, one barcode per line. Blank lines are
// ignored. All barcodes must have the same length and consist of ACGT.
func NewCorrector(r io.Reader, maxEdits int) (*Corrector, error) {
	c := &Corrector{
		maxEdits: maxEdits,
		length:   -1,
		known:    map[string]struct{}{},
		memo:     map[string]correction{},
		memoCap:  DefaultMemoEntries,
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		bc := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if bc == "" {
			continue
		}
		if c.length < 0 {
			c.length = len(bc)
		}
		if len(bc) != c.length {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("barcode %s has length %d, others have length %d", bc, len(bc), c.length))
		}
		if !isSequence(bc) || strings.IndexByte(bc, 'N') >= 0 {
			return nil, errors.E(errors.Invalid, "invalid whitelist barcode", bc)
		}
		if _, ok := c.known[bc]; ok {
			continue
		}
		c.known[bc] = struct{}{}
		c.whitelist = append(c.whitelist, bc)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "read barcode whitelist")
	}
	if len(c.whitelist) == 0 {
		return nil, errors.E(errors.Invalid, "empty barcode whitelist")
	}
	log.Debug.Printf("barcode: whitelist of %d %d-base barcodes", len(c.whitelist), c.length)
	return c, nil
}

// Len returns the number of whitelisted barcodes.
func (c *Corrector) Len() int { return len(c.whitelist) }

// Correct returns the corrected barcode, the number of edits to it, and true
// if the barcode snaps to exactly one whitelisted barcode. A whitelisted
// barcode is returned as is with zero edits and false. Otherwise Correct
// returns the original barcode, -1, and false.
func (c *Corrector) Correct(barcode string) (corrected string, edits int, ok bool) {
	barcode = strings.ToUpper(barcode)
	if _, known := c.known[barcode]; known {
		return barcode, 0, false
	}
	if len(barcode) != c.length {
		return barcode, -1, false
	}
	e, cached := c.lookup(barcode)
	if !cached {
		e = c.snap(barcode)
		c.remember(barcode, e)
	}
	if !e.ok {
		return barcode, -1, false
	}
	return e.barcode, e.edits, true
}

func (c *Corrector) lookup(key string) (correction, bool) {
	c.mu.Lock()
	e, ok := c.memo[key]
	c.mu.Unlock()
	return e, ok
}

func (c *Corrector) remember(key string, e correction) {
	c.mu.Lock()
	if len(c.memo) >= c.memoCap {
		c.memo = make(map[string]correction, c.memoCap)
	}
	c.memo[key] = e
	c.mu.Unlock()
}

func (c *Corrector) snap(barcode string) correction {
	best, bestDist, nBest := "", c.maxEdits+1, 0
	for _, w := range c.whitelist {
		d, err := matchr.Hamming(barcode, w)
		if err != nil {
			log.Panicf("barcode: %s vs %s: %v", barcode, w, err)
		}
		if d > c.maxEdits {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist, nBest = w, d, 1
		case d == bestDist:
			nBest++
		}
	}
	if nBest != 1 {
		return correction{}
	}
	log.Debug.Printf("%s snaps to %s with cost %d", barcode, best, bestDist)
	return correction{barcode: best, edits: bestDist, ok: true}
}

// CorrectWithDownstream is Correct, except that a barcode that does not snap
// in Hamming distance is retried allowing an insertion in the barcode, which
// pushes its last bases into downstream. downstream holds the bases sequenced
// right after the barcode.
func (c *Corrector) CorrectWithDownstream(barcode, downstream string) (corrected string, edits int, ok bool) {
	if corrected, edits, ok = c.Correct(barcode); ok || edits == 0 || downstream == "" {
		return corrected, edits, ok
	}
	barcode = strings.ToUpper(barcode)
	if len(barcode) != c.length {
		return barcode, -1, false
	}
	downstream = strings.ToUpper(downstream)
	key := barcode + "+" + downstream
	e, cached := c.lookup(key)
	if !cached {
		e = c.snapIndel(barcode, downstream)
		c.remember(key, e)
	}
	if !e.ok {
		return barcode, -1, false
	}
	return e.barcode, e.edits, true
}

func (c *Corrector) snapIndel(barcode, downstream string) correction {
	var l editdist.Levenshteiner
	best, bestDist, nBest := "", c.maxEdits+1, 0
	for _, w := range c.whitelist {
		d := l.Distance(barcode, w, downstream, "")
		if d > c.maxEdits {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist, nBest = w, d, 1
		case d == bestDist:
			nBest++
		}
	}
	if nBest != 1 {
		return correction{}
	}
	log.Debug.Printf("%s+%s snaps to %s with %d indel-aware edits", barcode, downstream, best, bestDist)
	return correction{barcode: best, edits: bestDist, ok: true}
}
