// Package fastq reads paired FASTQ streams into read pairs and groups them
// into barcode clusters.
package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/grailbio/linkedread/align"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when two underlying FASTQ files are discordant.
	ErrDiscordant = errors.New("discordant FASTQ pairs")
)

const maxLineSize = 16 << 20

var errEOF = errors.New("eof")

// Scanner reads FASTQ records into align.Reads. It requires ID lines to begin
// with "@", line 3 to begin with "+", and the sequence and quality lines to
// have equal length. Scanners are not threadsafe.
type Scanner struct {
	b   *bufio.Scanner
	err error
	// line is the number of lines consumed.
	line int
}

// NewScanner constructs a new Scanner that reads raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineSize)
	return &Scanner{b: b}
}

// Scan the next record into read. The read's Name is the ID line without the
// leading '@', comment included; Seq and Qual are freshly allocated. Scan
// returns false at the end of the stream or on error. Once Scan returns
// false, it never returns true again. The caller should check Err afterwards.
func (f *Scanner) Scan(read *align.Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	f.line++
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	read.Name = string(id[1:])
	if !f.scan() {
		return false
	}
	read.Seq = append([]byte(nil), f.b.Bytes()...)
	if !f.scan() {
		return false
	}
	if unk := f.b.Bytes(); len(unk) == 0 || unk[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	if !f.scan() {
		return false
	}
	read.Qual = append([]byte(nil), f.b.Bytes()...)
	if len(read.Qual) != len(read.Seq) {
		f.err = ErrInvalid
		return false
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
		return false
	}
	f.line++
	return true
}

// Line returns the number of lines consumed so far.
func (f *Scanner) Line() int { return f.line }

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// PairScanner composes a pair of scanners to scan a pair of FASTQ
// streams.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner creates a new FASTQ pair scanner from the provided
// R1 and R2 readers.
func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{
		r1: NewScanner(r1),
		r2: NewScanner(r2),
	}
}

// readID returns the name up to the first whitespace, without a trailing
// "/1" or "/2".
func readID(name string) []byte {
	id := []byte(name)
	if i := bytes.IndexAny(id, " \t"); i >= 0 {
		id = id[:i]
	}
	if n := len(id); n >= 2 && id[n-2] == '/' && (id[n-1] == '1' || id[n-1] == '2') {
		id = id[:n-2]
	}
	return id
}

// Scan scans the next read pair into pair, allocating both reads. The pair's
// Barcode is left empty. Scan returns false at the end of the streams or on
// error, including when the streams have different lengths or the mates'
// read IDs differ. Once Scan returns false, it never returns true again.
func (p *PairScanner) Scan(pair *align.ReadPair) bool {
	if p.err != nil {
		return false
	}
	r1, r2 := &align.Read{}, &align.Read{}
	ok1 := p.r1.Scan(r1)
	ok2 := p.r2.Scan(r2)
	if ok1 != ok2 {
		p.err = ErrDiscordant
	}
	if !ok1 || !ok2 {
		return false
	}
	if !bytes.Equal(readID(r1.Name), readID(r2.Name)) {
		p.err = ErrDiscordant
		return false
	}
	*pair = align.ReadPair{Reads: [align.NumReadsPerPair]*align.Read{r1, r2}}
	return true
}

// Err returns the scanning error, if any. It should be checked
// after Scan returns false.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}
